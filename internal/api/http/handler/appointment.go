package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	entappointment "github.com/equidadeplus/equidade_backend/internal/repo/appointment"
	"github.com/equidadeplus/equidade_backend/internal/service/appointment"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	if fe, isField := asFieldErr(err); isField {
		return unprocessable(c, fe)
	}
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrForbidden):
		return forbidden(c, err.Error())
	case errors.Is(err, appointment.ErrSlotTaken), errors.Is(err, appointment.ErrAlreadyCancelled):
		return conflict(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page        int    `query:"page"`
		PerPage     int    `query:"per_page"`
		TherapistID string `query:"therapist_id"`
		Status      string `query:"status"`
	}
	_ = c.Bind().Query(&q)

	from, to, err := parsePeriod(c)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	therapistID, err := optionalUUID(q.TherapistID)
	if err != nil {
		return badRequest(c, "invalid therapist_id")
	}

	f := appointment.ListFilter{
		TherapistID: therapistID,
		Status:      entappointment.Status(q.Status),
		Page:        q.Page,
		PerPage:     q.PerPage,
	}
	if !from.IsZero() {
		f.From = &from
	}
	if !to.IsZero() {
		f.To = &to
	}

	result, err := h.svc.List(c.Context(), actor, f)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return page(c, result)
}

// GET /appointments/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	a, err := h.svc.Get(c.Context(), actor, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, a)
}

// POST /appointments
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var body appointment.CreateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	a, err := h.svc.Create(c.Context(), actor, body)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, a)
}

// PATCH /appointments/:id/status
func (h *AppointmentHandler) UpdateStatus(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Status == "" {
		return mapAppointmentError(c, fielderr.Single("status", "is required"))
	}

	a, err := h.svc.UpdateStatus(c.Context(), actor, id, entappointment.Status(body.Status))
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, a)
}
