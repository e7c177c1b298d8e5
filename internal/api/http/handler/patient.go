package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	entpatient "github.com/equidadeplus/equidade_backend/internal/repo/patient"
	"github.com/equidadeplus/equidade_backend/internal/service/patient"
)

type PatientHandler struct {
	svc patient.Service
}

func NewPatientHandler(svc patient.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

func mapPatientError(c fiber.Ctx, err error) error {
	if fe, isField := asFieldErr(err); isField {
		return unprocessable(c, fe)
	}
	switch {
	case errors.Is(err, patient.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrForbidden):
		return forbidden(c, err.Error())
	case errors.Is(err, patient.ErrDuplicateCPF):
		return conflict(c, err.Error())
	case errors.Is(err, patient.ErrCPFDisabled):
		return unavailable(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /patients
func (h *PatientHandler) List(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page    int    `query:"page"`
		PerPage int    `query:"per_page"`
		Search  string `query:"search"`
		Status  string `query:"status"`
	}
	_ = c.Bind().Query(&q)

	result, err := h.svc.List(c.Context(), actor, patient.ListFilter{
		Search:  q.Search,
		Status:  entpatient.Status(q.Status),
		Page:    q.Page,
		PerPage: q.PerPage,
	})
	if err != nil {
		return mapPatientError(c, err)
	}
	return page(c, result)
}

// GET /patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	detail, err := h.svc.Get(c.Context(), actor, id)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, detail)
}

// POST /patients
func (h *PatientHandler) Create(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var body patient.CreateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Create(c.Context(), actor, body)
	if err != nil {
		return mapPatientError(c, err)
	}
	return created(c, p)
}

// PATCH /patients/:id
func (h *PatientHandler) Update(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	var body patient.UpdateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Update(c.Context(), actor, id, body)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// POST /patients/:id/guardians
func (h *PatientHandler) LinkGuardian(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	var body patient.LinkGuardianRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	guardians, err := h.svc.LinkGuardian(c.Context(), actor, id, body)
	if err != nil {
		return mapPatientError(c, err)
	}
	return created(c, guardians)
}
