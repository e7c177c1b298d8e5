package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/service/protocol"
)

type ProtocolHandler struct {
	svc protocol.Service
}

func NewProtocolHandler(svc protocol.Service) *ProtocolHandler {
	return &ProtocolHandler{svc: svc}
}

func mapProtocolError(c fiber.Ctx, err error) error {
	if fe, isField := asFieldErr(err); isField {
		return unprocessable(c, fe)
	}
	switch {
	case errors.Is(err, protocol.ErrUnknownProtocol), errors.Is(err, protocol.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, protocol.ErrTotalOutOfRange):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, protocol.ErrForbidden):
		return forbidden(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /protocols
func (h *ProtocolHandler) List(c fiber.Ctx) error {
	return ok(c, h.svc.List())
}

// GET /protocols/:id
func (h *ProtocolHandler) Get(c fiber.Ctx) error {
	p, err := h.svc.Get(c.Params("id"))
	if err != nil {
		return mapProtocolError(c, err)
	}
	return ok(c, p)
}

// POST /protocols/:id/score
func (h *ProtocolHandler) Score(c fiber.Ctx) error {
	var body struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.svc.Score(c.Params("id"), body.Scores)
	if err != nil {
		return mapProtocolError(c, err)
	}
	return ok(c, result)
}

// GET /patients/:id/assessments
func (h *ProtocolHandler) ListAssessments(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	var q struct {
		Page    int `query:"page"`
		PerPage int `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	items, err := h.svc.ListAssessments(c.Context(), actor, patientID, q.Page, q.PerPage)
	if err != nil {
		return mapProtocolError(c, err)
	}
	return ok(c, items)
}

// POST /patients/:id/assessments
func (h *ProtocolHandler) CreateAssessment(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	var body protocol.CreateAssessmentRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	a, err := h.svc.CreateAssessment(c.Context(), actor, patientID, body)
	if err != nil {
		return mapProtocolError(c, err)
	}
	return created(c, a)
}
