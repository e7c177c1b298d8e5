package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/service/unit"
)

type UnitHandler struct {
	svc unit.Service
}

func NewUnitHandler(svc unit.Service) *UnitHandler {
	return &UnitHandler{svc: svc}
}

func mapUnitError(c fiber.Ctx, err error) error {
	if fe, isField := asFieldErr(err); isField {
		return unprocessable(c, fe)
	}
	switch {
	case errors.Is(err, unit.ErrNotFound), errors.Is(err, unit.ErrMemberNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, unit.ErrForbidden):
		return forbidden(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /units
func (h *UnitHandler) List(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	units, err := h.svc.List(c.Context(), actor)
	if err != nil {
		return mapUnitError(c, err)
	}
	return ok(c, units)
}

// GET /units/:id
func (h *UnitHandler) Get(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid unit id")
	}

	u, err := h.svc.Get(c.Context(), actor, id)
	if err != nil {
		return mapUnitError(c, err)
	}
	return ok(c, u)
}

// POST /units
func (h *UnitHandler) Create(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var body unit.CreateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	u, err := h.svc.Create(c.Context(), actor, body)
	if err != nil {
		return mapUnitError(c, err)
	}
	return created(c, u)
}

// PATCH /units/:id
func (h *UnitHandler) Update(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid unit id")
	}

	var body unit.UpdateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	u, err := h.svc.Update(c.Context(), actor, id, body)
	if err != nil {
		return mapUnitError(c, err)
	}
	return ok(c, u)
}

// POST /units/:id/members
func (h *UnitHandler) AddMember(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid unit id")
	}

	var body unit.AddMemberRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	m, err := h.svc.AddMember(c.Context(), actor, id, body)
	if err != nil {
		return mapUnitError(c, err)
	}
	return created(c, m)
}

// DELETE /units/:id/members/:userID
func (h *UnitHandler) RemoveMember(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid unit id")
	}
	userID, err := uuidParam(c, "userID")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	if err := h.svc.RemoveMember(c.Context(), actor, id, userID); err != nil {
		return mapUnitError(c, err)
	}
	return noContent(c)
}
