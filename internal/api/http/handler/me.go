package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/api/http/middleware"
	"github.com/equidadeplus/equidade_backend/internal/service/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/scope"
)

type MeHandler struct {
	profiles profile.Service
	scope    scope.Service
}

func NewMeHandler(profiles profile.Service, scope scope.Service) *MeHandler {
	return &MeHandler{profiles: profiles, scope: scope}
}

func mapScopeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scope.ErrUnitNotPermitted):
		return forbidden(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /me
func (h *MeHandler) Get(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	me, err := h.profiles.Me(c.Context(), actor)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, me)
}

// GET /me/scope
func (h *MeHandler) Scope(c fiber.Ctx) error {
	p, valid := middleware.ProfileFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	view, err := h.scope.Resolve(c.Context(), p)
	if err != nil {
		return mapScopeError(c, err)
	}
	return ok(c, view)
}

// PUT /me/scope
func (h *MeHandler) Switch(c fiber.Ctx) error {
	p, valid := middleware.ProfileFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		UnitID string `json:"unit_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	unitID, err := uuid.Parse(body.UnitID)
	if err != nil {
		return badRequest(c, "invalid unit_id")
	}

	view, err := h.scope.Switch(c.Context(), p, unitID)
	if err != nil {
		return mapScopeError(c, err)
	}
	return ok(c, view)
}
