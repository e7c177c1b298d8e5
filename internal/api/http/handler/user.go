package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	entprofile "github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/profile"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

// UserHandler exposes profile administration under /users.
type UserHandler struct {
	svc profile.Service
}

func NewUserHandler(svc profile.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func mapProfileError(c fiber.Ctx, err error) error {
	if fe, isField := asFieldErr(err); isField {
		return unprocessable(c, fe)
	}
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, profile.ErrForbidden), errors.Is(err, profile.ErrSelfDeactivate):
		return forbidden(c, err.Error())
	case errors.Is(err, profile.ErrAlreadyExists):
		return conflict(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /users
func (h *UserHandler) List(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page    int    `query:"page"`
		PerPage int    `query:"per_page"`
		Role    string `query:"role"`
		Status  string `query:"status"`
		Search  string `query:"search"`
	}
	_ = c.Bind().Query(&q)
	role, _ := authorize.ParseRole(q.Role)

	result, err := h.svc.List(c.Context(), actor, profile.ListFilter{
		Role:    role,
		Status:  entprofile.Status(q.Status),
		Search:  q.Search,
		Page:    q.Page,
		PerPage: q.PerPage,
	})
	if err != nil {
		return mapProfileError(c, err)
	}
	return page(c, result)
}

// GET /users/:id
func (h *UserHandler) Get(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	p, err := h.svc.Get(c.Context(), actor, id)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, p)
}

// POST /users
// The id is the identity provider's user id.
func (h *UserHandler) Provision(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var body profile.ProvisionRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	// Unknown roles pass through so the service reports them per field.
	body.Role, _ = authorize.ParseRole(string(body.Role))

	p, err := h.svc.Provision(c.Context(), actor, body)
	if err != nil {
		return mapProfileError(c, err)
	}
	return created(c, p)
}

// PATCH /users/:id
func (h *UserHandler) Update(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	var body profile.UpdateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Role != nil {
		role, _ := authorize.ParseRole(string(*body.Role))
		body.Role = &role
	}

	p, err := h.svc.Update(c.Context(), actor, id, body)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, p)
}

// PATCH /users/:id/status
func (h *UserHandler) SetStatus(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	var body struct {
		Status entprofile.Status `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.SetStatus(c.Context(), actor, id, body.Status)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, p)
}
