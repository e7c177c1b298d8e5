package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/service/notification"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func mapNotificationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notification.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, notification.ErrForbidden):
		return forbidden(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /notifications
func (h *NotificationHandler) List(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page       int  `query:"page"`
		PerPage    int  `query:"per_page"`
		UnreadOnly bool `query:"unread_only"`
	}
	_ = c.Bind().Query(&q)

	result, err := h.svc.List(c.Context(), actor, q.UnreadOnly, q.Page, q.PerPage)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return page(c, result)
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	n, err := h.svc.UnreadCount(c.Context(), actor)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, fiber.Map{"count": n})
}

// PATCH /notifications/:id/read
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	if err := h.svc.MarkRead(c.Context(), actor, id); err != nil {
		return mapNotificationError(c, err)
	}
	return noContent(c)
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	actor, valid := actorOf(c)
	if !valid {
		return unauthorized(c)
	}

	n, err := h.svc.MarkAllRead(c.Context(), actor)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, fiber.Map{"updated": n})
}
