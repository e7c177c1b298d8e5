package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

func (r *Router) registerNotificationRoutes(api fiber.Router, nh *handler.NotificationHandler, requirePerm permFunc) {
	notifs := api.Group("/notifications")
	view := requirePerm(authorize.ResourceNotifications, authorize.ActionView)
	update := requirePerm(authorize.ResourceNotifications, authorize.ActionUpdate)

	notifs.Get("/", view, nh.List)
	notifs.Get("/unread-count", view, nh.UnreadCount)
	notifs.Post("/read-all", update, nh.MarkAllRead)
	notifs.Patch("/:id/read", update, nh.MarkRead)
}
