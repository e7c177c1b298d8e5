package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(api fiber.Router, ah *handler.AppointmentHandler, requirePerm permFunc) {
	appts := api.Group("/appointments")

	appts.Get("/", requirePerm(authorize.ResourceAgenda, authorize.ActionView), ah.List)
	appts.Post("/", requirePerm(authorize.ResourceAgenda, authorize.ActionCreate), ah.Create)
	appts.Get("/:id", requirePerm(authorize.ResourceAgenda, authorize.ActionView), ah.Get)
	appts.Patch("/:id/status", requirePerm(authorize.ResourceAgenda, authorize.ActionUpdate), ah.UpdateStatus)
}
