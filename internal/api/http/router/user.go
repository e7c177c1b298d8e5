package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

func (r *Router) registerUserRoutes(api fiber.Router, uh *handler.UserHandler, requirePerm permFunc) {
	users := api.Group("/users")

	users.Get("/", requirePerm(authorize.ResourceUsers, authorize.ActionView), uh.List)
	users.Post("/", requirePerm(authorize.ResourceUsers, authorize.ActionCreate), uh.Provision)

	u := users.Group("/:id")
	u.Get("/", requirePerm(authorize.ResourceUsers, authorize.ActionView), uh.Get)
	u.Patch("/", requirePerm(authorize.ResourceUsers, authorize.ActionUpdate), uh.Update)
	u.Patch("/status", requirePerm(authorize.ResourceUsers, authorize.ActionManage), uh.SetStatus)
}
