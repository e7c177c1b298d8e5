package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

func (r *Router) registerUnitRoutes(api fiber.Router, uh *handler.UnitHandler, requirePerm permFunc) {
	units := api.Group("/units")

	units.Get("/", requirePerm(authorize.ResourceUnits, authorize.ActionView), uh.List)
	units.Post("/", requirePerm(authorize.ResourceUnits, authorize.ActionManage), uh.Create)

	u := units.Group("/:id")
	u.Get("/", requirePerm(authorize.ResourceUnits, authorize.ActionView), uh.Get)
	u.Patch("/", requirePerm(authorize.ResourceUnits, authorize.ActionManage), uh.Update)

	// Members
	u.Post("/members", requirePerm(authorize.ResourceUnits, authorize.ActionManage), uh.AddMember)
	u.Delete("/members/:userID", requirePerm(authorize.ResourceUnits, authorize.ActionManage), uh.RemoveMember)
}
