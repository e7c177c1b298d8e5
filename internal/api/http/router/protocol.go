package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

func (r *Router) registerProtocolRoutes(api fiber.Router, ph *handler.ProtocolHandler, requirePerm permFunc) {
	protocols := api.Group("/protocols", requirePerm(authorize.ResourceProtocols, authorize.ActionView))

	protocols.Get("/", ph.List)
	protocols.Get("/:id", ph.Get)
	protocols.Post("/:id/score", ph.Score)
}
