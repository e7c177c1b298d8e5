package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
)

// Identity routes need no permission beyond an active profile.
func (r *Router) registerMeRoutes(api fiber.Router, mh *handler.MeHandler) {
	me := api.Group("/me")
	me.Get("/", mh.Get)
	me.Get("/scope", mh.Scope)
	me.Put("/scope", mh.Switch)
}
