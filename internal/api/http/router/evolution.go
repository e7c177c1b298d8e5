package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

func (r *Router) registerEvolutionRoutes(api fiber.Router, eh *handler.EvolutionHandler, requirePerm permFunc) {
	evolutions := api.Group("/evolutions")
	view := requirePerm(authorize.ResourceEvolutions, authorize.ActionView)
	edit := requirePerm(authorize.ResourceEvolutions, authorize.ActionEdit)

	evolutions.Get("/", view, eh.List)
	evolutions.Post("/", requirePerm(authorize.ResourceEvolutions, authorize.ActionCreate), eh.Create)

	e := evolutions.Group("/:id")
	e.Get("/", view, eh.Get)
	e.Put("/", edit, eh.Update)

	// Supervision
	e.Post("/approve", requirePerm(authorize.ResourceEvolutions, authorize.ActionApprove), eh.Approve)
	e.Post("/request-revision", requirePerm(authorize.ResourceEvolutions, authorize.ActionRequestRevision), eh.RequestRevision)

	// Addenda
	e.Get("/addenda", view, eh.ListAddenda)
	e.Post("/addenda", view, eh.AddAddendum)

	// Attachments & export
	e.Post("/attachments", edit, eh.Upload)
	e.Get("/attachments/url", view, eh.AttachmentURL)
	e.Get("/pdf", view, eh.PDF)
}
