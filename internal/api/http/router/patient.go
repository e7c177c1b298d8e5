package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

func (r *Router) registerPatientRoutes(
	api fiber.Router,
	ph *handler.PatientHandler,
	prh *handler.ProtocolHandler,
	requirePerm permFunc,
) {
	patients := api.Group("/patients")

	// Patient CRUD
	patients.Get("/", requirePerm(authorize.ResourcePacientes, authorize.ActionView), ph.List)
	patients.Post("/", requirePerm(authorize.ResourcePacientes, authorize.ActionCreate), ph.Create)

	p := patients.Group("/:id")
	p.Get("/", requirePerm(authorize.ResourcePacientes, authorize.ActionView), ph.Get)
	p.Patch("/", requirePerm(authorize.ResourcePacientes, authorize.ActionUpdate), ph.Update)

	// Guardians
	p.Post("/guardians", requirePerm(authorize.ResourcePacientes, authorize.ActionManage), ph.LinkGuardian)

	// Assessments
	p.Get("/assessments", requirePerm(authorize.ResourceProtocols, authorize.ActionView), prh.ListAssessments)
	p.Post("/assessments", requirePerm(authorize.ResourceProtocols, authorize.ActionCreate), prh.CreateAssessment)
}
