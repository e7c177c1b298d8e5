package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

func (r *Router) registerReportRoutes(api fiber.Router, rh *handler.ReportHandler, requirePerm permFunc) {
	reports := api.Group("/reports", requirePerm(authorize.ResourceReports, authorize.ActionView))

	reports.Get("/dashboard", rh.Dashboard)
	reports.Get("/export", rh.Export)
}
