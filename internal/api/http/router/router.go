package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/equidadeplus/equidade_backend/config"
	"github.com/equidadeplus/equidade_backend/internal/api/http/handler"
	"github.com/equidadeplus/equidade_backend/internal/api/http/middleware"
	"github.com/equidadeplus/equidade_backend/internal/service/appointment"
	"github.com/equidadeplus/equidade_backend/internal/service/evolution"
	"github.com/equidadeplus/equidade_backend/internal/service/file"
	"github.com/equidadeplus/equidade_backend/internal/service/notification"
	"github.com/equidadeplus/equidade_backend/internal/service/patient"
	"github.com/equidadeplus/equidade_backend/internal/service/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/protocol"
	"github.com/equidadeplus/equidade_backend/internal/service/report"
	"github.com/equidadeplus/equidade_backend/internal/service/scope"
	"github.com/equidadeplus/equidade_backend/internal/service/unit"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Auth            authorize.IAuthorization
	Verifier        middleware.TokenVerifier
	Profiles        middleware.ProfileGetter
	ScopeSvc        scope.Service
	ProfileSvc      profile.Service
	UnitSvc         unit.Service
	PatientSvc      patient.Service
	AppointmentSvc  appointment.Service
	EvolutionSvc    evolution.Service
	FileSvc         file.Service
	ProtocolSvc     protocol.Service
	NotificationSvc notification.Service
	ReportSvc       report.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

type permFunc func(authorize.Resource, authorize.Action) fiber.Handler

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Every API route needs a verified identity and a resolved actor
	api := app.Group("/api/v1",
		middleware.AuthRequired(r.p.Verifier),
		middleware.LoadActor(r.p.Profiles, r.p.ScopeSvc),
	)

	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Delegate to sub-files
	r.registerMeRoutes(api, handler.NewMeHandler(r.p.ProfileSvc, r.p.ScopeSvc))
	r.registerUnitRoutes(api, handler.NewUnitHandler(r.p.UnitSvc), requirePerm)
	r.registerUserRoutes(api, handler.NewUserHandler(r.p.ProfileSvc), requirePerm)
	r.registerPatientRoutes(api, handler.NewPatientHandler(r.p.PatientSvc), handler.NewProtocolHandler(r.p.ProtocolSvc), requirePerm)
	r.registerAppointmentRoutes(api, handler.NewAppointmentHandler(r.p.AppointmentSvc), requirePerm)
	r.registerEvolutionRoutes(api, handler.NewEvolutionHandler(r.p.EvolutionSvc, r.p.FileSvc), requirePerm)
	r.registerProtocolRoutes(api, handler.NewProtocolHandler(r.p.ProtocolSvc), requirePerm)
	r.registerNotificationRoutes(api, handler.NewNotificationHandler(r.p.NotificationSvc), requirePerm)
	r.registerReportRoutes(api, handler.NewReportHandler(r.p.ReportSvc), requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	live := healthcheck.New()
	ready := healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	})
	app.Get(healthcheck.LivenessEndpoint, live)
	app.Get(healthcheck.ReadinessEndpoint, ready)
	app.Get(healthcheck.StartupEndpoint, live)
	app.Get("/health/live", live)
	app.Get("/health/ready", ready)

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
