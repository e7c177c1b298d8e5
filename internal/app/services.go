package app

import (
	"go.uber.org/fx"

	"github.com/equidadeplus/equidade_backend/internal/api/http/middleware"
	"github.com/equidadeplus/equidade_backend/internal/repo"
	"github.com/equidadeplus/equidade_backend/internal/service/appointment"
	"github.com/equidadeplus/equidade_backend/internal/service/evolution"
	svcfile "github.com/equidadeplus/equidade_backend/internal/service/file"
	"github.com/equidadeplus/equidade_backend/internal/service/notification"
	"github.com/equidadeplus/equidade_backend/internal/service/patient"
	"github.com/equidadeplus/equidade_backend/internal/service/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/protocol"
	"github.com/equidadeplus/equidade_backend/internal/service/report"
	"github.com/equidadeplus/equidade_backend/internal/service/scope"
	"github.com/equidadeplus/equidade_backend/internal/service/unit"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/crypto"
	"github.com/equidadeplus/equidade_backend/pkg/events"
	"github.com/equidadeplus/equidade_backend/pkg/observability"
	redispkg "github.com/equidadeplus/equidade_backend/pkg/redis"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideProfileGetter,
		ProvideScopeService,
		ProvideProfileService,
		ProvideUnitService,
		ProvidePatientService,
		ProvideAppointmentService,
		ProvideEvolutionService,
		ProvideFileService,
		ProvideProtocolService,
		ProvideNotificationService,
		ProvideReportService,
	),
)

func ProvideProfileGetter(db *repo.Client) middleware.ProfileGetter {
	return db.Profile
}

func ProvideScopeService(db *repo.Client, selections *redispkg.SelectionStore) scope.Service {
	return scope.New(db.Unit, db.Membership, selections)
}

func ProvideProfileService(db *repo.Client, sync *authorize.PolicySync, pub events.Publisher, m *observability.Workflow) profile.Service {
	return profile.New(profile.NewStore(db), sync, pub, m)
}

func ProvideUnitService(db *repo.Client, sync *authorize.PolicySync, selections *redispkg.SelectionStore, pub events.Publisher, m *observability.Workflow) unit.Service {
	return unit.New(unit.NewStore(db), sync, selections, pub, m)
}

func ProvidePatientService(db *repo.Client, cipher *crypto.FieldCipher) patient.Service {
	return patient.New(db.Patient, db.Profile, cipher)
}

func ProvideAppointmentService(db *repo.Client, pub events.Publisher, m *observability.Workflow) appointment.Service {
	return appointment.New(appointment.NewStore(db), pub, m)
}

func ProvideEvolutionService(db *repo.Client, pub events.Publisher, m *observability.Workflow) evolution.Service {
	return evolution.New(evolution.NewStore(db), pub, m)
}

func ProvideFileService(blobs svcfile.Blobs, evolutions evolution.Service) svcfile.Service {
	return svcfile.New(blobs, evolutions)
}

func ProvideProtocolService(db *repo.Client) protocol.Service {
	return protocol.New(protocol.NewStore(db))
}

func ProvideNotificationService(db *repo.Client) notification.Service {
	return notification.New(db.Notification)
}

func ProvideReportService(db *repo.Client) report.Service {
	return report.New(report.NewStore(db))
}
