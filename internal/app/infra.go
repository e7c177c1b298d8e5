package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/equidadeplus/equidade_backend/config"
	"github.com/equidadeplus/equidade_backend/internal/api/http/middleware"
	"github.com/equidadeplus/equidade_backend/internal/repo"
	svcfile "github.com/equidadeplus/equidade_backend/internal/service/file"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/crypto"
	"github.com/equidadeplus/equidade_backend/pkg/database"
	"github.com/equidadeplus/equidade_backend/pkg/email"
	"github.com/equidadeplus/equidade_backend/pkg/events"
	"github.com/equidadeplus/equidade_backend/pkg/jwtauth"
	"github.com/equidadeplus/equidade_backend/pkg/observability"
	pasetotoken "github.com/equidadeplus/equidade_backend/pkg/paseto"
	redispkg "github.com/equidadeplus/equidade_backend/pkg/redis"
	s3pkg "github.com/equidadeplus/equidade_backend/pkg/s3"
	"github.com/equidadeplus/equidade_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideEntClient),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideSelectionStore),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideTokenVerifier),
	fx.Provide(ProvideFieldCipher),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideWorkflowMetrics),
	fx.Provide(ProvideBlobs),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvidePublisher),
)

func ProvideEntClient(lc fx.Lifecycle, cfg *config.Config) (*repo.Client, error) {
	client, err := database.NewClient(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Database.Migrations.AutoMigrate {
				return nil
			}
			slog.Info("running schema migration")
			return database.MigrateSchema(ctx, client)
		},
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return client.Close()
		},
	})
	return client, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideSelectionStore(rdb *redis.Client) *redispkg.SelectionStore {
	return redispkg.NewSelectionStore(rdb, redispkg.DefaultSelectionTTL)
}

type AuthorizationResult struct {
	fx.Out

	Auth authorize.IAuthorization
	Sync *authorize.PolicySync
}

// ProvideAuthorization loads unit memberships into casbin. With policy sync
// enabled, membership writes are announced over Postgres LISTEN/NOTIFY so
// every instance reloads.
func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config, db *repo.Client) (AuthorizationResult, error) {
	logger := slog.Default()
	base, err := authorize.NewAuthorization(context.Background(), db.Membership, logger)
	if err != nil {
		return AuthorizationResult{}, fmt.Errorf("load authorization: %w", err)
	}

	var auth authorize.IAuthorization = base
	if cfg.Authorization.EnableAudit {
		auth = authorize.NewAuditedAuthorization(base, logger)
	}

	var notifier authorize.Notifier = authorize.NopNotifier{}
	if cfg.Authorization.PolicySyncEnabled {
		watcher, cleanup, err := authorize.NewPolicyWatcher(context.Background(),
			database.NewDSN(cfg.Database), authorize.DefaultChannel, auth, logger)
		if err != nil {
			return AuthorizationResult{}, fmt.Errorf("start policy watcher: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				cleanup(ctx)
				return nil
			},
		})
		notifier = watcher
	}

	return AuthorizationResult{
		Auth: auth,
		Sync: authorize.NewPolicySync(auth, notifier, logger),
	}, nil
}

// ProvideTokenVerifier selects the identity provider the API trusts.
func ProvideTokenVerifier(cfg *config.Config) (middleware.TokenVerifier, error) {
	switch cfg.Authentication.Provider {
	case config.ProviderJWT:
		v, err := jwtauth.NewFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("jwt verifier: %w", err)
		}
		return v, nil
	case config.ProviderPaseto:
		m, err := pasetotoken.NewPasetoManager(cfg)
		if err != nil {
			return nil, fmt.Errorf("paseto manager: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported authentication provider %q", cfg.Authentication.Provider)
	}
}

func ProvideFieldCipher(cfg *config.Config) (*crypto.FieldCipher, error) {
	return crypto.NewFieldCipher(cfg.Authentication.EncryptionKey)
}

func ProvideEmailClient(cfg *config.Config) (email.Sender, error) {
	return email.NewFromCentral(cfg)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

// ProvideBlobs returns a nil interface when no bucket is configured, which
// turns attachment routes into 503s instead of failing startup.
func ProvideBlobs(cfg *config.Config) (svcfile.Blobs, error) {
	if cfg.S3.Bucket == "" {
		slog.Info("object storage disabled: no bucket configured")
		return nil, nil
	}
	client, err := s3pkg.New(cfg.S3)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ProvideNatsClient returns nil when no URL is configured; events are then
// dropped and workers do not start.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		slog.Info("event bus disabled: no NATS url configured")
		return nil, nil
	}
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if cfg.Nats.Name != "" {
		opts = append(opts, nats.Name(cfg.Nats.Name))
	}
	nc, err := nats.Connect(cfg.Nats.URL, opts...)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvidePublisher(nc *nats.Conn) events.Publisher {
	if nc == nil {
		return events.Nop{}
	}
	return events.NewNATSPublisher(nc)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideWorkflowMetrics depends on the telemetry provider so the instruments
// bind to the configured meter provider.
func ProvideWorkflowMetrics(_ *observability.Provider) *observability.Workflow {
	return observability.NewWorkflow()
}
