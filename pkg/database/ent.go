package database

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/equidadeplus/equidade_backend/config"
	"github.com/equidadeplus/equidade_backend/internal/repo"
	"github.com/equidadeplus/equidade_backend/internal/repo/migrate"
)

// NewEntDriver opens Postgres and wraps it in ent's SQL driver.
func NewEntDriver(cfg config.DatabaseConfig) (*entsql.Driver, error) {
	return NewEntDriverFromConfig(FromCentralConfig(cfg))
}

// NewEntDriverFromConfig opens Postgres from package Config.
func NewEntDriverFromConfig(cfg Config) (*entsql.Driver, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}
	return entsql.OpenDB(dialect.Postgres, db), nil
}

// NewClient builds the repository client, optionally with query logging.
func NewClient(cfg config.DatabaseConfig) (*repo.Client, error) {
	drv, err := NewEntDriver(cfg)
	if err != nil {
		return nil, err
	}

	var d dialect.Driver = drv
	if cfg.Logging.Enabled {
		d = dialect.DebugWithContext(drv, func(ctx context.Context, v ...any) {
			slog.DebugContext(ctx, "sql", "query", fmt.Sprint(v...))
		})
	}
	return repo.NewClient(d), nil
}

// MigrateSchema creates or updates every application table.
func MigrateSchema(ctx context.Context, client *repo.Client) error {
	return migrate.Create(ctx, client.Driver())
}
