package database

import (
	"time"

	"github.com/equidadeplus/equidade_backend/config"
)

// Config holds database connection and behavior settings
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Connection pooling
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int

	// Migration control
	AutoMigrate bool

	// Query logging
	EnableLogging bool
}

// DSN returns a PostgreSQL connection string
func (c Config) DSN() string {
	return buildDSN(c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ConnMaxLifetime returns the connection max lifetime as a duration
func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

// DefaultConfig returns sensible defaults for database configuration
func DefaultConfig() Config {
	return Config{
		Host:               "localhost",
		Port:               5432,
		SSLMode:            "disable",
		MaxOpenConns:       25,
		MaxIdleConns:       5,
		ConnMaxLifetimeMin: 5,
	}
}

// FromCentralConfig converts central config.DatabaseConfig to package Config.
// Zero values fall back to DefaultConfig.
func FromCentralConfig(c config.DatabaseConfig) Config {
	d := DefaultConfig()
	out := Config{
		Host:               c.Host,
		Port:               c.Port,
		User:               c.User,
		Password:           c.Password,
		DBName:             c.DBName,
		SSLMode:            c.SSLMode,
		MaxOpenConns:       c.Pool.MaxOpenConns,
		MaxIdleConns:       c.Pool.MaxIdleConns,
		ConnMaxLifetimeMin: c.Pool.ConnMaxLifetimeMin,
		AutoMigrate:        c.Migrations.AutoMigrate,
		EnableLogging:      c.Logging.Enabled,
	}
	if out.Host == "" {
		out.Host = d.Host
	}
	if out.Port == 0 {
		out.Port = d.Port
	}
	if out.SSLMode == "" {
		out.SSLMode = d.SSLMode
	}
	if out.MaxOpenConns == 0 {
		out.MaxOpenConns = d.MaxOpenConns
	}
	if out.MaxIdleConns == 0 {
		out.MaxIdleConns = d.MaxIdleConns
	}
	return out
}

// NewDSN creates a DSN string from central config.DatabaseConfig
func NewDSN(c config.DatabaseConfig) string {
	return FromCentralConfig(c).DSN()
}
