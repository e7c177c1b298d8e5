package redis

import (
	"time"

	"github.com/equidadeplus/equidade_backend/config"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	DB       int
	Username string
	Password string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the settings used for any value left unset.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromCentralConfig converts config.RedisConfig, filling zero values from
// DefaultConfig.
func FromCentralConfig(c config.RedisConfig) Config {
	d := DefaultConfig()
	cfg := Config{
		Addr:         c.Addr,
		DB:           c.DB,
		Username:     c.Username,
		Password:     c.Password,
		PoolSize:     orInt(c.PoolSize, d.PoolSize),
		MinIdleConns: orInt(c.MinIdleConns, d.MinIdleConns),
		DialTimeout:  orSeconds(c.DialTimeoutSeconds, d.DialTimeout),
		ReadTimeout:  orSeconds(c.ReadTimeoutSeconds, d.ReadTimeout),
		WriteTimeout: orSeconds(c.WriteTimeoutSeconds, d.WriteTimeout),
	}
	if cfg.Addr == "" {
		cfg.Addr = d.Addr
	}
	return cfg
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orSeconds(v int, def time.Duration) time.Duration {
	if v > 0 {
		return time.Duration(v) * time.Second
	}
	return def
}
