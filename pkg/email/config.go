package email

import (
	"time"

	"github.com/equidadeplus/equidade_backend/config"
)

// Config holds email service configuration
type Config struct {
	Enabled bool
	From    string

	// SMTP settings
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPUseTLS         bool
	SMTPTimeoutSeconds int

	// Circuit breaker: open after MaxFailures consecutive send failures and
	// try again after OpenTimeout.
	MaxFailures uint32
	OpenTimeout time.Duration

	// Template settings
	AppName string
	BaseURL string
}

// DefaultConfig returns sensible defaults for email configuration
func DefaultConfig() Config {
	return Config{
		SMTPPort:           587,
		SMTPUseTLS:         true,
		SMTPTimeoutSeconds: 30,
		MaxFailures:        5,
		OpenTimeout:        time.Minute,
		AppName:            "Equidade+",
	}
}

// SMTPTimeout returns the SMTP timeout as a duration
func (c Config) SMTPTimeout() time.Duration {
	if c.SMTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SMTPTimeoutSeconds) * time.Second
}

// FromCentralConfig converts central config.EmailConfig to package Config
func FromCentralConfig(c config.EmailConfig, baseURL string) Config {
	d := DefaultConfig()
	cfg := Config{
		Enabled:            c.Enabled,
		From:               c.From,
		SMTPHost:           c.SMTP.Host,
		SMTPPort:           c.SMTP.Port,
		SMTPUsername:       c.SMTP.Username,
		SMTPPassword:       c.SMTP.Password,
		SMTPUseTLS:         c.SMTP.UseTLS,
		SMTPTimeoutSeconds: c.SMTP.TimeoutSeconds,
		MaxFailures:        c.Breaker.MaxFailures,
		OpenTimeout:        time.Duration(c.Breaker.OpenTimeoutSecs) * time.Second,
		AppName:            d.AppName,
		BaseURL:            baseURL,
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = d.SMTPPort
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = d.MaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = d.OpenTimeout
	}
	return cfg
}
