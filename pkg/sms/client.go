// Package sms sends transactional text messages through sms.ir.
package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/equidadeplus/equidade_backend/config"
)

// Template parameter names of the appointment confirmation template.
const (
	ParamPatient = "PATIENT"
	ParamDate    = "DATE"
	ParamTime    = "TIME"
)

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	client     *smsir.Client
	templateID string
	loc        *time.Location
	enabled    bool
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}

	if !cfg.Enabled {
		return &Client{loc: loc}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.TemplateID == "" {
		return nil, fmt.Errorf("sms.ir template id required when SMS enabled")
	}

	return &Client{
		client:     smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		templateID: cfg.SMSIR.TemplateID,
		loc:        loc,
		enabled:    true,
	}, nil
}

// ConfirmationParams renders the template parameters for an appointment at
// startsAt, in the clinic's local time.
func (c *Client) ConfirmationParams(patientName string, startsAt time.Time) []smsir.UltraFastParameter {
	local := startsAt.In(c.loc)
	return []smsir.UltraFastParameter{
		{Key: ParamPatient, Value: patientName},
		{Key: ParamDate, Value: local.Format("02/01/2006")},
		{Key: ParamTime, Value: local.Format("15:04")},
	}
}

// SendAppointmentConfirmation texts phone (E.164) about a new appointment.
// It is a no-op when SMS is disabled.
func (c *Client) SendAppointmentConfirmation(ctx context.Context, phone, patientName string, startsAt time.Time) error {
	if !c.enabled {
		return nil
	}
	if phone == "" {
		return fmt.Errorf("phone number is required")
	}

	_, err := c.client.Verification.UltraFastSend(ctx, &smsir.UltraFastSendRequest{
		Mobile:     phone,
		TemplateID: c.templateID,
		Parameters: c.ConfirmationParams(patientName, startsAt),
	})
	if err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
