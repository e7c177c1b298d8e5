package sms

import (
	"context"
	"testing"
	"time"

	"github.com/equidadeplus/equidade_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	client, err := NewFromConfig(config.SMSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}

	err = client.SendAppointmentConfirmation(context.Background(), "", "Ana", time.Now())
	if err != nil {
		t.Errorf("disabled client must no-op, got %v", err)
	}
}

func TestNewFromConfig_EnabledWithoutAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR:   config.SMSIRConfig{TemplateID: "100"},
	}

	if _, err := NewFromConfig(cfg); err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestNewFromConfig_EnabledWithoutTemplate(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR:   config.SMSIRConfig{APIKey: "k"},
	}

	if _, err := NewFromConfig(cfg); err == nil {
		t.Error("Expected error when template id is missing")
	}
}

func TestNewFromConfig_EnabledWithAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "test-api-key",
			SecretKey:  "test-secret-key",
			TemplateID: "100",
		},
	}

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if !client.IsEnabled() {
		t.Error("Expected client to be enabled")
	}
}

func TestSendAppointmentConfirmation_RequiresPhone(t *testing.T) {
	client, err := NewFromConfig(config.SMSConfig{
		Enabled: true,
		SMSIR:   config.SMSIRConfig{APIKey: "k", TemplateID: "100"},
	})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if err := client.SendAppointmentConfirmation(context.Background(), "", "Ana", time.Now()); err == nil {
		t.Error("Expected error for empty phone")
	}
}

func TestConfirmationParams(t *testing.T) {
	client, _ := NewFromConfig(config.SMSConfig{})
	at := time.Date(2026, 3, 9, 17, 30, 0, 0, time.UTC)

	params := client.ConfirmationParams("Ana", at)
	if len(params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(params))
	}

	want := map[string]string{ParamPatient: "Ana", ParamDate: "09/03/2026"}
	if client.loc.String() == "America/Sao_Paulo" {
		want[ParamTime] = "14:30"
	} else {
		want[ParamTime] = "17:30"
	}
	for _, p := range params {
		if want[p.Key] != p.Value {
			t.Errorf("param %s = %q, want %q", p.Key, p.Value, want[p.Key])
		}
	}
}
