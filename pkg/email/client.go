// Package email delivers transactional mail over SMTP behind a circuit
// breaker.
package email

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"gopkg.in/gomail.v2"

	"github.com/equidadeplus/equidade_backend/config"
)

// Sender is what services depend on.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

type dialFunc func(*gomail.Message) error

type Client struct {
	cfg     Config
	dial    dialFunc
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewFromCentral creates a new email client from central config
func NewFromCentral(cfg *config.Config) (*Client, error) {
	return New(FromCentralConfig(cfg.Email, cfg.Server.Domain))
}

func New(cfg Config) (*Client, error) {
	c := &Client{cfg: cfg}
	c.dial = func(m *gomail.Message) error { return c.newDialer().DialAndSend(m) }
	c.breaker = newBreaker(cfg)
	return c, nil
}

func newBreaker(cfg Config) *gobreaker.CircuitBreaker[struct{}] {
	max := cfg.MaxFailures
	if max == 0 {
		max = DefaultConfig().MaxFailures
	}
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= max
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("email: circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled{}
	}

	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}

	_, err = c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.deliver(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable{Err: err}
	}
	return err
}

func (c *Client) deliver(ctx context.Context, msg *gomail.Message) error {
	done := make(chan error, 1)
	go func() {
		done <- c.dial(msg)
	}()

	// Respect ctx deadline if it's sooner than our config timeout.
	wait := c.cfg.SMTPTimeout()
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}

	select {
	case err := <-done:
		if err != nil {
			return ErrSend{Provider: "gomail/smtp", Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return context.DeadlineExceeded
	}
}

func (c *Client) newDialer() *gomail.Dialer {
	d := gomail.NewDialer(c.cfg.SMTPHost, c.cfg.SMTPPort, c.cfg.SMTPUsername, c.cfg.SMTPPassword)
	d.SSL = c.cfg.SMTPUseTLS && c.cfg.SMTPPort == 465
	d.TLSConfig = &tls.Config{ServerName: c.cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	return d
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	msg := gomail.NewMessage()

	from = strings.TrimSpace(from)
	if from == "" {
		return nil, ErrInvalidMessage{Reason: "from is required"}
	}
	msg.SetHeader("From", from)

	to := cleanAddrs(m.To)
	if len(to) == 0 {
		return nil, ErrInvalidMessage{Reason: "at least one recipient is required"}
	}
	msg.SetHeader("To", to...)
	if len(m.CC) > 0 {
		msg.SetHeader("Cc", cleanAddrs(m.CC)...)
	}
	if len(m.BCC) > 0 {
		msg.SetHeader("Bcc", cleanAddrs(m.BCC)...)
	}

	subj := strings.TrimSpace(m.Subject)
	if subj == "" {
		return nil, ErrInvalidMessage{Reason: "subject is required"}
	}
	msg.SetHeader("Subject", subj)

	for k, v := range m.Headers {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		msg.SetHeader(k, v)
	}

	hasText := strings.TrimSpace(m.TextBody) != ""
	hasHTML := strings.TrimSpace(m.HTMLBody) != ""

	switch {
	case hasText && hasHTML:
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case hasHTML:
		msg.SetBody("text/html", m.HTMLBody)
	case hasText:
		msg.SetBody("text/plain", m.TextBody)
	default:
		return nil, ErrInvalidMessage{Reason: "either TextBody or HTMLBody is required"}
	}

	return msg, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
