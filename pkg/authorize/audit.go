package authorize

import (
	"context"
	"log/slog"
	"time"
)

// AuditedAuthorization wraps an IAuthorization implementation with audit logging.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{
		inner:  inner,
		logger: logger,
	}
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, actor Actor, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, actor, object, action)
	duration := time.Since(start)

	unit := ""
	if actor.HasUnit() {
		unit = actor.Unit().String()
	}
	attrs := []any{
		"subject", string(actor.Subject()),
		"role", string(actor.Role),
		"unit", unit,
		"resource", string(object),
		"action", string(action),
		"allowed", allowed,
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		attrs = append(attrs, "error", err.Error())
		a.logger.ErrorContext(ctx, "authz_decision", attrs...)
	} else if allowed {
		a.logger.InfoContext(ctx, "authz_decision", attrs...)
	} else {
		a.logger.WarnContext(ctx, "authz_decision", attrs...)
	}

	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, actor Actor, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, actor, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *AuditedAuthorization) Reload(ctx context.Context) error {
	err := a.inner.Reload(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "authz_policy_reload", "error", err.Error())
	} else {
		a.logger.InfoContext(ctx, "authz_policy_reload")
	}
	return err
}
