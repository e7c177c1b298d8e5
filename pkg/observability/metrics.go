package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Workflow counts domain events that dashboards alert on. It records through
// the global meter provider, so it is a no-op until InitTelemetry runs.
type Workflow struct {
	transitions metric.Int64Counter
	decisions   metric.Int64Counter
	sideEffects metric.Int64Counter
}

func NewWorkflow() *Workflow {
	meter := otel.Meter(tracerName)
	w := &Workflow{}
	w.transitions, _ = meter.Int64Counter(
		"equidade_evolution_transitions_total",
		metric.WithDescription("Evolution state transitions by event and resulting status"),
	)
	w.decisions, _ = meter.Int64Counter(
		"equidade_authz_decisions_total",
		metric.WithDescription("Authorization decisions by resource, action and outcome"),
	)
	w.sideEffects, _ = meter.Int64Counter(
		"equidade_side_effect_failures_total",
		metric.WithDescription("Best effort side effects (events, sms, email) that failed"),
	)
	return w
}

func (w *Workflow) Transition(ctx context.Context, event, status string) {
	if w == nil || w.transitions == nil {
		return
	}
	w.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("status", status),
	))
}

func (w *Workflow) Decision(ctx context.Context, resource, action string, allowed bool) {
	if w == nil || w.decisions == nil {
		return
	}
	w.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("action", action),
		attribute.Bool("allowed", allowed),
	))
}

func (w *Workflow) SideEffectFailed(ctx context.Context, kind string) {
	if w == nil || w.sideEffects == nil {
		return
	}
	w.sideEffects.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
