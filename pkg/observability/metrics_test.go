package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestWorkflow_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	w := NewWorkflow()
	ctx := context.Background()
	w.Transition(ctx, "approve", "finalized")
	w.Transition(ctx, "approve", "finalized")
	w.Decision(ctx, "evolutions", "approve", false)
	w.SideEffectFailed(ctx, "nats")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	totals := map[string]int64{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok, m.Name)
		for _, dp := range sum.DataPoints {
			totals[m.Name] += dp.Value
		}
	}
	assert.Equal(t, int64(2), totals["equidade_evolution_transitions_total"])
	assert.Equal(t, int64(1), totals["equidade_authz_decisions_total"])
	assert.Equal(t, int64(1), totals["equidade_side_effect_failures_total"])
}

func TestWorkflow_NilSafe(t *testing.T) {
	var w *Workflow
	assert.NotPanics(t, func() {
		w.Transition(context.Background(), "create", "draft")
	})
}
