package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false, ServiceName: "sdd-test"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestTracerProvider_EnableSpanProfiles(t *testing.T) {
	t.Run("no-op while tracing is disabled", func(t *testing.T) {
		tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, nil)
		require.NoError(t, err)
		assert.False(t, tp.EnableSpanProfiles())
	})

	t.Run("wraps the sdk provider once", func(t *testing.T) {
		sdk := sdktrace.NewTracerProvider()
		t.Cleanup(func() { _ = sdk.Shutdown(context.Background()) })
		prev := otel.GetTracerProvider()
		t.Cleanup(func() { otel.SetTracerProvider(prev) })

		tp := &TracerProvider{provider: sdk, logger: zap.NewNop()}
		assert.True(t, tp.EnableSpanProfiles())
		assert.False(t, tp.EnableSpanProfiles())

		_, span := tp.Tracer("test").Start(context.Background(), "submit")
		defer span.End()
		assert.True(t, span.SpanContext().IsValid())
	})
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, nil)
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}
