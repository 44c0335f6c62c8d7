package montecarlo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return metricdata.Metrics{}
}

func TestRunMany_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	const n = 12
	_, err := RunMany(context.Background(), func(_ context.Context, i int) (*State, error) {
		return stateWithOpenings(i + 1), nil
	}, n, WithWorkers(4), WithMeterProvider(provider))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	trials, ok := findMetric(t, rm, "montecarlo.trials").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, trials.DataPoints, 1)
	assert.Equal(t, int64(n), trials.DataPoints[0].Value)

	openings, ok := findMetric(t, rm, "montecarlo.trial.openings").Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, openings.DataPoints, 1)
	assert.Equal(t, uint64(n), openings.DataPoints[0].Count)
	assert.Equal(t, int64(n*(n+1)/2), openings.DataPoints[0].Sum)
}

func TestRunMany_RecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	_, err := RunMany(context.Background(), func(context.Context, int) (*State, error) {
		return stateWithOpenings(1), nil
	}, 3, WithWorkers(2), WithBatchID("b-1"), WithTracerProvider(provider))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "montecarlo.RunMany", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("batch.id", "b-1"))
	assert.Contains(t, spans[0].Attributes, attribute.Int("batch.trials", 3))
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestRunMany_FailedBatchMarksSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	_, err := RunMany(context.Background(), func(context.Context, int) (*State, error) {
		return nil, nil
	}, 2, WithWorkers(1), WithTracerProvider(provider))
	require.ErrorIs(t, err, ErrNilState)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}
