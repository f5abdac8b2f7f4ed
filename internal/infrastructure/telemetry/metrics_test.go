package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestMeterProvider_CounterAndHistogram(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp, err := newMeterProvider("financeiro", reader, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	require.True(t, mp.IsEnabled())

	meter := mp.Meter(TracerName)
	exports, err := NewCounter(meter, "export_total", "Exports generated", "{export}")
	require.NoError(t, err)
	latency, err := NewHistogram(meter, "export_duration_seconds", "Export latency", "s", []float64{0.1, 1})
	require.NoError(t, err)

	exports.Inc(context.Background(), AttrCollection.String("recebimentos"))
	exports.Add(context.Background(), 2, AttrCollection.String("recebimentos"))
	latency.RecordDuration(context.Background(), 300*time.Millisecond)
	latency.RecordDuration(context.Background(), 2*time.Second)

	metrics := collect(t, reader)
	assert.Equal(t, int64(3), sumFor(t, metrics["export_total"], "recebimentos"))

	hist, ok := metrics["export_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, []float64{0.1, 1}, hist.DataPoints[0].Bounds)
	assert.Equal(t, []uint64{0, 1, 1}, hist.DataPoints[0].BucketCounts)
}
