package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/query"
)

// ListingMetrics records list screen loads. It satisfies listing.Metrics.
type ListingMetrics struct {
	loads       *Counter
	loadLatency *Histogram
	stale       *Counter
	storeErrors *Counter
}

// NewListingMetrics creates the listing instruments on meter
func NewListingMetrics(meter metric.Meter) (*ListingMetrics, error) {
	loads, err := NewCounter(meter, "listing_load_total", "List pages loaded by collection and pagination mode", "{load}")
	if err != nil {
		return nil, err
	}
	latency, err := NewHistogram(meter, "listing_load_duration_seconds", "List page load latency in seconds", "s", DurationBuckets)
	if err != nil {
		return nil, err
	}
	stale, err := NewCounter(meter, "listing_stale_total", "Loads discarded because a newer request superseded them", "{load}")
	if err != nil {
		return nil, err
	}
	storeErrors, err := NewCounter(meter, "listing_store_error_total", "List loads that failed in the data store", "{error}")
	if err != nil {
		return nil, err
	}
	return &ListingMetrics{loads: loads, loadLatency: latency, stale: stale, storeErrors: storeErrors}, nil
}

// RecordLoad implements listing.Metrics
func (m *ListingMetrics) RecordLoad(ctx context.Context, collection datastore.Collection, mode query.Mode, elapsed time.Duration) {
	attrs := []attribute.KeyValue{AttrCollection.String(string(collection)), AttrMode.String(string(mode))}
	m.loads.Inc(ctx, attrs...)
	m.loadLatency.RecordDuration(ctx, elapsed, attrs...)
}

// RecordStale implements listing.Metrics
func (m *ListingMetrics) RecordStale(ctx context.Context, collection datastore.Collection) {
	m.stale.Inc(ctx, AttrCollection.String(string(collection)))
}

// RecordStoreError implements listing.Metrics
func (m *ListingMetrics) RecordStoreError(ctx context.Context, collection datastore.Collection) {
	m.storeErrors.Inc(ctx, AttrCollection.String(string(collection)))
}
