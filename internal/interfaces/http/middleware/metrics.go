package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/infrastructure/telemetry"
)

// unmatchedRoute labels requests no route matched
const unmatchedRoute = "unknown"

type httpMetrics struct {
	requests *telemetry.Counter
	latency  *telemetry.Histogram
	size     *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	m := &httpMetrics{}
	var err error
	if m.requests, err = telemetry.NewCounter(meter, "http_server_request_total",
		"HTTP requests served", "{request}"); err != nil {
		return nil, err
	}
	if m.latency, err = telemetry.NewHistogram(meter, "http_server_request_duration_seconds",
		"HTTP request latency", "s", telemetry.HTTPDurationBuckets); err != nil {
		return nil, err
	}
	if m.size, err = telemetry.NewHistogram(meter, "http_server_response_size_bytes",
		"HTTP response body size", "By", telemetry.ResponseSizeBuckets); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"), metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *httpMetrics) handle(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()
	m.inFlight.Add(ctx, 1)
	defer m.inFlight.Add(ctx, -1)

	c.Next()

	route := c.FullPath()
	if route == "" {
		route = unmatchedRoute
	}
	status := c.Writer.Status()
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}
	m.latency.RecordDuration(ctx, time.Since(start), attrs...)
	if n := c.Writer.Size(); n > 0 {
		m.size.Record(ctx, float64(n), attrs...)
	}
	m.requests.Inc(ctx, append(attrs,
		telemetry.AttrHTTPStatus.Int(status),
		telemetry.AttrStatusGroup.String(HTTPMetricsStatusGroup(status)),
	)...)
}

// HTTPMetrics records request count, latency, response size and in-flight
// requests on meter, labelled by route pattern so ids do not add series.
// It passes requests through when disabled or when the instruments cannot
// be created.
func HTTPMetrics(meter metric.Meter, enabled bool, logger *zap.Logger) gin.HandlerFunc {
	if !enabled || meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		if logger != nil {
			logger.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return func(c *gin.Context) { c.Next() }
	}
	return m.handle
}

// HTTPMetricsStatusGroup returns the status class, e.g. 4xx. Informational
// and out-of-range codes are "other".
func HTTPMetricsStatusGroup(status int) string {
	if status < 200 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
