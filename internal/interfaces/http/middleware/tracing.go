package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/backoffice/financeiro/internal/infrastructure/telemetry"
)

// Tracing returns the server span handlers: otelgin, which names spans
// "METHOD route", followed by a handler that tags the span with the request
// id, the report and export format, and marks 4xx and 5xx responses failed.
// Disabled tracing returns no handlers. Register after RequestID.
func Tracing(serviceName string, enabled bool) []gin.HandlerFunc {
	if !enabled {
		return nil
	}
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), annotateSpan}
}

func annotateSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}

	var attrs []attribute.KeyValue
	if id := GetRequestID(c); id != "" {
		attrs = append(attrs, telemetry.SpanRequestID.String(id))
	}
	if report := c.Param("report"); report != "" {
		attrs = append(attrs, telemetry.SpanReport.String(report))
	}
	if format := c.Query("format"); format != "" {
		attrs = append(attrs, telemetry.SpanExport.String(format))
	}
	span.SetAttributes(attrs...)

	c.Next()

	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		return
	}
	span.SetStatus(codes.Error, spanErrorDescription(status))
	span.SetAttributes(attribute.Int("http.status_code", status))
	if last := c.Errors.Last(); last != nil {
		span.SetAttributes(attribute.String("error.message", last.Error()))
	}
}

func spanErrorDescription(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusNotFound:
		return "Not Found"
	case status == http.StatusUnprocessableEntity:
		return "Invalid State"
	}
	return "Client Error"
}
