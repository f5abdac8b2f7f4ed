package router

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/infrastructure/config"
	"github.com/backoffice/financeiro/internal/infrastructure/logger"
	"github.com/backoffice/financeiro/internal/interfaces/http/dto"
	"github.com/backoffice/financeiro/internal/interfaces/http/middleware"
)

// DashboardPath is where the static dashboard is served
const DashboardPath = "/app"

// EngineOptions configures NewEngine
type EngineOptions struct {
	App       config.AppConfig
	HTTP      config.HTTPConfig
	Telemetry config.TelemetryConfig
	Logger    *zap.Logger
	// Meter records HTTP metrics when telemetry metrics are enabled
	Meter metric.Meter
}

// NewEngine builds the gin engine with the full middleware stack, the API
// routes and, when configured, the static dashboard.
//
// Middleware order:
//  1. Recovery
//  2. RequestID
//  3. tracing
//  4. request logging
//  5. HTTP metrics
//  6. CORS, security headers, body limit
func NewEngine(opts EngineOptions, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	serviceName := opts.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = opts.App.Name
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(serviceName, opts.Telemetry.Enabled)...)
	engine.Use(logger.RequestLogger(log))
	engine.Use(middleware.HTTPMetrics(opts.Meter, opts.Telemetry.MetricsEnabled, log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(opts.HTTP)))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))

	// Liveness stays outside the versioned prefix for load balancers
	engine.GET("/health", h.System.Health)

	Mount(engine.Group(APIPrefix(APIVersion)), FinanceGroups(h))

	mountDashboard(engine, opts.App.StaticDir, log)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	return engine
}

// mountDashboard serves the built dashboard from dir and redirects the
// root to it. A missing directory is logged and skipped.
func mountDashboard(engine *gin.Engine, dir string, log *zap.Logger) {
	if dir == "" {
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Warn("Static dashboard directory not found, skipping", zap.String("dir", dir), zap.Error(err))
		return
	}
	engine.Static(DashboardPath, dir)
	engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, DashboardPath+"/")
	})
	log.Info("Serving dashboard", zap.String("dir", dir), zap.String("path", DashboardPath))
}
