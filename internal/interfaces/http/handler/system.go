package handler

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/shared"
	"github.com/backoffice/financeiro/internal/infrastructure/logger"
	"github.com/backoffice/financeiro/internal/interfaces/http/dto"
)

// Store states reported by Health
const (
	StoreOK           = "ok"
	StoreUnconfigured = "unconfigured"
	StoreError        = "error"
)

// SystemHandler serves liveness and build information
type SystemHandler struct {
	BaseHandler
	store     datastore.Store
	name      string
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(store datastore.Store, name, version string) *SystemHandler {
	return &SystemHandler{
		store:     store,
		name:      name,
		version:   version,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo handles GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Health handles GET /health. A server without a configured store is
// healthy: it serves the dashboard and reports the store state. A store
// that fails to answer makes the server unhealthy.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "healthy", Store: StoreOK}

	_, err := h.store.Select(c.Request.Context(), datastore.Categories, datastore.SelectOptions{
		Columns: []string{"id"},
		Range:   &datastore.Range{From: 0, To: 0},
	})
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrStoreUnavailable):
		resp.Store = StoreUnconfigured
	default:
		logger.FromContext(c.Request.Context()).Warn("Health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Store = StoreError
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
		return
	}
	h.Success(c, resp)
}
