// Package handler holds the gin handlers of the finance API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/domain/query"
	"github.com/backoffice/financeiro/internal/domain/shared"
	"github.com/backoffice/financeiro/internal/infrastructure/logger"
	"github.com/backoffice/financeiro/internal/interfaces/http/dto"
	"github.com/backoffice/financeiro/internal/interfaces/http/middleware"
)

// BaseHandler is embedded by every handler for the shared response helpers
type BaseHandler struct{}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error answers with an API error code, the status follows from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.HTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// HandleError answers for a service error. Errors that are neither
// validation nor domain errors are logged and hidden behind ERR_INTERNAL.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var (
		verr *shared.ValidationError
		derr *shared.DomainError
	)
	switch {
	case errors.As(err, &verr):
		details := []dto.ValidationDetail{{Field: verr.Field, Message: verr.Message}}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(verr.Error(), middleware.GetRequestID(c), details))
	case errors.As(err, &derr):
		h.Error(c, dto.APIErrorCode(derr.Code), derr.Message)
	default:
		logger.FromContext(c.Request.Context()).Error("Unhandled error",
			zap.String("path", c.FullPath()), zap.Error(err))
		h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
	}
}

// bindJSON reports false after answering 400 when the body does not bind
func (h *BaseHandler) bindJSON(c *gin.Context, dst any) bool {
	return bound(c, c.ShouldBindJSON(dst))
}

func (h *BaseHandler) bindList(c *gin.Context) (dto.ListRequest, bool) {
	var req dto.ListRequest
	return req, bound(c, c.ShouldBindQuery(&req))
}

func bound(c *gin.Context, err error) bool {
	if err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

func page[T any](c *gin.Context, p query.Page[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(p))
}
