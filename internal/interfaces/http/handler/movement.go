package handler

import (
	"github.com/gin-gonic/gin"

	financeapp "github.com/backoffice/financeiro/internal/application/finance"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/query"
	"github.com/backoffice/financeiro/internal/interfaces/http/dto"
)

// MovementHandler serves the daily movements screen
type MovementHandler struct {
	BaseHandler
	service *financeapp.MovementService
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(service *financeapp.MovementService) *MovementHandler {
	return &MovementHandler{service: service}
}

// List handles GET /movimentacoes
func (h *MovementHandler) List(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	result, err := h.service.List(c.Request.Context(), financeapp.MovementRequest{
		Filter:   req.Filter(),
		Sort:     query.ParseSort[finance.MovementField](req.OrderBy, req.OrderDir),
		Page:     req.PageNumber(),
		PageSize: req.Size(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(c, result)
}

// Get handles GET /movimentacoes/:id
func (h *MovementHandler) Get(c *gin.Context) {
	m, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// Create handles POST /movimentacoes
func (h *MovementHandler) Create(c *gin.Context) {
	var in financeapp.CreateMovementInput
	if !h.bindJSON(c, &in) {
		return
	}
	m, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

// Delete handles DELETE /movimentacoes/:id. A stored receipt is removed too.
func (h *MovementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReceiptUpload handles POST /movimentacoes/comprovantes. The returned key
// goes in the comprovante field of the movement once the upload is done.
func (h *MovementHandler) ReceiptUpload(c *gin.Context) {
	var req dto.ReceiptUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	upload, err := h.service.ReceiptUploadURL(c.Request.Context(), req.FileName, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, upload)
}
