package handler

import (
	"github.com/gin-gonic/gin"

	financeapp "github.com/backoffice/financeiro/internal/application/finance"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/query"
)

// ReceivableHandler serves the receivables screen
type ReceivableHandler struct {
	BaseHandler
	service *financeapp.ReceivableService
}

// NewReceivableHandler creates a new ReceivableHandler
func NewReceivableHandler(service *financeapp.ReceivableService) *ReceivableHandler {
	return &ReceivableHandler{service: service}
}

// List handles GET /recebimentos
func (h *ReceivableHandler) List(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	result, err := h.service.List(c.Request.Context(), financeapp.ReceivableRequest{
		Filter:   req.Filter(),
		Sort:     query.ParseSort[finance.ReceivableField](req.OrderBy, req.OrderDir),
		Page:     req.PageNumber(),
		PageSize: req.Size(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(c, result)
}

// Get handles GET /recebimentos/:id
func (h *ReceivableHandler) Get(c *gin.Context) {
	r, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Create handles POST /recebimentos
func (h *ReceivableHandler) Create(c *gin.Context) {
	var in financeapp.CreateReceivableInput
	if !h.bindJSON(c, &in) {
		return
	}
	r, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

// Receive handles POST /recebimentos/:id/receber. An empty body settles
// the expected amount today.
func (h *ReceivableHandler) Receive(c *gin.Context) {
	var in financeapp.SettleInput
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &in) {
		return
	}
	r, err := h.service.MarkReceived(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Cancel handles POST /recebimentos/:id/cancelar
func (h *ReceivableHandler) Cancel(c *gin.Context) {
	r, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Delete handles DELETE /recebimentos/:id
func (h *ReceivableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
