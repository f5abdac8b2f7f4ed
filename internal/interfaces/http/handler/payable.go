package handler

import (
	"github.com/gin-gonic/gin"

	financeapp "github.com/backoffice/financeiro/internal/application/finance"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/query"
)

// PayableHandler serves the payables screen
type PayableHandler struct {
	BaseHandler
	service *financeapp.PayableService
}

// NewPayableHandler creates a new PayableHandler
func NewPayableHandler(service *financeapp.PayableService) *PayableHandler {
	return &PayableHandler{service: service}
}

// List handles GET /pagamentos
func (h *PayableHandler) List(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	result, err := h.service.List(c.Request.Context(), financeapp.PayableRequest{
		Filter:   req.Filter(),
		Sort:     query.ParseSort[finance.PayableField](req.OrderBy, req.OrderDir),
		Page:     req.PageNumber(),
		PageSize: req.Size(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(c, result)
}

// Get handles GET /pagamentos/:id
func (h *PayableHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Create handles POST /pagamentos
func (h *PayableHandler) Create(c *gin.Context) {
	var in financeapp.CreatePayableInput
	if !h.bindJSON(c, &in) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Pay handles POST /pagamentos/:id/pagar. An empty body settles
// the expected amount today.
func (h *PayableHandler) Pay(c *gin.Context) {
	var in financeapp.SettleInput
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &in) {
		return
	}
	p, err := h.service.MarkPaid(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Cancel handles POST /pagamentos/:id/cancelar
func (h *PayableHandler) Cancel(c *gin.Context) {
	p, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete handles DELETE /pagamentos/:id
func (h *PayableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
