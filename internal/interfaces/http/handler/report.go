package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	reportapp "github.com/backoffice/financeiro/internal/application/report"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
	"github.com/backoffice/financeiro/internal/interfaces/http/middleware"
)

// ReportHandler serves the report screens and their exports
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
	exports *reportapp.ExportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.ReportService, exports *reportapp.ExportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// bindParams reads start_date, end_date, kind, flow and by_cohort
func (h *ReportHandler) bindParams(c *gin.Context) (reportapp.ExportParams, bool) {
	var params reportapp.ExportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		middleware.HandleValidationError(c, err)
		return params, false
	}
	return params, true
}

// Months handles GET /relatorios/meses, the months a period covers
func (h *ReportHandler) Months(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}
	months, err := h.reports.Months(params.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, months)
}

// CashFlow handles GET /relatorios/fluxo-caixa?kind=realizado|projetado|movimentacoes
func (h *ReportHandler) CashFlow(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}
	res, err := h.reports.CashFlow(c.Request.Context(), params.Period, params.Kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Categories handles GET /relatorios/categorias?flow=entrada|saida
func (h *ReportHandler) Categories(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}
	res, err := h.reports.Categories(c.Request.Context(), params.Period, finance.FlowType(params.Flow))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Recurrence handles GET /relatorios/recorrencia. The month of end_date is
// used, the current month when absent.
func (h *ReportHandler) Recurrence(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}
	res, err := h.reports.Recurrence(c.Request.Context(), params.End)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// TopClients handles GET /relatorios/top-clientes
func (h *ReportHandler) TopClients(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}
	res, err := h.reports.TopClients(c.Request.Context(), params.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// TopSuppliers handles GET /relatorios/top-fornecedores
func (h *ReportHandler) TopSuppliers(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}
	res, err := h.reports.TopSuppliers(c.Request.Context(), params.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// ClientScores handles GET /relatorios/classificacao-clientes?by_cohort=true
func (h *ReportHandler) ClientScores(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}
	res, err := h.reports.ClientScores(c.Request.Context(), params.Period, params.ByCohort)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Dashboard handles GET /relatorios/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	res, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Export handles GET /exportar/:report?format=csv|xlsx. The file is
// rendered in memory so failures still answer with a JSON error.
func (h *ReportHandler) Export(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}
	name := c.Param("report")
	format := c.DefaultQuery("format", reportapp.FormatCSV)

	table, err := h.exports.Table(c.Request.Context(), name, params)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.exports.Write(&buf, format, table); err != nil {
		h.HandleError(c, err)
		return
	}

	mediaType, ext := reportapp.ContentType(format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.%s"`, name, valueobject.Today(), ext))
	c.Data(http.StatusOK, mediaType, buf.Bytes())
}
