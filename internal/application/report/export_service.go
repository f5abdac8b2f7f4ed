package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	financeapp "github.com/backoffice/financeiro/internal/application/finance"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/report"
	"github.com/backoffice/financeiro/internal/domain/shared"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Exportable report names
const (
	ExportReceivables  = "recebimentos"
	ExportPayables     = "pagamentos"
	ExportMovements    = "movimentacoes"
	ExportCashFlow     = "fluxo-caixa"
	ExportCategories   = "categorias"
	ExportRecurrence   = "recorrencia"
	ExportTopClients   = "top-clientes"
	ExportTopSuppliers = "top-fornecedores"
	ExportClientScores = "classificacao-clientes"
)

// ExportParams selects the rows of an export
type ExportParams struct {
	Period
	// Kind is the cash flow kind, Flow the category direction
	Kind     string `form:"kind"`
	Flow     string `form:"flow"`
	ByCohort bool   `form:"by_cohort"`
}

// ExportService renders reports and list screens as flat tables
type ExportService struct {
	reports     *ReportService
	receivables *financeapp.ReceivableService
	payables    *financeapp.PayableService
	movements   *financeapp.MovementService
	logger      *zap.Logger
}

// NewExportService creates a new ExportService
func NewExportService(
	reports *ReportService,
	receivables *financeapp.ReceivableService,
	payables *financeapp.PayableService,
	movements *financeapp.MovementService,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reports:     reports,
		receivables: receivables,
		payables:    payables,
		movements:   movements,
		logger:      logger,
	}
}

// Table builds the named export. List exports cover the items due (or
// dated) within the period.
func (s *ExportService) Table(ctx context.Context, name string, params ExportParams) (report.Table, error) {
	t, err := s.build(ctx, name, params)
	if err != nil {
		s.logger.Warn("Export failed", zap.String("report", name), zap.Error(err))
		return report.Table{}, err
	}
	s.logger.Info("Export generated", zap.String("report", name), zap.Int("rows", len(t.Rows)))
	return t, nil
}

func (s *ExportService) build(ctx context.Context, name string, params ExportParams) (report.Table, error) {
	switch name {
	case ExportReceivables, ExportPayables, ExportMovements:
		return s.listTable(ctx, name, params.Period)
	case ExportCashFlow:
		res, err := s.reports.CashFlow(ctx, params.Period, params.Kind)
		if err != nil {
			return report.Table{}, err
		}
		return report.CashFlowTable("fluxo_caixa_"+res.Kind, res.CashFlow), nil
	case ExportCategories:
		res, err := s.reports.Categories(ctx, params.Period, finance.FlowType(params.Flow))
		if err != nil {
			return report.Table{}, err
		}
		return report.CategoryTable(res.Items), nil
	case ExportRecurrence:
		rec, err := s.reports.Recurrence(ctx, params.End)
		if err != nil {
			return report.Table{}, err
		}
		return report.RecurrenceTable(*rec), nil
	case ExportTopClients:
		res, err := s.reports.TopClients(ctx, params.Period)
		if err != nil {
			return report.Table{}, err
		}
		return report.TopTable("top_clientes", "Cliente", res.Items), nil
	case ExportTopSuppliers:
		res, err := s.reports.TopSuppliers(ctx, params.Period)
		if err != nil {
			return report.Table{}, err
		}
		return report.TopTable("top_fornecedores", "Fornecedor", res.Items), nil
	case ExportClientScores:
		scoring, err := s.reports.ClientScores(ctx, params.Period, params.ByCohort)
		if err != nil {
			return report.Table{}, err
		}
		return report.ClientScoreTable(*scoring), nil
	default:
		return report.Table{}, fmt.Errorf("export %q: %w", name, shared.ErrNotFound)
	}
}

func (s *ExportService) listTable(ctx context.Context, name string, p Period) (report.Table, error) {
	var from, to string
	if p.Start != "" || p.End != "" {
		months, err := s.reports.Months(p)
		if err != nil {
			return report.Table{}, err
		}
		from, to = report.Bounds(months)
	}
	switch name {
	case ExportReceivables:
		items, err := s.receivables.All(ctx, from, to)
		if err != nil {
			return report.Table{}, err
		}
		return report.ReceivablesTable(items), nil
	case ExportPayables:
		items, err := s.payables.All(ctx, from, to)
		if err != nil {
			return report.Table{}, err
		}
		return report.PayablesTable(items), nil
	default:
		items, err := s.movements.All(ctx, from, to)
		if err != nil {
			return report.Table{}, err
		}
		return report.MovementsTable(items), nil
	}
}

// Write serializes t in format to w
func (s *ExportService) Write(w io.Writer, format string, t report.Table) error {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return shared.NewValidationError("format", fmt.Sprintf("formato %q não suportado", format))
	}
}

// ContentType returns the media type and file extension of format
func ContentType(format string) (mediaType, ext string) {
	if strings.ToLower(format) == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatXLSX
	}
	return "text/csv; charset=utf-8", FormatCSV
}

// WriteCSV writes t as semicolon-separated UTF-8, header first. A byte order
// mark is emitted so spreadsheet tools detect the encoding.
func WriteCSV(w io.Writer, t report.Table) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv %s: %w", t.Name, err)
	}
	return nil
}

// WriteXLSX writes each table to its own sheet of one workbook
func WriteXLSX(w io.Writer, tables ...report.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, t := range tables {
		sheet := sheetName(t.Name, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeSheet(f, sheet, t, header); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}
	_, err = f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet string, t report.Table, headerStyle int) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	for col, title := range t.Header {
		width := float64(len([]rune(title)) + 4)
		if width < 12 {
			width = 12
		}
		if err := sw.SetColWidth(col+1, col+1, width); err != nil {
			return err
		}
	}
	row := make([]any, len(t.Header))
	for i, h := range t.Header {
		row[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", row); err != nil {
		return err
	}
	for r, cells := range t.Rows {
		values := make([]any, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// sheetName fits a table name into the 31 characters a sheet name allows
func sheetName(name string, index int) string {
	if name == "" {
		name = fmt.Sprintf("Planilha%d", index+1)
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
