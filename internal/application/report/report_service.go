// Package report assembles the financial reports and the dashboard from
// store reads and the pure aggregation functions.
package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/application/lookup"
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/report"
	"github.com/backoffice/financeiro/internal/domain/shared"
	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
	"github.com/backoffice/financeiro/internal/infrastructure/telemetry"
)

// Cash flow kinds
const (
	CashFlowRealized  = "realizado"
	CashFlowProjected = "projetado"
	CashFlowMovements = "movimentacoes"
)

// Options configures the report service
type Options struct {
	TopN           int
	MaxMonths      int
	TrailingMonths int
	Logger         *zap.Logger
	// Today returns the reference date; defaults to the local date
	Today func() string
}

// Period bounds a report. Start and End accept "YYYY-MM" or an ISO date;
// when both are empty the trailing months ending today are used.
type Period struct {
	Start string `form:"start_date" json:"start_date"`
	End   string `form:"end_date" json:"end_date"`
}

// CashFlowResponse is a monthly cash-flow series with its chart
type CashFlowResponse struct {
	Kind     string             `json:"kind"`
	CashFlow report.CashFlow    `json:"cash_flow"`
	Chart    report.ChartSeries `json:"chart"`
}

// RankingResponse is a grouped ranking with its chart
type RankingResponse struct {
	Items []report.Ranked    `json:"items"`
	Chart report.ChartSeries `json:"chart"`
}

// DashboardResponse is the headline block plus the trailing realized series
type DashboardResponse struct {
	Summary  report.Summary     `json:"summary"`
	CashFlow report.CashFlow    `json:"cash_flow"`
	Chart    report.ChartSeries `json:"chart"`
}

// ReportService provides the report screens
type ReportService struct {
	store    datastore.Store
	resolver *lookup.Resolver
	opts     Options
}

// NewReportService creates a new ReportService
func NewReportService(store datastore.Store, resolver *lookup.Resolver, opts Options) *ReportService {
	if opts.TopN <= 0 {
		opts.TopN = report.DefaultTopN
	}
	if opts.MaxMonths <= 0 || opts.MaxMonths > report.MaxMonths {
		opts.MaxMonths = report.MaxMonths
	}
	if opts.TrailingMonths <= 0 {
		opts.TrailingMonths = 6
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Today == nil {
		opts.Today = valueobject.Today
	}
	return &ReportService{store: store, resolver: resolver, opts: opts}
}

// Months resolves a period into its monthly buckets
func (s *ReportService) Months(p Period) ([]report.Month, error) {
	if p.Start == "" && p.End == "" {
		return report.TrailingMonths(s.opts.Today(), s.opts.TrailingMonths)
	}
	start, end := p.Start, p.End
	if start == "" {
		start = end
	}
	if end == "" {
		end = s.opts.Today()
	}
	months, err := report.Months(start, end, s.opts.MaxMonths)
	if err != nil {
		return nil, shared.NewValidationError("periodo", err.Error())
	}
	return months, nil
}

// CashFlow builds the realized, projected or movement cash flow of a period
func (s *ReportService) CashFlow(ctx context.Context, p Period, kind string) (*CashFlowResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "cash_flow", telemetry.WithAttributes(telemetry.SpanReport.String(kind)))
	defer span.End()

	months, err := s.Months(p)
	if err != nil {
		return nil, err
	}
	from, to := report.Bounds(months)

	var cf report.CashFlow
	switch kind {
	case CashFlowRealized, "":
		kind = CashFlowRealized
		receivables, payables, err := s.settled(ctx)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		cf = report.RealizedCashFlow(months, receivables, payables)
	case CashFlowProjected:
		ropts := dueBetween(from, to)
		ropts.Where("status", string(finance.ReceivableStatusPending))
		receivables, err := loadReceivables(ctx, s.store, ropts)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		popts := dueBetween(from, to)
		popts.Where("status", string(finance.PayableStatusPending))
		payables, err := loadPayables(ctx, s.store, popts)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		cf = report.ProjectedCashFlow(months, receivables, payables)
	case CashFlowMovements:
		movements, err := s.movements(ctx, from, to)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		cf = report.MovementSeries(months, movements)
	default:
		return nil, shared.NewValidationError("tipo", fmt.Sprintf("fluxo de caixa %q desconhecido", kind))
	}
	return &CashFlowResponse{Kind: kind, CashFlow: cf, Chart: report.CashFlowChart(cf)}, nil
}

// Categories groups the period's movements by category. An empty flow
// groups both directions.
func (s *ReportService) Categories(ctx context.Context, p Period, flow finance.FlowType) (*RankingResponse, error) {
	if flow != "" && !flow.IsValid() {
		return nil, shared.NewValidationError("tipo", fmt.Sprintf("tipo %q desconhecido", flow))
	}
	months, err := s.Months(p)
	if err != nil {
		return nil, err
	}
	from, to := report.Bounds(months)
	movements, err := s.movements(ctx, from, to)
	if err != nil {
		return nil, err
	}
	ranked := report.CategoryTotals(movements, flow)
	s.applyNames(ctx, datastore.Categories, ranked, "Sem categoria")
	return &RankingResponse{Items: ranked, Chart: report.RankedChart("Categorias", ranked)}, nil
}

// Recurrence computes MRR and churn for the month of date (today when empty)
func (s *ReportService) Recurrence(ctx context.Context, date string) (*report.Recurrence, error) {
	if date == "" {
		date = s.opts.Today()
	}
	months, err := report.Months(date, date, 1)
	if err != nil {
		return nil, shared.NewValidationError("mes", err.Error())
	}
	from, to := report.Bounds(months)
	opts := dueBetween(from, to)
	opts.Where("tipo_recebimento", string(finance.ReceivableTypeMonthly))
	receivables, err := loadReceivables(ctx, s.store, opts)
	if err != nil {
		return nil, err
	}
	rec := report.RecurringRevenue(receivables, months[0].Key+"-01")
	return &rec, nil
}

// TopClients ranks clients by amount received in the period
func (s *ReportService) TopClients(ctx context.Context, p Period) (*RankingResponse, error) {
	months, err := s.Months(p)
	if err != nil {
		return nil, err
	}
	from, to := report.Bounds(months)
	receivables, _, err := s.settled(ctx)
	if err != nil {
		return nil, err
	}
	inPeriod := make([]finance.Receivable, 0, len(receivables))
	for _, r := range receivables {
		if d := r.RealizedDate(); d >= from && d <= to {
			inPeriod = append(inPeriod, r)
		}
	}
	top := report.TopN(report.ReceivedEntries(inPeriod), s.opts.TopN)
	s.applyNames(ctx, datastore.Clients, top, lookup.Missing)
	return &RankingResponse{Items: top, Chart: report.RankedChart("Clientes", top)}, nil
}

// TopSuppliers ranks suppliers by amount paid in the period
func (s *ReportService) TopSuppliers(ctx context.Context, p Period) (*RankingResponse, error) {
	months, err := s.Months(p)
	if err != nil {
		return nil, err
	}
	from, to := report.Bounds(months)
	_, payables, err := s.settled(ctx)
	if err != nil {
		return nil, err
	}
	inPeriod := make([]finance.Payable, 0, len(payables))
	for _, pay := range payables {
		if d := pay.RealizedDate(); d >= from && d <= to {
			inPeriod = append(inPeriod, pay)
		}
	}
	top := report.TopN(report.PaidEntries(inPeriod), s.opts.TopN)
	s.applyNames(ctx, datastore.Suppliers, top, lookup.Missing)
	return &RankingResponse{Items: top, Chart: report.RankedChart("Fornecedores", top)}, nil
}

// ClientScores classifies clients (or cohorts) by payment delay and revenue
// over the monthly receivables due in the period
func (s *ReportService) ClientScores(ctx context.Context, p Period, byCohort bool) (*report.Scoring, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "client_scores")
	defer span.End()

	months, err := s.Months(p)
	if err != nil {
		return nil, err
	}
	from, to := report.Bounds(months)
	opts := dueBetween(from, to)
	opts.Where("tipo_recebimento", string(finance.ReceivableTypeMonthly))
	receivables, err := loadReceivables(ctx, s.store, opts)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	clients, err := load[finance.Client](ctx, s.store, datastore.Clients, datastore.SelectOptions{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	scoring := report.ScoreClients(report.ScoreInput{
		Receivables: receivables,
		Clients:     clients,
		Today:       s.opts.Today(),
		From:        from,
		To:          to,
		ByCohort:    byCohort,
	})
	return &scoring, nil
}

// Dashboard computes the headline totals and the trailing realized series
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "dashboard")
	defer span.End()

	today := s.opts.Today()
	receivables, err := loadReceivables(ctx, s.store, datastore.SelectOptions{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payables, err := loadPayables(ctx, s.store, datastore.SelectOptions{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	months, err := report.TrailingMonths(today, s.opts.TrailingMonths)
	if err != nil {
		return nil, err
	}
	cf := report.RealizedCashFlow(months, receivables, payables)
	return &DashboardResponse{
		Summary:  report.DashboardSummary(receivables, payables, today),
		CashFlow: cf,
		Chart:    report.CashFlowChart(cf),
	}, nil
}

// settled loads every received receivable and paid payable. Realized dates
// fall back to due dates, so the date predicate is applied after loading.
func (s *ReportService) settled(ctx context.Context) ([]finance.Receivable, []finance.Payable, error) {
	ropts := datastore.SelectOptions{}
	ropts.Where("status", string(finance.ReceivableStatusReceived))
	receivables, err := loadReceivables(ctx, s.store, ropts)
	if err != nil {
		return nil, nil, err
	}
	popts := datastore.SelectOptions{}
	popts.Where("status", string(finance.PayableStatusPaid))
	payables, err := loadPayables(ctx, s.store, popts)
	if err != nil {
		return nil, nil, err
	}
	return receivables, payables, nil
}

func (s *ReportService) movements(ctx context.Context, from, to string) ([]finance.DailyMovement, error) {
	opts := datastore.SelectOptions{}
	opts.From("data_transacao", from).Until("data_transacao", to)
	return load[finance.DailyMovement](ctx, s.store, datastore.Movements, opts)
}

// applyNames resolves only the ranked ids. A lookup failure is logged and
// the affected rows keep the missing-name sentinel.
func (s *ReportService) applyNames(ctx context.Context, kind datastore.Collection, ranked []report.Ranked, unkeyed string) {
	names, err := s.resolver.ResolveNames(ctx, kind, report.IDs(ranked))
	if err != nil {
		s.opts.Logger.Warn("Name resolution incomplete", zap.String("collection", string(kind)), zap.Error(err))
	}
	report.ApplyNames(ranked, names, lookup.Missing)
	for i := range ranked {
		if ranked[i].ID == "" {
			ranked[i].Name = unkeyed
		}
	}
}

func dueBetween(from, to string) datastore.SelectOptions {
	opts := datastore.SelectOptions{}
	opts.From("data_vencimento", from).Until("data_vencimento", to)
	return opts
}

func loadReceivables(ctx context.Context, store datastore.Store, opts datastore.SelectOptions) ([]finance.Receivable, error) {
	return load[finance.Receivable](ctx, store, datastore.Receivables, opts)
}

func loadPayables(ctx context.Context, store datastore.Store, opts datastore.SelectOptions) ([]finance.Payable, error) {
	return load[finance.Payable](ctx, store, datastore.Payables, opts)
}

func load[T any](ctx context.Context, store datastore.Store, c datastore.Collection, opts datastore.SelectOptions) ([]T, error) {
	res, err := store.Select(ctx, c, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c, err)
	}
	return datastore.DecodeAll[T](res.Rows)
}
