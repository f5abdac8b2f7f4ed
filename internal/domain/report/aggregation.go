package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
)

// DefaultTopN is the size of counterpart rankings
const DefaultTopN = 5

var hundred = decimal.NewFromInt(100)

// CashFlowPoint is one month of a cash-flow series
type CashFlowPoint struct {
	Month   Month           `json:"month"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// CashFlow is a pair of parallel monthly series plus their totals
type CashFlow struct {
	Points       []CashFlowPoint `json:"points"`
	TotalInflow  decimal.Decimal `json:"total_inflow"`
	TotalOutflow decimal.Decimal `json:"total_outflow"`
	Net          decimal.Decimal `json:"net"`
}

func newCashFlow(months []Month) *CashFlow {
	cf := &CashFlow{Points: make([]CashFlowPoint, len(months))}
	for i, m := range months {
		cf.Points[i] = CashFlowPoint{Month: m, Inflow: decimal.Zero, Outflow: decimal.Zero, Net: decimal.Zero}
	}
	return cf
}

func (cf *CashFlow) finish() CashFlow {
	cf.TotalInflow = decimal.Zero
	cf.TotalOutflow = decimal.Zero
	for i := range cf.Points {
		p := &cf.Points[i]
		p.Net = p.Inflow.Sub(p.Outflow)
		cf.TotalInflow = cf.TotalInflow.Add(p.Inflow)
		cf.TotalOutflow = cf.TotalOutflow.Add(p.Outflow)
	}
	cf.Net = cf.TotalInflow.Sub(cf.TotalOutflow)
	return *cf
}

// RealizedCashFlow sums received receivables into the inflow series and paid
// payables into the outflow series, bucketed by the "YYYY-MM" prefix of the
// realized date.
func RealizedCashFlow(months []Month, receivables []finance.Receivable, payables []finance.Payable) CashFlow {
	cf := newCashFlow(months)
	idx := bucketIndex(months)

	for i := range receivables {
		r := &receivables[i]
		if !r.IsReceived() {
			continue
		}
		if b, ok := idx[valueobject.MonthKey(r.RealizedDate())]; ok {
			cf.Points[b].Inflow = cf.Points[b].Inflow.Add(r.RealizedAmount())
		}
	}
	for i := range payables {
		p := &payables[i]
		if !p.IsPaid() {
			continue
		}
		if b, ok := idx[valueobject.MonthKey(p.RealizedDate())]; ok {
			cf.Points[b].Outflow = cf.Points[b].Outflow.Add(p.RealizedAmount())
		}
	}
	return cf.finish()
}

// ProjectedCashFlow sums expected amounts of pending items by due month
func ProjectedCashFlow(months []Month, receivables []finance.Receivable, payables []finance.Payable) CashFlow {
	cf := newCashFlow(months)
	idx := bucketIndex(months)

	for i := range receivables {
		r := &receivables[i]
		if r.Status != finance.ReceivableStatusPending {
			continue
		}
		if b, ok := idx[valueobject.MonthKey(r.DataVencimento)]; ok {
			cf.Points[b].Inflow = cf.Points[b].Inflow.Add(r.ValorEsperado)
		}
	}
	for i := range payables {
		p := &payables[i]
		if p.Status != finance.PayableStatusPending {
			continue
		}
		if b, ok := idx[valueobject.MonthKey(p.DataVencimento)]; ok {
			cf.Points[b].Outflow = cf.Points[b].Outflow.Add(p.ValorEsperado)
		}
	}
	return cf.finish()
}

// MovementSeries buckets daily movements by transaction month
func MovementSeries(months []Month, movements []finance.DailyMovement) CashFlow {
	cf := newCashFlow(months)
	idx := bucketIndex(months)

	for i := range movements {
		m := &movements[i]
		b, ok := idx[valueobject.MonthKey(m.DataTransacao)]
		if !ok {
			continue
		}
		switch m.Tipo {
		case finance.FlowIn:
			cf.Points[b].Inflow = cf.Points[b].Inflow.Add(m.Valor)
		case finance.FlowOut:
			cf.Points[b].Outflow = cf.Points[b].Outflow.Add(m.Valor)
		}
	}
	return cf.finish()
}

// Entry is an amount attributed to an optional key (counterpart, category)
type Entry struct {
	Key    *string
	Amount decimal.Decimal
}

// ReceivedEntries attributes realized inflow to clients
func ReceivedEntries(receivables []finance.Receivable) []Entry {
	out := make([]Entry, 0, len(receivables))
	for i := range receivables {
		r := &receivables[i]
		if r.IsReceived() {
			out = append(out, Entry{Key: r.ClienteID, Amount: r.RealizedAmount()})
		}
	}
	return out
}

// PaidEntries attributes realized outflow to suppliers
func PaidEntries(payables []finance.Payable) []Entry {
	out := make([]Entry, 0, len(payables))
	for i := range payables {
		p := &payables[i]
		if p.IsPaid() {
			out = append(out, Entry{Key: p.FornecedorID, Amount: p.RealizedAmount()})
		}
	}
	return out
}

// MovementEntries attributes movements of one direction to their category.
// An empty flow keeps both directions.
func MovementEntries(movements []finance.DailyMovement, flow finance.FlowType) []Entry {
	out := make([]Entry, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		if flow != "" && m.Tipo != flow {
			continue
		}
		out = append(out, Entry{Key: m.CategoriaID, Amount: m.Valor})
	}
	return out
}

// Ranked is a grouped total
type Ranked struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
	// Share is the percentage of the grand total, two decimal places
	Share decimal.Decimal `json:"share"`
}

// GroupTotals sums entries per key, sorted by total descending then id.
// Entries without a key are grouped under the empty id.
func GroupTotals(entries []Entry) []Ranked {
	byKey := make(map[string]*Ranked)
	order := make([]string, 0)
	grand := decimal.Zero

	for _, e := range entries {
		key := ""
		if e.Key != nil {
			key = *e.Key
		}
		g, ok := byKey[key]
		if !ok {
			g = &Ranked{ID: key, Total: decimal.Zero}
			byKey[key] = g
			order = append(order, key)
		}
		g.Total = g.Total.Add(e.Amount)
		g.Count++
		grand = grand.Add(e.Amount)
	}

	out := make([]Ranked, 0, len(order))
	for _, key := range order {
		g := byKey[key]
		g.Share = percentOf(g.Total, grand)
		out = append(out, *g)
	}
	sortRanked(out)
	return out
}

// CategoryTotals groups movements of one direction by category with their
// percentage share, largest first. An empty flow keeps both directions.
func CategoryTotals(movements []finance.DailyMovement, flow finance.FlowType) []Ranked {
	return GroupTotals(MovementEntries(movements, flow))
}

// TopN groups keyed entries and keeps the n largest totals. Entries without
// a key are ignored.
func TopN(entries []Entry, n int) []Ranked {
	if n <= 0 {
		n = DefaultTopN
	}
	keyed := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Key != nil && *e.Key != "" {
			keyed = append(keyed, e)
		}
	}
	ranked := GroupTotals(keyed)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// IDs returns the ids of ranked groups, skipping the unkeyed group
func IDs(ranked []Ranked) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		if r.ID != "" {
			out = append(out, r.ID)
		}
	}
	return out
}

// ApplyNames fills display names from a lookup result
func ApplyNames(ranked []Ranked, names map[string]string, fallback string) {
	for i := range ranked {
		if n, ok := names[ranked[i].ID]; ok && ranked[i].ID != "" {
			ranked[i].Name = n
		} else {
			ranked[i].Name = fallback
		}
	}
}

func sortRanked(r []Ranked) {
	sort.SliceStable(r, func(i, j int) bool {
		if c := r[i].Total.Cmp(r[j].Total); c != 0 {
			return c > 0
		}
		return r[i].ID < r[j].ID
	})
}

// Recurrence holds MRR and churn for one month
type Recurrence struct {
	Month     string          `json:"month"`
	MRR       decimal.Decimal `json:"mrr"`
	Cancelled decimal.Decimal `json:"cancelled"`
	// ChurnRate is Cancelled / MRR as a fraction; zero when MRR is zero
	ChurnRate decimal.Decimal `json:"churn_rate"`
	Count     int             `json:"count"`
}

// RecurringRevenue computes MRR over monthly receivables due in the month of
// today, cancelled ones included, and the cancelled share of it.
func RecurringRevenue(receivables []finance.Receivable, today string) Recurrence {
	month := valueobject.MonthKey(today)
	rec := Recurrence{Month: month, MRR: decimal.Zero, Cancelled: decimal.Zero, ChurnRate: decimal.Zero}

	for i := range receivables {
		r := &receivables[i]
		if r.TipoRecebimento != finance.ReceivableTypeMonthly || valueobject.MonthKey(r.DataVencimento) != month {
			continue
		}
		rec.MRR = rec.MRR.Add(r.ValorEsperado)
		rec.Count++
		if r.Status == finance.ReceivableStatusCancelled {
			rec.Cancelled = rec.Cancelled.Add(r.ValorEsperado)
		}
	}
	if !rec.MRR.IsZero() {
		rec.ChurnRate = rec.Cancelled.Div(rec.MRR)
	}
	return rec
}

// OverdueTotals counts pending items past their due date
type OverdueTotals struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Summary is the dashboard headline block
type Summary struct {
	OpenReceivables    decimal.Decimal `json:"open_receivables"`
	OpenPayables       decimal.Decimal `json:"open_payables"`
	OverdueReceivables OverdueTotals   `json:"overdue_receivables"`
	OverduePayables    OverdueTotals   `json:"overdue_payables"`
	MonthInflow        decimal.Decimal `json:"month_inflow"`
	MonthOutflow       decimal.Decimal `json:"month_outflow"`
	MonthNet           decimal.Decimal `json:"month_net"`
	Recurrence         Recurrence      `json:"recurrence"`
}

// DashboardSummary computes open, overdue and current-month realized totals
func DashboardSummary(receivables []finance.Receivable, payables []finance.Payable, today string) Summary {
	s := Summary{
		OpenReceivables:    decimal.Zero,
		OpenPayables:       decimal.Zero,
		OverdueReceivables: OverdueTotals{Total: decimal.Zero},
		OverduePayables:    OverdueTotals{Total: decimal.Zero},
	}
	month := valueobject.MonthKey(today)

	for i := range receivables {
		r := &receivables[i]
		if r.Status == finance.ReceivableStatusPending {
			s.OpenReceivables = s.OpenReceivables.Add(r.ValorEsperado)
			if r.IsOverdue(today) {
				s.OverdueReceivables.Count++
				s.OverdueReceivables.Total = s.OverdueReceivables.Total.Add(r.ValorEsperado)
			}
		}
	}
	for i := range payables {
		p := &payables[i]
		if p.Status == finance.PayableStatusPending {
			s.OpenPayables = s.OpenPayables.Add(p.ValorEsperado)
			if p.IsOverdue(today) {
				s.OverduePayables.Count++
				s.OverduePayables.Total = s.OverduePayables.Total.Add(p.ValorEsperado)
			}
		}
	}

	current := RealizedCashFlow([]Month{{Key: month}}, receivables, payables)
	s.MonthInflow = current.TotalInflow
	s.MonthOutflow = current.TotalOutflow
	s.MonthNet = current.Net
	s.Recurrence = RecurringRevenue(receivables, today)
	return s
}

// percentOf returns part / total * 100 rounded to two places, zero when
// total is zero
func percentOf(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(2)
}
