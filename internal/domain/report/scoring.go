package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
)

// Class is a client score band, A being the best
type Class string

const (
	ClassA Class = "A"
	ClassB Class = "B"
	ClassC Class = "C"
	ClassD Class = "D"
)

// DelayClass classifies a maximum payment delay in days
func DelayClass(days int) Class {
	switch {
	case days <= 0:
		return ClassA
	case days <= 10:
		return ClassB
	case days <= 30:
		return ClassC
	default:
		return ClassD
	}
}

// Quartiles are the 25th, 50th and 75th percentiles of a revenue set
type Quartiles struct {
	Q1 decimal.Decimal `json:"q1"`
	Q2 decimal.Decimal `json:"q2"`
	Q3 decimal.Decimal `json:"q3"`
}

// ComputeQuartiles uses linear interpolation between closest ranks: the
// p-quantile of n sorted values sits at position (n-1)*p.
func ComputeQuartiles(values []decimal.Decimal) Quartiles {
	if len(values) == 0 {
		return Quartiles{Q1: decimal.Zero, Q2: decimal.Zero, Q3: decimal.Zero}
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	return Quartiles{
		Q1: quantile(sorted, decimal.RequireFromString("0.25")),
		Q2: quantile(sorted, decimal.RequireFromString("0.5")),
		Q3: quantile(sorted, decimal.RequireFromString("0.75")),
	}
}

func quantile(sorted []decimal.Decimal, p decimal.Decimal) decimal.Decimal {
	pos := decimal.NewFromInt(int64(len(sorted) - 1)).Mul(p)
	lo := pos.Floor()
	i := int(lo.IntPart())
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos.Sub(lo)
	return sorted[i].Add(sorted[i+1].Sub(sorted[i]).Mul(frac))
}

// RevenueClass places a revenue into its quartile band
func RevenueClass(revenue decimal.Decimal, q Quartiles) Class {
	switch {
	case revenue.GreaterThanOrEqual(q.Q3):
		return ClassA
	case revenue.GreaterThanOrEqual(q.Q2):
		return ClassB
	case revenue.GreaterThanOrEqual(q.Q1):
		return ClassC
	default:
		return ClassD
	}
}

// PaymentDelay is the delay in days a receivable contributes to its client's
// score: the late days of a received item, or the days elapsed since the due
// date of a pending overdue one. ok is false for items that do not count.
func PaymentDelay(r *finance.Receivable, today string) (days int, ok bool) {
	switch r.Status {
	case finance.ReceivableStatusReceived:
		if r.DataVencimento == "" || r.DataRecebimento == "" {
			return 0, true
		}
		d, err := valueobject.DiffDays(r.DataRecebimento, r.DataVencimento)
		if err != nil || d < 0 {
			return 0, true
		}
		return d, true
	case finance.ReceivableStatusPending:
		if !r.IsOverdue(today) {
			return 0, true
		}
		d, err := valueobject.DiffDays(today, r.DataVencimento)
		if err != nil {
			return 0, true
		}
		return d, true
	default:
		return 0, false
	}
}

// ScoreInput selects the receivables scored and how clients are grouped
type ScoreInput struct {
	Receivables []finance.Receivable
	Clients     []finance.Client
	Today       string
	// From and To bound the due date, inclusive; empty bounds are open
	From string
	To   string
	// ByCohort scores each grupo_cliente as one unit; clients without a
	// cohort are scored alone
	ByCohort bool
}

// ClientScore is the scoring result of one client or cohort
type ClientScore struct {
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Cohort       bool            `json:"cohort"`
	ClientIDs    []string        `json:"client_ids"`
	Receivables  int             `json:"receivables"`
	Revenue      decimal.Decimal `json:"revenue"`
	MaxDelay     int             `json:"max_delay"`
	PaymentClass Class           `json:"payment_class"`
	RevenueClass Class           `json:"revenue_class"`
	// Participation is the percentage of total revenue, two decimal places
	Participation decimal.Decimal `json:"participation"`
}

// Scoring is the full classification result
type Scoring struct {
	Scores    []ClientScore   `json:"scores"`
	Quartiles Quartiles       `json:"quartiles"`
	Total     decimal.Decimal `json:"total"`
}

// ScoreClients classifies every client (or cohort) that has monthly
// receivables due in the period. Payment class uses the maximum delay across
// all of the unit's receivables; revenue class uses the revenue quartiles of
// all units.
func ScoreClients(in ScoreInput) Scoring {
	clients := make(map[string]*finance.Client, len(in.Clients))
	for i := range in.Clients {
		clients[in.Clients[i].ID] = &in.Clients[i]
	}

	units := make(map[string]*ClientScore)
	order := make([]string, 0)
	members := make(map[string]map[string]bool)

	for i := range in.Receivables {
		r := &in.Receivables[i]
		if r.TipoRecebimento != finance.ReceivableTypeMonthly || r.ClienteID == nil || *r.ClienteID == "" {
			continue
		}
		if !withinPeriod(r.DataVencimento, in.From, in.To) {
			continue
		}
		delay, counts := PaymentDelay(r, in.Today)
		if !counts {
			continue
		}

		clientID := *r.ClienteID
		key, name, cohort := unitOf(clientID, clients[clientID], in.ByCohort)
		u, ok := units[key]
		if !ok {
			u = &ClientScore{Key: key, Name: name, Cohort: cohort, Revenue: decimal.Zero}
			units[key] = u
			members[key] = make(map[string]bool)
			order = append(order, key)
		}
		if !members[key][clientID] {
			members[key][clientID] = true
			u.ClientIDs = append(u.ClientIDs, clientID)
		}
		u.Receivables++
		u.Revenue = u.Revenue.Add(r.RealizedAmount())
		if delay > u.MaxDelay {
			u.MaxDelay = delay
		}
	}

	revenues := make([]decimal.Decimal, 0, len(order))
	total := decimal.Zero
	for _, key := range order {
		revenues = append(revenues, units[key].Revenue)
		total = total.Add(units[key].Revenue)
	}
	q := ComputeQuartiles(revenues)

	scores := make([]ClientScore, 0, len(order))
	for _, key := range order {
		u := units[key]
		u.PaymentClass = DelayClass(u.MaxDelay)
		u.RevenueClass = RevenueClass(u.Revenue, q)
		u.Participation = percentOf(u.Revenue, total)
		sort.Strings(u.ClientIDs)
		scores = append(scores, *u)
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if c := scores[i].Revenue.Cmp(scores[j].Revenue); c != 0 {
			return c > 0
		}
		return scores[i].Name < scores[j].Name
	})

	return Scoring{Scores: scores, Quartiles: q, Total: total}
}

func unitOf(clientID string, c *finance.Client, byCohort bool) (key, name string, cohort bool) {
	name = clientID
	if c != nil && c.Nome != "" {
		name = c.Nome
	}
	if byCohort && c != nil {
		if g := c.Cohort(); g != "" {
			return "grupo:" + g, g, true
		}
	}
	return clientID, name, false
}

func withinPeriod(date, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	if date == "" {
		return false
	}
	day := date
	if len(day) > 10 {
		day = day[:10]
	}
	if from != "" && day < from {
		return false
	}
	if to != "" && day > to {
		return false
	}
	return true
}
