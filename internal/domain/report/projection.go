package report

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
)

// Table is a flat, ordered row list ready for CSV or spreadsheet output.
// Header order is part of the exported schema and must not change.
type Table struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Exported column layouts
var (
	ReceivablesHeader = []string{
		"Descrição", "Cliente", "Categoria", "Forma de Pagamento", "Valor Esperado", "Valor Recebido",
		"Data de Emissão", "Data de Vencimento", "Data de Recebimento", "Status", "Tipo", "Parcela", "Observações",
	}
	PayablesHeader = []string{
		"Descrição", "Fornecedor", "Categoria", "Forma de Pagamento", "Valor Esperado", "Valor Pago",
		"Data de Emissão", "Data de Vencimento", "Data de Pagamento", "Status", "Tipo", "Parcela", "Observações",
	}
	MovementsHeader = []string{
		"Data", "Tipo", "Descrição", "Categoria", "Forma de Pagamento", "Valor", "Beneficiário", "Responsável", "Observações",
	}
	CashFlowHeader       = []string{"Mês", "Entradas", "Saídas", "Saldo"}
	CategoryHeader       = []string{"Categoria", "Total", "Participação (%)", "Lançamentos"}
	ClientScoreHeader    = []string{"Cliente", "Receita", "Participação (%)", "Atraso Máximo (dias)", "Classe de Pagamento", "Classe de Receita"}
	RecurrenceHeader     = []string{"Mês", "MRR", "Cancelado", "Churn (%)", "Recebimentos"}
	topCounterpartHeader = []string{"Total", "Participação (%)", "Lançamentos"}
)

// ReceivablesTable projects receivables in input order
func ReceivablesTable(items []finance.Receivable) Table {
	t := Table{Name: "recebimentos", Header: ReceivablesHeader, Rows: make([][]string, 0, len(items))}
	for i := range items {
		r := &items[i]
		t.Rows = append(t.Rows, []string{
			r.Descricao,
			r.ClienteNome,
			r.CategoriaNome,
			r.FormaPagamentoNome,
			valueobject.FormatAmount(r.ValorEsperado),
			optionalAmount(r.ValorRecebido),
			valueobject.FormatDateBR(r.DataEmissao),
			valueobject.FormatDateBR(r.DataVencimento),
			valueobject.FormatDateBR(r.DataRecebimento),
			string(r.Status),
			string(r.TipoRecebimento),
			r.Installment(),
			r.Observacoes,
		})
	}
	return t
}

// PayablesTable projects payables in input order
func PayablesTable(items []finance.Payable) Table {
	t := Table{Name: "pagamentos", Header: PayablesHeader, Rows: make([][]string, 0, len(items))}
	for i := range items {
		p := &items[i]
		t.Rows = append(t.Rows, []string{
			p.Descricao,
			p.FornecedorNome,
			p.CategoriaNome,
			p.FormaPagamentoNome,
			valueobject.FormatAmount(p.ValorEsperado),
			optionalAmount(p.ValorPago),
			valueobject.FormatDateBR(p.DataEmissao),
			valueobject.FormatDateBR(p.DataVencimento),
			valueobject.FormatDateBR(p.DataPagamento),
			string(p.Status),
			string(p.TipoPagamento),
			p.Installment(),
			p.Observacoes,
		})
	}
	return t
}

// MovementsTable projects daily movements in input order
func MovementsTable(items []finance.DailyMovement) Table {
	t := Table{Name: "movimentacoes", Header: MovementsHeader, Rows: make([][]string, 0, len(items))}
	for i := range items {
		m := &items[i]
		t.Rows = append(t.Rows, []string{
			valueobject.FormatDateBR(m.DataTransacao),
			string(m.Tipo),
			m.Descricao,
			m.CategoriaNome,
			m.FormaPagamentoNome,
			valueobject.FormatAmount(m.Valor),
			m.Beneficiario,
			m.Responsavel,
			m.Observacoes,
		})
	}
	return t
}

// CashFlowTable projects a monthly series, one row per bucket
func CashFlowTable(name string, cf CashFlow) Table {
	t := Table{Name: name, Header: CashFlowHeader, Rows: make([][]string, 0, len(cf.Points))}
	for _, p := range cf.Points {
		t.Rows = append(t.Rows, []string{
			p.Month.Label,
			valueobject.FormatAmount(p.Inflow),
			valueobject.FormatAmount(p.Outflow),
			valueobject.FormatAmount(p.Net),
		})
	}
	return t
}

// CategoryTable projects grouped category totals
func CategoryTable(ranked []Ranked) Table {
	t := Table{Name: "categorias", Header: CategoryHeader, Rows: make([][]string, 0, len(ranked))}
	for _, r := range ranked {
		t.Rows = append(t.Rows, []string{
			r.Name,
			valueobject.FormatAmount(r.Total),
			valueobject.FormatAmount(r.Share),
			strconv.Itoa(r.Count),
		})
	}
	return t
}

// TopTable projects a counterpart ranking under the given first column title
func TopTable(name, counterpart string, ranked []Ranked) Table {
	header := append([]string{counterpart}, topCounterpartHeader...)
	t := Table{Name: name, Header: header, Rows: make([][]string, 0, len(ranked))}
	for _, r := range ranked {
		t.Rows = append(t.Rows, []string{
			r.Name,
			valueobject.FormatAmount(r.Total),
			valueobject.FormatAmount(r.Share),
			strconv.Itoa(r.Count),
		})
	}
	return t
}

// ClientScoreTable projects a client scoring
func ClientScoreTable(s Scoring) Table {
	t := Table{Name: "classificacao_clientes", Header: ClientScoreHeader, Rows: make([][]string, 0, len(s.Scores))}
	for _, c := range s.Scores {
		t.Rows = append(t.Rows, []string{
			c.Name,
			valueobject.FormatAmount(c.Revenue),
			valueobject.FormatAmount(c.Participation),
			strconv.Itoa(c.MaxDelay),
			string(c.PaymentClass),
			string(c.RevenueClass),
		})
	}
	return t
}

// RecurrenceTable projects MRR and churn as a single row
func RecurrenceTable(r Recurrence) Table {
	return Table{
		Name:   "recorrencia",
		Header: RecurrenceHeader,
		Rows: [][]string{{
			monthLabel(r.Month),
			valueobject.FormatAmount(r.MRR),
			valueobject.FormatAmount(r.Cancelled),
			valueobject.FormatAmount(r.ChurnRate.Mul(hundred)),
			strconv.Itoa(r.Count),
		}},
	}
}

// Dataset is one named series of a chart
type Dataset struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// ChartSeries is the label/value projection consumed by chart renderers
type ChartSeries struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// CashFlowChart projects a monthly series into inflow and outflow datasets
func CashFlowChart(cf CashFlow) ChartSeries {
	labels := make([]string, len(cf.Points))
	in := make([]float64, len(cf.Points))
	out := make([]float64, len(cf.Points))
	for i, p := range cf.Points {
		labels[i] = p.Month.Label
		in[i] = p.Inflow.InexactFloat64()
		out[i] = p.Outflow.InexactFloat64()
	}
	return ChartSeries{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Entradas", Values: in},
			{Label: "Saídas", Values: out},
		},
	}
}

// RankedChart projects grouped totals into a single dataset
func RankedChart(label string, ranked []Ranked) ChartSeries {
	labels := make([]string, len(ranked))
	values := make([]float64, len(ranked))
	for i, r := range ranked {
		labels[i] = r.Name
		values[i] = r.Total.InexactFloat64()
	}
	return ChartSeries{Labels: labels, Datasets: []Dataset{{Label: label, Values: values}}}
}

func optionalAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return valueobject.FormatAmount(*d)
}

// monthLabel renders "YYYY-MM" as "MM/YYYY"
func monthLabel(key string) string {
	if len(key) != len(monthLayout) {
		return key
	}
	return key[5:] + "/" + key[:4]
}
