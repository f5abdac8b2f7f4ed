package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/financeiro/internal/domain/finance"
)

func TestReceivablesTable(t *testing.T) {
	one, two := 1, 2
	table := ReceivablesTable([]finance.Receivable{{
		Descricao:          "Mensalidade",
		ClienteNome:        "Alfa",
		CategoriaNome:      "Serviços",
		FormaPagamentoNome: "Pix",
		ValorEsperado:      d("1234.5"),
		ValorRecebido:      dp("1200"),
		DataVencimento:     "2024-01-10",
		DataRecebimento:    "2024-01-15",
		Status:             finance.ReceivableStatusReceived,
		TipoRecebimento:    finance.ReceivableTypeMonthly,
		ParcelaAtual:       &one,
		TotalParcelas:      &two,
	}})

	assert.Equal(t, "recebimentos", table.Name)
	assert.Equal(t, ReceivablesHeader, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{
		"Mensalidade", "Alfa", "Serviços", "Pix", "1234,50", "1200,00",
		"", "10/01/2024", "15/01/2024", "recebido", "mensal", "1/2", "",
	}, table.Rows[0])
	assert.Len(t, table.Rows[0], len(table.Header))
}

func TestPayablesAndMovementsTables(t *testing.T) {
	payables := PayablesTable([]finance.Payable{{Descricao: "Aluguel", ValorEsperado: d("10"), Status: finance.PayableStatusPending}})
	require.Len(t, payables.Rows, 1)
	assert.Len(t, payables.Rows[0], len(PayablesHeader))
	assert.Equal(t, "", payables.Rows[0][5])

	movements := MovementsTable([]finance.DailyMovement{{Tipo: finance.FlowOut, Descricao: "Café", Valor: d("7.9"), DataTransacao: "2024-03-02"}})
	require.Len(t, movements.Rows, 1)
	assert.Equal(t, []string{"02/03/2024", "saida", "Café", "", "", "7,90", "", "", ""}, movements.Rows[0])
}

func TestCashFlowProjection(t *testing.T) {
	months, err := Months("2024-01", "2024-02", 0)
	require.NoError(t, err)
	cf := RealizedCashFlow(months, []finance.Receivable{
		{Status: finance.ReceivableStatusReceived, ValorEsperado: d("500"), ValorRecebido: dp("480"), DataVencimento: "2024-01-10", DataRecebimento: "2024-01-15"},
	}, nil)

	table := CashFlowTable("fluxo_caixa", cf)
	assert.Equal(t, CashFlowHeader, table.Header)
	assert.Equal(t, [][]string{
		{"01/2024", "480,00", "0,00", "480,00"},
		{"02/2024", "0,00", "0,00", "0,00"},
	}, table.Rows)

	chart := CashFlowChart(cf)
	assert.Equal(t, []string{"01/2024", "02/2024"}, chart.Labels)
	require.Len(t, chart.Datasets, 2)
	assert.Equal(t, "Entradas", chart.Datasets[0].Label)
	assert.Equal(t, []float64{480, 0}, chart.Datasets[0].Values)
}

func TestRankedProjections(t *testing.T) {
	ranked := TopN([]Entry{{Key: sp("a"), Amount: d("30")}, {Key: sp("b"), Amount: d("10")}}, 5)
	ApplyNames(ranked, map[string]string{"a": "Alfa", "b": "Beta"}, "—")

	top := TopTable("top_clientes", "Cliente", ranked)
	assert.Equal(t, []string{"Cliente", "Total", "Participação (%)", "Lançamentos"}, top.Header)
	assert.Equal(t, []string{"Alfa", "30,00", "75,00", "1"}, top.Rows[0])

	categories := CategoryTable(ranked)
	assert.Equal(t, CategoryHeader, categories.Header)
	assert.Equal(t, "Beta", categories.Rows[1][0])

	chart := RankedChart("Total", ranked)
	assert.Equal(t, []string{"Alfa", "Beta"}, chart.Labels)
	assert.Equal(t, []float64{30, 10}, chart.Datasets[0].Values)
}

func TestScoreAndRecurrenceTables(t *testing.T) {
	s := ScoreClients(ScoreInput{
		Receivables: []finance.Receivable{monthly("c1", "100", finance.ReceivableStatusReceived, "2024-01-10", "2024-01-15")},
		Clients:     []finance.Client{{ID: "c1", Nome: "Alfa"}},
		Today:       "2024-03-10",
	})
	table := ClientScoreTable(s)
	assert.Equal(t, ClientScoreHeader, table.Header)
	assert.Equal(t, []string{"Alfa", "100,00", "100,00", "5", "B", "A"}, table.Rows[0])

	rec := RecurrenceTable(Recurrence{Month: "2024-03", MRR: d("2000"), Cancelled: d("500"), ChurnRate: d("0.25"), Count: 3})
	assert.Equal(t, [][]string{{"03/2024", "2000,00", "500,00", "25,00", "3"}}, rec.Rows)
}
