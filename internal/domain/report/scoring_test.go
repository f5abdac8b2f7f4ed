package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/financeiro/internal/domain/finance"
)

func monthly(client string, expected string, status finance.ReceivableStatus, due, received string) finance.Receivable {
	r := finance.Receivable{
		ClienteID:       sp(client),
		ValorEsperado:   d(expected),
		Status:          status,
		TipoRecebimento: finance.ReceivableTypeMonthly,
		DataVencimento:  due,
		DataRecebimento: received,
	}
	if status == finance.ReceivableStatusReceived {
		r.ValorRecebido = dp(expected)
	}
	return r
}

func scoreByKey(s Scoring) map[string]ClientScore {
	out := make(map[string]ClientScore, len(s.Scores))
	for _, c := range s.Scores {
		out[c.Key] = c
	}
	return out
}

func TestDelayClass(t *testing.T) {
	tests := []struct {
		days int
		want Class
	}{
		{0, ClassA}, {1, ClassB}, {10, ClassB}, {11, ClassC}, {30, ClassC}, {31, ClassD}, {45, ClassD},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DelayClass(tt.days), "days=%d", tt.days)
	}
}

func TestComputeQuartiles(t *testing.T) {
	q := ComputeQuartiles([]decimal.Decimal{d("40"), d("10"), d("30"), d("20")})
	assertDecimal(t, "17.5", q.Q1)
	assertDecimal(t, "25", q.Q2)
	assertDecimal(t, "32.5", q.Q3)

	single := ComputeQuartiles([]decimal.Decimal{d("7")})
	assertDecimal(t, "7", single.Q1)
	assertDecimal(t, "7", single.Q3)

	empty := ComputeQuartiles(nil)
	assertDecimal(t, "0", empty.Q2)

	assert.Equal(t, ClassA, RevenueClass(d("40"), q))
	assert.Equal(t, ClassB, RevenueClass(d("30"), q))
	assert.Equal(t, ClassC, RevenueClass(d("20"), q))
	assert.Equal(t, ClassD, RevenueClass(d("10"), q))
}

func TestPaymentDelay_ReceivedScenario(t *testing.T) {
	r := finance.Receivable{
		ValorEsperado:   d("500"),
		Status:          finance.ReceivableStatusReceived,
		ValorRecebido:   dp("480"),
		DataVencimento:  "2024-01-10",
		DataRecebimento: "2024-01-15",
	}
	days, ok := PaymentDelay(&r, "2024-03-10")
	require.True(t, ok)
	assert.Equal(t, 5, days)

	early := monthly("c", "1", finance.ReceivableStatusReceived, "2024-01-10", "2024-01-02")
	days, ok = PaymentDelay(&early, "2024-03-10")
	require.True(t, ok)
	assert.Equal(t, 0, days)

	pending := monthly("c", "1", finance.ReceivableStatusPending, "2024-03-01", "")
	days, _ = PaymentDelay(&pending, "2024-03-10")
	assert.Equal(t, 9, days)

	notDue := monthly("c", "1", finance.ReceivableStatusPending, "2024-03-10", "")
	days, _ = PaymentDelay(&notDue, "2024-03-10")
	assert.Equal(t, 0, days)

	cancelled := monthly("c", "1", finance.ReceivableStatusCancelled, "2023-01-01", "")
	_, ok = PaymentDelay(&cancelled, "2024-03-10")
	assert.False(t, ok)
}

func TestScoreClients(t *testing.T) {
	today := "2024-03-10"
	clients := []finance.Client{
		{ID: "c1", Nome: "Alfa"},
		{ID: "c2", Nome: "Beta"},
		{ID: "c3", Nome: "Gama", GrupoCliente: " Rede Sul "},
		{ID: "c4", Nome: "Delta", GrupoCliente: "Rede Sul"},
	}

	t.Run("zero delay classifies as A", func(t *testing.T) {
		s := ScoreClients(ScoreInput{
			Receivables: []finance.Receivable{
				monthly("c1", "100", finance.ReceivableStatusReceived, "2024-01-10", "2024-01-10"),
				monthly("c1", "100", finance.ReceivableStatusReceived, "2024-02-10", "2024-02-01"),
			},
			Clients: clients,
			Today:   today,
		})
		require.Len(t, s.Scores, 1)
		assert.Equal(t, ClassA, s.Scores[0].PaymentClass)
		assert.Equal(t, "Alfa", s.Scores[0].Name)
		assertDecimal(t, "100", s.Scores[0].Participation)
	})

	t.Run("max delay wins over on-time items", func(t *testing.T) {
		s := ScoreClients(ScoreInput{
			Receivables: []finance.Receivable{
				monthly("c2", "100", finance.ReceivableStatusReceived, "2024-01-10", "2024-01-10"),
				monthly("c2", "100", finance.ReceivableStatusReceived, "2024-01-01", "2024-02-15"),
				monthly("c2", "100", finance.ReceivableStatusReceived, "2024-02-10", "2024-02-10"),
			},
			Clients: clients,
			Today:   today,
		})
		require.Len(t, s.Scores, 1)
		assert.Equal(t, 45, s.Scores[0].MaxDelay)
		assert.Equal(t, ClassD, s.Scores[0].PaymentClass)
	})

	t.Run("never received overdue item", func(t *testing.T) {
		s := ScoreClients(ScoreInput{
			Receivables: []finance.Receivable{monthly("c1", "100", finance.ReceivableStatusPending, "2024-01-01", "")},
			Clients:     clients,
			Today:       today,
		})
		require.Len(t, s.Scores, 1)
		assert.Equal(t, 69, s.Scores[0].MaxDelay)
		assert.Equal(t, ClassD, s.Scores[0].PaymentClass)
	})

	t.Run("received scenario contributes delay and revenue", func(t *testing.T) {
		r := monthly("c1", "500", finance.ReceivableStatusReceived, "2024-01-10", "2024-01-15")
		r.ValorRecebido = dp("480")
		s := ScoreClients(ScoreInput{Receivables: []finance.Receivable{r}, Clients: clients, Today: today})
		require.Len(t, s.Scores, 1)
		assert.Equal(t, 5, s.Scores[0].MaxDelay)
		assert.Equal(t, ClassB, s.Scores[0].PaymentClass)
		assertDecimal(t, "480", s.Scores[0].Revenue)
	})

	t.Run("revenue quartiles and participation", func(t *testing.T) {
		s := ScoreClients(ScoreInput{
			Receivables: []finance.Receivable{
				monthly("c1", "40", finance.ReceivableStatusReceived, "2024-02-01", "2024-02-01"),
				monthly("c2", "30", finance.ReceivableStatusReceived, "2024-02-01", "2024-02-01"),
				monthly("c3", "20", finance.ReceivableStatusPending, "2024-03-20", ""),
				monthly("c4", "10", finance.ReceivableStatusPending, "2024-03-20", ""),
				monthly("c4", "999", finance.ReceivableStatusCancelled, "2024-03-20", ""),
				{ClienteID: sp("c1"), ValorEsperado: d("999"), Status: finance.ReceivableStatusReceived, TipoRecebimento: finance.ReceivableTypeProject, DataVencimento: "2024-02-01"},
				{ValorEsperado: d("999"), Status: finance.ReceivableStatusReceived, TipoRecebimento: finance.ReceivableTypeMonthly, DataVencimento: "2024-02-01"},
			},
			Clients: clients,
			Today:   today,
		})
		byKey := scoreByKey(s)
		require.Len(t, byKey, 4)
		assertDecimal(t, "100", s.Total)

		assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, []string{s.Scores[0].Key, s.Scores[1].Key, s.Scores[2].Key, s.Scores[3].Key})
		assert.Equal(t, ClassA, byKey["c1"].RevenueClass)
		assert.Equal(t, ClassB, byKey["c2"].RevenueClass)
		assert.Equal(t, ClassC, byKey["c3"].RevenueClass)
		assert.Equal(t, ClassD, byKey["c4"].RevenueClass)
		assertDecimal(t, "40", byKey["c1"].Participation)
		assertDecimal(t, "10", byKey["c4"].Participation)
		assert.Equal(t, 1, byKey["c4"].Receivables)
	})

	t.Run("cohorts merge revenue and delay", func(t *testing.T) {
		s := ScoreClients(ScoreInput{
			Receivables: []finance.Receivable{
				monthly("c3", "20", finance.ReceivableStatusReceived, "2024-02-01", "2024-02-01"),
				monthly("c4", "30", finance.ReceivableStatusReceived, "2024-02-01", "2024-02-21"),
				monthly("c1", "50", finance.ReceivableStatusReceived, "2024-02-01", "2024-02-01"),
			},
			Clients:  clients,
			Today:    today,
			ByCohort: true,
		})
		byKey := scoreByKey(s)
		require.Len(t, byKey, 2)

		cohort := byKey["grupo:Rede Sul"]
		assert.True(t, cohort.Cohort)
		assert.Equal(t, "Rede Sul", cohort.Name)
		assert.Equal(t, []string{"c3", "c4"}, cohort.ClientIDs)
		assertDecimal(t, "50", cohort.Revenue)
		assert.Equal(t, 20, cohort.MaxDelay)
		assert.Equal(t, ClassC, cohort.PaymentClass)

		assert.False(t, byKey["c1"].Cohort)
		assertDecimal(t, "50", byKey["c1"].Participation)
	})

	t.Run("period bounds the due date", func(t *testing.T) {
		s := ScoreClients(ScoreInput{
			Receivables: []finance.Receivable{
				monthly("c1", "10", finance.ReceivableStatusReceived, "2024-01-31", "2024-01-31"),
				monthly("c2", "10", finance.ReceivableStatusReceived, "2024-02-01", "2024-02-01"),
			},
			Clients: clients,
			Today:   today,
			From:    "2024-02-01",
			To:      "2024-02-29",
		})
		require.Len(t, s.Scores, 1)
		assert.Equal(t, "c2", s.Scores[0].Key)
	})
}
