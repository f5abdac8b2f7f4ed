package query

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
)

type entry struct {
	ID     string
	Name   string
	Owner  string
	Amount *decimal.Decimal
	Due    string
	Status string
	Kind   string
}

type entryField string

const (
	entryName   entryField = "name"
	entryOwner  entryField = "owner"
	entryAmount entryField = "amount"
	entryDue    entryField = "due"
	entryStatus entryField = "status"
	entryKind   entryField = "kind"
)

func entrySchema() *Schema[entry, entryField] {
	return &Schema[entry, entryField]{
		Fields: map[entryField]Field[entry]{
			entryName:   {Kind: KindString, Column: "name", Get: func(e *entry) Value { return Str(e.Name) }},
			entryOwner:  {Kind: KindString, Get: func(e *entry) Value { return Str(e.Owner) }},
			entryAmount: {Kind: KindNumber, Column: "amount", Get: func(e *entry) Value { return NumPtr(e.Amount) }},
			entryDue:    {Kind: KindDate, Column: "due", Get: func(e *entry) Value { return Date(e.Due) }},
			entryStatus: {Kind: KindString, Column: "status", Get: func(e *entry) Value { return Str(e.Status) }},
			entryKind:   {Kind: KindString, Column: "kind", Get: func(e *entry) Value { return Str(e.Kind) }},
		},
		DefaultSort: Sort[entryField]{Field: entryDue, Descending: true},
		StatusField: entryStatus,
		TypeField:   entryKind,
		DateField:   entryDue,
		Search:      []entryField{entryName, entryOwner},
		Overdue: func(e *entry, today string) bool {
			if e.Status != "pendente" || e.Due == "" {
				return false
			}
			diff, err := valueobject.DiffDays(e.Due, today)
			return err == nil && diff < 0
		},
		OverdueStatus: "pendente",
		DueField:      entryDue,
	}
}

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func ids(items []entry) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.ID
	}
	return out
}

func TestApply_PagesConcatenateToSortedCollection(t *testing.T) {
	s := entrySchema()
	rng := rand.New(rand.NewSource(42))

	items := make([]entry, 53)
	for i := range items {
		items[i] = entry{ID: fmt.Sprintf("e%02d", i), Status: "pendente"}
		if i%9 != 0 {
			items[i].Amount = amount(rng.Int63n(10))
		}
	}

	for _, desc := range []bool{false, true} {
		srt := Sort[entryField]{Field: entryAmount, Descending: desc}
		expected := append([]entry(nil), items...)
		s.SortItems(expected, srt)

		first := s.Apply(items, Filter{}, srt, 1, 7, "2024-03-10")
		require.Equal(t, 8, first.TotalPages)

		var all []entry
		for page := 1; page <= first.TotalPages; page++ {
			p := s.Apply(items, Filter{}, srt, page, 7, "2024-03-10")
			assert.Equal(t, page, p.Page)
			assert.Equal(t, int64(53), p.Total)
			all = append(all, p.Items...)
		}

		assert.Equal(t, ids(expected), ids(all))
		seen := make(map[string]int)
		for _, e := range all {
			seen[e.ID]++
		}
		assert.Len(t, seen, len(items))
		for id, n := range seen {
			assert.Equal(t, 1, n, id)
		}
	}
}

func TestSortItems_StableTiesBothDirections(t *testing.T) {
	s := entrySchema()
	items := []entry{
		{ID: "a", Amount: amount(5)},
		{ID: "b", Amount: amount(1)},
		{ID: "c", Amount: amount(5)},
		{ID: "d", Amount: amount(1)},
		{ID: "e", Amount: amount(5)},
	}

	asc := append([]entry(nil), items...)
	s.SortItems(asc, Sort[entryField]{Field: entryAmount})
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids(asc))

	desc := append([]entry(nil), items...)
	s.SortItems(desc, Sort[entryField]{Field: entryAmount, Descending: true})
	assert.Equal(t, []string{"a", "c", "e", "b", "d"}, ids(desc))
}

func TestSortItems_NullPlacement(t *testing.T) {
	s := entrySchema()
	items := []entry{
		{ID: "null1"},
		{ID: "two", Amount: amount(2)},
		{ID: "null2"},
		{ID: "one", Amount: amount(1)},
	}

	asc := append([]entry(nil), items...)
	s.SortItems(asc, Sort[entryField]{Field: entryAmount})
	assert.Equal(t, []string{"one", "two", "null1", "null2"}, ids(asc))

	desc := append([]entry(nil), items...)
	s.SortItems(desc, Sort[entryField]{Field: entryAmount, Descending: true})
	assert.Equal(t, []string{"null1", "null2", "two", "one"}, ids(desc))
}

func TestSortItems_LocaleAwareStrings(t *testing.T) {
	s := entrySchema()
	items := []entry{
		{ID: "banana", Name: "banana"},
		{ID: "arvore", Name: "árvore"},
		{ID: "Abacaxi", Name: "Abacaxi"},
	}
	s.SortItems(items, Sort[entryField]{Field: entryName})
	assert.Equal(t, []string{"Abacaxi", "arvore", "banana"}, ids(items))
}

func TestSortItems_UnknownFieldFallsBackToDefault(t *testing.T) {
	s := entrySchema()
	items := []entry{
		{ID: "old", Due: "2024-01-01"},
		{ID: "new", Due: "2024-02-01"},
	}
	s.SortItems(items, Sort[entryField]{Field: "nope"})
	assert.Equal(t, []string{"new", "old"}, ids(items))
}

func TestFilterItems(t *testing.T) {
	s := entrySchema()
	today := "2024-03-10"
	items := []entry{
		{ID: "1", Name: "Aluguel", Owner: "Cliente Alfa", Status: "pendente", Kind: "mensal", Due: "2024-03-09"},
		{ID: "2", Name: "Consultoria", Owner: "JOÃO Beta", Status: "recebido", Kind: "projeto", Due: "2024-03-01"},
		{ID: "3", Name: "Licença", Owner: "Cliente Gama", Status: "pendente", Kind: "mensal", Due: "2024-03-10"},
		{ID: "4", Name: "Suporte", Owner: "Delta", Status: "pendente", Kind: "avulso", Due: "2024-03-11"},
		{ID: "5", Name: "Sem data", Owner: "Delta", Status: "pendente", Kind: "avulso"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no predicates", Filter{}, []string{"1", "2", "3", "4", "5"}},
		{"status", Filter{Status: "pendente"}, []string{"1", "3", "4", "5"}},
		{"type", Filter{Type: "mensal"}, []string{"1", "3"}},
		{"inclusive date range", Filter{DateRange: DateRange{From: "2024-03-09", To: "2024-03-10"}}, []string{"1", "3"}},
		{"open lower bound", Filter{DateRange: DateRange{To: "2024-03-01"}}, []string{"2"}},
		{"search is case-insensitive on derived names", Filter{Search: "cliente"}, []string{"1", "3"}},
		{"search folds non-ascii", Filter{Search: "joão"}, []string{"2"}},
		{"search trims", Filter{Search: "  suporte "}, []string{"4"}},
		{"overdue", Filter{OnlyOverdue: true}, []string{"1"}},
		{"predicates are ANDed", Filter{Status: "pendente", Search: "delta"}, []string{"4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.FilterItems(items, tt.filter, today)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestOverduePredicate(t *testing.T) {
	s := entrySchema()
	today := "2024-03-10"
	filter := Filter{OnlyOverdue: true}

	assert.True(t, s.Match(&entry{Status: "pendente", Due: "2024-03-09"}, filter, today))
	assert.False(t, s.Match(&entry{Status: "pendente", Due: "2024-03-10"}, filter, today))
	assert.False(t, s.Match(&entry{Status: "pendente", Due: "2024-03-11"}, filter, today))
	assert.False(t, s.Match(&entry{Status: "recebido", Due: "2024-01-01"}, filter, today))
	assert.False(t, s.Match(&entry{Status: "cancelado", Due: "2024-01-01"}, filter, today))
}

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("clamps past the end", func(t *testing.T) {
		p := Paginate(items, 10, 20)
		assert.Equal(t, 2, p.Page)
		assert.Equal(t, 2, p.TotalPages)
		assert.Equal(t, []int{20, 21, 22, 23, 24}, p.Items)
	})

	t.Run("clamps below one", func(t *testing.T) {
		p := Paginate(items, 0, 20)
		assert.Equal(t, 1, p.Page)
		assert.Len(t, p.Items, 20)
	})

	t.Run("empty collection has one page", func(t *testing.T) {
		p := Paginate([]int{}, 3, 20)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 1, p.TotalPages)
		assert.Empty(t, p.Items)
	})

	t.Run("default page size", func(t *testing.T) {
		p := Paginate(items, 1, 0)
		assert.Equal(t, 20, p.PageSize)
	})
}

func TestModeFor(t *testing.T) {
	s := entrySchema()

	assert.Equal(t, ModeServer, s.ModeFor(Filter{Status: "pendente", OnlyOverdue: true}, Sort[entryField]{Field: entryAmount}))
	assert.Equal(t, ModeServer, s.ModeFor(Filter{}, Sort[entryField]{Field: "unknown"}))
	assert.Equal(t, ModeClient, s.ModeFor(Filter{Search: "x"}, Sort[entryField]{Field: entryAmount}))
	assert.Equal(t, ModeClient, s.ModeFor(Filter{}, Sort[entryField]{Field: entryOwner}))
	assert.Equal(t, ModeServer, s.ModeFor(Filter{Search: "   "}, Sort[entryField]{Field: entryDue}))
}

func TestPushdown(t *testing.T) {
	s := entrySchema()
	today := "2024-03-10"

	t.Run("structured predicates", func(t *testing.T) {
		opts, ok := s.Pushdown(Filter{
			Status:    "recebido",
			Type:      "mensal",
			DateRange: DateRange{From: "2024-01-01", To: "2024-01-31"},
			Search:    "ignored",
		}, today)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"status": "recebido", "kind": "mensal"}, opts.Eq)
		assert.Equal(t, map[string]any{"due": "2024-01-01"}, opts.Gte)
		assert.Equal(t, map[string]any{"due": "2024-01-31"}, opts.Lte)
	})

	t.Run("overdue becomes pending and due before today", func(t *testing.T) {
		opts, ok := s.Pushdown(Filter{OnlyOverdue: true}, today)
		require.True(t, ok)
		assert.Equal(t, "pendente", opts.Eq["status"])
		assert.Equal(t, "2024-03-09", opts.Lte["due"])
	})

	t.Run("overdue keeps a tighter upper bound", func(t *testing.T) {
		opts, ok := s.Pushdown(Filter{OnlyOverdue: true, DateRange: DateRange{To: "2024-02-15"}}, today)
		require.True(t, ok)
		assert.Equal(t, "2024-02-15", opts.Lte["due"])
	})

	t.Run("contradictory status and overdue", func(t *testing.T) {
		_, ok := s.Pushdown(Filter{Status: "recebido", OnlyOverdue: true}, today)
		assert.False(t, ok)
	})
}

func TestOrderFor(t *testing.T) {
	s := entrySchema()

	order := s.OrderFor(Sort[entryField]{Field: entryAmount})
	require.NotNil(t, order)
	assert.Equal(t, "amount", order.Column)
	assert.True(t, order.Ascending)

	assert.Nil(t, s.OrderFor(Sort[entryField]{Field: entryOwner}))

	fallback := s.OrderFor(Sort[entryField]{Field: "missing"})
	require.NotNil(t, fallback)
	assert.Equal(t, "due", fallback.Column)
	assert.False(t, fallback.Ascending)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, Sort[entryField]{Field: entryName}, ParseSort[entryField](" name ", "ASC"))
	assert.Equal(t, Sort[entryField]{Field: entryName, Descending: true}, ParseSort[entryField]("name", ""))
}
