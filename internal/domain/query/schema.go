package query

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/backoffice/financeiro/internal/domain/shared"
)

// Schema is the closed field set of an entity plus the roles some fields play
// in the predicate set.
type Schema[T any, F ~string] struct {
	Fields      map[F]Field[T]
	DefaultSort Sort[F]

	// StatusField and TypeField take the Filter's exact-match predicates;
	// leave empty when the entity has no such attribute.
	StatusField F
	TypeField   F
	// DateField is the designated field of the date range predicate
	DateField F
	// Search lists the fields matched by the free-text predicate
	Search []F

	// Overdue is nil for entities without a due date. OverdueStatus and
	// DueField describe the same predicate for the store.
	Overdue       func(item *T, today string) bool
	OverdueStatus string
	DueField      F
}

// Field returns the field definition for name
func (s *Schema[T, F]) Field(name F) (Field[T], bool) {
	f, ok := s.Fields[name]
	return f, ok
}

// ResolveSort replaces an unknown sort field with the default sort
func (s *Schema[T, F]) ResolveSort(srt Sort[F]) Sort[F] {
	if _, ok := s.Fields[srt.Field]; !ok {
		return s.DefaultSort
	}
	return srt
}

// ModeFor selects where the pipeline runs. Free-text search matches resolved
// display names the store cannot see, and derived fields have no column to
// order by, so both force client mode.
func (s *Schema[T, F]) ModeFor(f Filter, srt Sort[F]) Mode {
	if f.HasSearch() {
		return ModeClient
	}
	field, ok := s.Fields[s.ResolveSort(srt).Field]
	if !ok || field.Derived() {
		return ModeClient
	}
	return ModeServer
}

// FilterItems returns the items matching every active predicate, in input order
func (s *Schema[T, F]) FilterItems(items []T, f Filter, today string) []T {
	m := s.newMatcher(f, today)
	out := make([]T, 0, len(items))
	for i := range items {
		if m.match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// Match reports whether a single item satisfies the filter
func (s *Schema[T, F]) Match(item *T, f Filter, today string) bool {
	return s.newMatcher(f, today).match(item)
}

// SortItems sorts items in place with a stable comparator. Nulls go last
// when ascending and first when descending.
func (s *Schema[T, F]) SortItems(items []T, srt Sort[F]) {
	srt = s.ResolveSort(srt)
	field, ok := s.Fields[srt.Field]
	if !ok {
		return
	}
	cmp := newComparator(field.Kind)
	sort.SliceStable(items, func(i, j int) bool {
		a := field.Get(&items[i])
		b := field.Get(&items[j])
		return cmp.less(a, b, srt.Descending)
	})
}

// Paginate slices items into the 1-indexed page, clamping page into range
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = shared.DefaultPageSize
	}
	total := int64(len(items))
	totalPages := shared.TotalPages(total, pageSize)
	page = shared.ClampPage(page, totalPages)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])

	return Page[T]{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Mode:       ModeClient,
	}
}

// Apply filters, sorts and paginates items entirely in memory. The input
// slice is not modified.
func (s *Schema[T, F]) Apply(items []T, f Filter, srt Sort[F], page, pageSize int, today string) Page[T] {
	filtered := s.FilterItems(items, f, today)
	s.SortItems(filtered, srt)
	return Paginate(filtered, page, pageSize)
}

type matcher[T any, F ~string] struct {
	schema *Schema[T, F]
	filter Filter
	needle string
	fold   cases.Caser
	today  string
}

func (s *Schema[T, F]) newMatcher(f Filter, today string) *matcher[T, F] {
	m := &matcher[T, F]{schema: s, filter: f, today: today, fold: cases.Fold()}
	if f.HasSearch() {
		m.needle = m.fold.String(strings.TrimSpace(f.Search))
	}
	return m
}

func (m *matcher[T, F]) match(item *T) bool {
	s := m.schema
	f := m.filter

	if f.Status != "" && s.StatusField != "" && !m.equals(item, s.StatusField, f.Status) {
		return false
	}
	if f.Type != "" && s.TypeField != "" && !m.equals(item, s.TypeField, f.Type) {
		return false
	}
	if !f.DateRange.IsZero() && s.DateField != "" && !m.inRange(item) {
		return false
	}
	if f.OnlyOverdue && s.Overdue != nil && !s.Overdue(item, m.today) {
		return false
	}
	if m.needle != "" && !m.contains(item) {
		return false
	}
	return true
}

func (m *matcher[T, F]) equals(item *T, name F, want string) bool {
	field, ok := m.schema.Fields[name]
	if !ok {
		return true
	}
	v := field.Get(item)
	return !v.Null && v.Str == want
}

func (m *matcher[T, F]) inRange(item *T) bool {
	field, ok := m.schema.Fields[m.schema.DateField]
	if !ok {
		return true
	}
	v := field.Get(item)
	if v.Null {
		return false
	}
	day := dayOf(v.Str)
	r := m.filter.DateRange
	if r.From != "" && day < dayOf(r.From) {
		return false
	}
	if r.To != "" && day > dayOf(r.To) {
		return false
	}
	return true
}

func (m *matcher[T, F]) contains(item *T) bool {
	for _, name := range m.schema.Search {
		field, ok := m.schema.Fields[name]
		if !ok {
			continue
		}
		v := field.Get(item)
		if v.Null || v.Str == "" {
			continue
		}
		if strings.Contains(m.fold.String(v.Str), m.needle) {
			return true
		}
	}
	return false
}

type comparator struct {
	kind     Kind
	collator *collate.Collator
}

func newComparator(kind Kind) *comparator {
	c := &comparator{kind: kind}
	if kind == KindString {
		c.collator = collate.New(language.BrazilianPortuguese)
	}
	return c
}

// less orders non-null values by kind and places nulls after every value
// ascending and before every value descending. Equal values are not less,
// which keeps SliceStable's tie order equal to input order.
func (c *comparator) less(a, b Value, descending bool) bool {
	switch {
	case a.Null && b.Null:
		return false
	case a.Null:
		return descending
	case b.Null:
		return !descending
	}
	r := c.compare(a, b)
	if descending {
		return r > 0
	}
	return r < 0
}

func (c *comparator) compare(a, b Value) int {
	switch c.kind {
	case KindNumber:
		return a.Num.Cmp(b.Num)
	case KindDate:
		return strings.Compare(dayOf(a.Str), dayOf(b.Str))
	default:
		return c.collator.CompareString(a.Str, b.Str)
	}
}

func dayOf(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
