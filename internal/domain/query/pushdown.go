package query

import (
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
)

// Pushdown renders the structured predicates (status, type, date range and
// overdue) as store options. Free-text search is never pushed down.
//
// ok is false when the predicates contradict each other, for instance a
// non-pending status combined with the overdue flag; the result is then
// known to be empty and no query needs to run.
func (s *Schema[T, F]) Pushdown(f Filter, today string) (opts datastore.SelectOptions, ok bool) {
	if col := s.column(s.StatusField); f.Status != "" && col != "" {
		opts.Where(col, f.Status)
	}
	if col := s.column(s.TypeField); f.Type != "" && col != "" {
		opts.Where(col, f.Type)
	}
	if col := s.column(s.DateField); col != "" {
		if f.DateRange.From != "" {
			opts.From(col, dayOf(f.DateRange.From))
		}
		if f.DateRange.To != "" {
			opts.Until(col, dayOf(f.DateRange.To))
		}
	}

	if f.OnlyOverdue && s.Overdue != nil {
		statusCol := s.column(s.StatusField)
		dueCol := s.column(s.DueField)
		if statusCol == "" || dueCol == "" {
			return opts, true
		}
		if f.Status != "" && f.Status != s.OverdueStatus {
			return opts, false
		}
		yesterday, err := valueobject.AddDays(today, -1)
		if err != nil {
			return opts, false
		}
		opts.Where(statusCol, s.OverdueStatus)
		if prev, exists := opts.Lte[dueCol]; !exists || yesterday < prev.(string) {
			opts.Until(dueCol, yesterday)
		}
	}
	return opts, true
}

// OrderFor renders a resolved sort as a store order, nil for derived fields
func (s *Schema[T, F]) OrderFor(srt Sort[F]) *datastore.Order {
	srt = s.ResolveSort(srt)
	col := s.column(srt.Field)
	if col == "" {
		return nil
	}
	return &datastore.Order{Column: col, Ascending: !srt.Descending}
}

func (s *Schema[T, F]) column(name F) string {
	if name == "" {
		return ""
	}
	field, ok := s.Fields[name]
	if !ok {
		return ""
	}
	return field.Column
}
