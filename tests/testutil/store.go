package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/shared"
)

// SelectCall records one Select made against a MemoryStore
type SelectCall struct {
	Collection datastore.Collection
	Options    datastore.SelectOptions
}

// MemoryStore is an in-memory datastore.Store with call recording, error
// injection and an optional gate that blocks selects until released.
// Ordering mirrors the SQL store: nulls last ascending, id as tiebreak.
type MemoryStore struct {
	mu      sync.Mutex
	rows    map[datastore.Collection][]datastore.Row
	selects []SelectCall
	errs    map[datastore.Collection]error
	gate    chan struct{}
	entered chan struct{}
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[datastore.Collection][]datastore.Row),
		errs: make(map[datastore.Collection]error),
	}
}

// Seed appends rows to a collection without recording a call
func (s *MemoryStore) Seed(c datastore.Collection, rows ...datastore.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.rows[c] = append(s.rows[c], copyRow(r))
	}
}

// FailWith makes every call on c return err; nil clears it
func (s *MemoryStore) FailWith(c datastore.Collection, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, c)
		return
	}
	s.errs[c] = err
}

// Block makes subsequent selects wait until Release. Entered receives one
// value each time a select reaches the gate.
func (s *MemoryStore) Block() (entered <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
	s.entered = make(chan struct{}, 16)
	return s.entered
}

// Release unblocks every waiting select and disables the gate
func (s *MemoryStore) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

// Selects returns the recorded select calls, optionally for one collection
func (s *MemoryStore) Selects(c ...datastore.Collection) []SelectCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SelectCall, 0, len(s.selects))
	for _, call := range s.selects {
		if len(c) == 0 || call.Collection == c[0] {
			out = append(out, call)
		}
	}
	return out
}

// Rows returns a copy of a collection
func (s *MemoryStore) Rows(c datastore.Collection) []datastore.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]datastore.Row, len(s.rows[c]))
	for i, r := range s.rows[c] {
		out[i] = copyRow(r)
	}
	return out
}

// Select implements datastore.Store
func (s *MemoryStore) Select(ctx context.Context, c datastore.Collection, opts datastore.SelectOptions) (*datastore.Result, error) {
	s.mu.Lock()
	s.selects = append(s.selects, SelectCall{Collection: c, Options: opts})
	gate, entered := s.gate, s.entered
	s.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[c]; err != nil {
		return nil, err
	}

	matched := make([]datastore.Row, 0)
	for _, r := range s.rows[c] {
		if matches(r, opts) {
			matched = append(matched, r)
		}
	}
	if opts.OrderBy != nil {
		col, asc := opts.OrderBy.Column, opts.OrderBy.Ascending
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(matched[i][col], matched[j][col])
			if cmp == 0 {
				return matched[i].ID() < matched[j].ID()
			}
			if asc {
				return cmp < 0
			}
			return cmp > 0
		})
	}

	res := &datastore.Result{}
	if opts.Count {
		n := int64(len(matched))
		res.Count = &n
	}
	if opts.Range != nil {
		from, to := opts.Range.From, opts.Range.To+1
		if from > len(matched) {
			from = len(matched)
		}
		if to > len(matched) {
			to = len(matched)
		}
		matched = matched[from:to]
	}
	res.Rows = make([]datastore.Row, 0, len(matched))
	for _, r := range matched {
		res.Rows = append(res.Rows, project(r, opts.Columns))
	}
	return res, nil
}

// Insert implements datastore.Store
func (s *MemoryStore) Insert(_ context.Context, c datastore.Collection, rows ...datastore.Row) ([]datastore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[c]; err != nil {
		return nil, err
	}
	out := make([]datastore.Row, 0, len(rows))
	for _, r := range rows {
		stored := copyRow(r)
		if stored.ID() == "" {
			stored["id"] = uuid.NewString()
		}
		s.rows[c] = append(s.rows[c], stored)
		out = append(out, copyRow(stored))
	}
	return out, nil
}

// Update implements datastore.Store
func (s *MemoryStore) Update(_ context.Context, c datastore.Collection, id string, patch datastore.Row) (datastore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[c]; err != nil {
		return nil, err
	}
	for _, r := range s.rows[c] {
		if r.ID() == id {
			for k, v := range patch {
				if k != "id" {
					r[k] = v
				}
			}
			return copyRow(r), nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", c, id, shared.ErrNotFound)
}

// Remove implements datastore.Store
func (s *MemoryStore) Remove(_ context.Context, c datastore.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[c]; err != nil {
		return err
	}
	rows := s.rows[c]
	for i, r := range rows {
		if r.ID() == id {
			s.rows[c] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", c, id, shared.ErrNotFound)
}

func matches(r datastore.Row, opts datastore.SelectOptions) bool {
	for col, v := range opts.Eq {
		if r[col] == nil || compareValues(r[col], v) != 0 {
			return false
		}
	}
	for col, v := range opts.Gte {
		if r[col] == nil || compareValues(r[col], v) < 0 {
			return false
		}
	}
	for col, v := range opts.Lte {
		if r[col] == nil || compareValues(r[col], v) > 0 {
			return false
		}
	}
	for col, values := range opts.In {
		found := false
		for _, v := range values {
			if r[col] != nil && compareValues(r[col], v) == 0 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// compareValues orders nil after everything, numbers numerically and the
// rest by their string form
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	da, aok := asDecimal(a)
	db, bok := asDecimal(b)
	if aok && bok {
		return da.Cmp(db)
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	}
	return decimal.Zero, false
}

func project(r datastore.Row, columns []string) datastore.Row {
	if len(columns) == 0 {
		return copyRow(r)
	}
	out := make(datastore.Row, len(columns))
	for _, c := range columns {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}

func copyRow(r datastore.Row) datastore.Row {
	out := make(datastore.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
