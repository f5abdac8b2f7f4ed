package persistence

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/shared"
)

// Store is the SQL implementation of datastore.Store. Every column name that
// reaches a statement is checked against the collection whitelist first, so
// values are the only user input bound into SQL.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a store over an open database
func NewStore(db *Database) *Store {
	return &Store{db: db.DB, now: time.Now}
}

// Select implements datastore.Store. Ascending order puts nulls last and
// descending puts them first; ties are broken by id.
func (s *Store) Select(ctx context.Context, c datastore.Collection, opts datastore.SelectOptions) (*datastore.Result, error) {
	allowed, err := columnsOf(c)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(c, allowed, opts); err != nil {
		return nil, err
	}

	res := &datastore.Result{}
	if opts.Count {
		var n int64
		if err := s.filtered(ctx, c, opts).Count(&n).Error; err != nil {
			return nil, queryFailed("count", c, err)
		}
		res.Count = &n
	}

	q := s.filtered(ctx, c, opts)
	if len(opts.Columns) > 0 {
		q = q.Select(opts.Columns)
	}
	if opts.OrderBy != nil {
		col := ValidateSortField(opts.OrderBy.Column, allowed, "id")
		if opts.OrderBy.Ascending {
			q = q.Order(col + " ASC NULLS LAST")
		} else {
			q = q.Order(col + " DESC NULLS FIRST")
		}
		if col != "id" {
			q = q.Order("id ASC")
		}
	}
	if opts.Range != nil {
		q = q.Offset(opts.Range.From).Limit(opts.Range.To - opts.Range.From + 1)
	}

	var rows []map[string]any
	if err := q.Find(&rows).Error; err != nil {
		return nil, queryFailed("select", c, err)
	}
	res.Rows = make([]datastore.Row, 0, len(rows))
	for _, r := range rows {
		res.Rows = append(res.Rows, normalizeRow(r))
	}
	return res, nil
}

// Insert implements datastore.Store. Missing ids are generated; the stored
// rows are read back so database defaults are visible to the caller.
func (s *Store) Insert(ctx context.Context, c datastore.Collection, rows ...datastore.Row) ([]datastore.Row, error) {
	allowed, err := columnsOf(c)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []datastore.Row{}, nil
	}

	now := s.now().UTC()
	values := make([]map[string]any, 0, len(rows))
	ids := make([]any, 0, len(rows))
	for _, r := range rows {
		v := make(map[string]any, len(r)+3)
		for k, val := range r {
			if !allowed[k] {
				return nil, unknownColumn(c, k)
			}
			v[k] = val
		}
		if id, _ := v["id"].(string); id == "" {
			v["id"] = uuid.NewString()
		}
		v["created_at"] = now
		v["updated_at"] = now
		values = append(values, v)
		ids = append(ids, v["id"])
	}

	// rows are created one by one: a batch insert binds the union of all keys
	// and would write NULL over column defaults
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, v := range values {
			if err := tx.Table(string(c)).Create(v).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, queryFailed("insert", c, err)
	}

	var opts datastore.SelectOptions
	opts.WhereIn("id", ids)
	stored, err := s.Select(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]datastore.Row, len(stored.Rows))
	for _, r := range stored.Rows {
		byID[r.ID()] = r
	}
	out := make([]datastore.Row, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id.(string)]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Update implements datastore.Store. The id column is never patched.
func (s *Store) Update(ctx context.Context, c datastore.Collection, id string, patch datastore.Row) (datastore.Row, error) {
	allowed, err := columnsOf(c)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		if k == "id" {
			continue
		}
		if !allowed[k] {
			return nil, unknownColumn(c, k)
		}
		values[k] = v
	}
	values["updated_at"] = s.now().UTC()

	tx := s.db.WithContext(ctx).Table(string(c)).Where("id = ?", id).Updates(values)
	if tx.Error != nil {
		return nil, queryFailed("update", c, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, fmt.Errorf("%s %s: %w", c, id, shared.ErrNotFound)
	}

	var opts datastore.SelectOptions
	opts.Where("id", id)
	res, err := s.Select(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", c, id, shared.ErrNotFound)
	}
	return res.Rows[0], nil
}

// Remove implements datastore.Store
func (s *Store) Remove(ctx context.Context, c datastore.Collection, id string) error {
	if _, err := columnsOf(c); err != nil {
		return err
	}
	tx := s.db.WithContext(ctx).Exec("DELETE FROM "+string(c)+" WHERE id = ?", id)
	if tx.Error != nil {
		return queryFailed("delete", c, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", c, id, shared.ErrNotFound)
	}
	return nil
}

// filtered builds a fresh statement with every predicate applied. Predicates
// are added in column order so the generated SQL is stable.
func (s *Store) filtered(ctx context.Context, c datastore.Collection, opts datastore.SelectOptions) *gorm.DB {
	q := s.db.WithContext(ctx).Table(string(c))
	for _, col := range sortedKeys(opts.Eq) {
		q = q.Where(col+" = ?", opts.Eq[col])
	}
	for _, col := range sortedKeys(opts.Gte) {
		q = q.Where(col+" >= ?", opts.Gte[col])
	}
	for _, col := range sortedKeys(opts.Lte) {
		q = q.Where(col+" <= ?", opts.Lte[col])
	}
	for _, col := range sortedKeys(opts.In) {
		q = q.Where(col+" IN ?", opts.In[col])
	}
	return q
}

func columnsOf(c datastore.Collection) (map[string]bool, error) {
	allowed, ok := CollectionColumns[c]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", c, shared.ErrNotFound)
	}
	return allowed, nil
}

func checkColumns(c datastore.Collection, allowed map[string]bool, opts datastore.SelectOptions) error {
	for _, col := range opts.Columns {
		if !allowed[col] {
			return unknownColumn(c, col)
		}
	}
	for _, set := range []map[string]any{opts.Eq, opts.Gte, opts.Lte} {
		for col := range set {
			if !allowed[col] {
				return unknownColumn(c, col)
			}
		}
	}
	for col := range opts.In {
		if !allowed[col] {
			return unknownColumn(c, col)
		}
	}
	return nil
}

func unknownColumn(c datastore.Collection, col string) error {
	return fmt.Errorf("%s: unknown column %q: %w", c, col, shared.ErrInvalidInput)
}

func queryFailed(op string, c datastore.Collection, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, c, shared.ErrQueryFailed, err)
}

// normalizeRow converts driver-specific values to the forms the row decoder
// understands
func normalizeRow(r map[string]any) datastore.Row {
	out := make(datastore.Row, len(r))
	for k, v := range r {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
