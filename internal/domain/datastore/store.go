// Package datastore defines the generic CRUD contract the dashboard runs
// against. Implementations report failures through the returned error and
// never panic.
package datastore

import (
	"context"
)

// Collection names a backing table
type Collection string

const (
	Receivables    Collection = "recebimentos"
	Payables       Collection = "pagamentos"
	Movements      Collection = "movimentacoes_diarias"
	Clients        Collection = "clientes"
	Suppliers      Collection = "fornecedores"
	Categories     Collection = "categorias"
	PaymentMethods Collection = "formas_pagamento"
)

// Row is a single record as returned by the store
type Row map[string]any

// ID returns the row identifier as a string, empty when absent
func (r Row) ID() string {
	if v, ok := r["id"].(string); ok {
		return v
	}
	return ""
}

// Order is a single-column sort pushed down to the store
type Order struct {
	Column    string
	Ascending bool
}

// Range is a zero-indexed inclusive row window
type Range struct {
	From int
	To   int
}

// SelectOptions describes a filtered query. All predicates are ANDed.
type SelectOptions struct {
	Columns []string
	Eq      map[string]any
	Gte     map[string]any
	Lte     map[string]any
	In      map[string][]any
	OrderBy *Order
	Range   *Range
	// Count requests the exact number of matching rows alongside the page
	Count bool
}

// Where adds an equality predicate
func (o *SelectOptions) Where(column string, value any) *SelectOptions {
	if o.Eq == nil {
		o.Eq = make(map[string]any)
	}
	o.Eq[column] = value
	return o
}

// From adds an inclusive lower bound
func (o *SelectOptions) From(column string, value any) *SelectOptions {
	if o.Gte == nil {
		o.Gte = make(map[string]any)
	}
	o.Gte[column] = value
	return o
}

// Until adds an inclusive upper bound
func (o *SelectOptions) Until(column string, value any) *SelectOptions {
	if o.Lte == nil {
		o.Lte = make(map[string]any)
	}
	o.Lte[column] = value
	return o
}

// WhereIn restricts a column to a set of values
func (o *SelectOptions) WhereIn(column string, values []any) *SelectOptions {
	if o.In == nil {
		o.In = make(map[string][]any)
	}
	o.In[column] = values
	return o
}

// Result is the outcome of a select. Count is nil unless requested.
type Result struct {
	Rows  []Row
	Count *int64
}

// Total returns the reported count, falling back to the number of rows
func (r *Result) Total() int64 {
	if r == nil {
		return 0
	}
	if r.Count != nil {
		return *r.Count
	}
	return int64(len(r.Rows))
}

// Store is the narrow data-access collaborator
type Store interface {
	Select(ctx context.Context, collection Collection, opts SelectOptions) (*Result, error)
	Insert(ctx context.Context, collection Collection, rows ...Row) ([]Row, error)
	Update(ctx context.Context, collection Collection, id string, patch Row) (Row, error)
	Remove(ctx context.Context, collection Collection, id string) error
}
