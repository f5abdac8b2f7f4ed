// Package finance implements the receivable, payable, movement and catalog
// screens on top of the generic store.
package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/application/listing"
	"github.com/backoffice/financeiro/internal/application/lookup"
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/shared"
	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
)

// Options configures the screen services
type Options struct {
	// PageSize is the default list page size
	PageSize int
	// Debounce is the free-text search window of views
	Debounce time.Duration
	Metrics  listing.Metrics
	Logger   *zap.Logger
	// Today returns the reference date; defaults to the local date
	Today func() string
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = shared.DefaultPageSize
	}
	if o.Debounce <= 0 {
		o.Debounce = listing.DefaultDebounce
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Today == nil {
		o.Today = valueobject.Today
	}
	return o
}

func getOne[T any](ctx context.Context, store datastore.Store, c datastore.Collection, id string) (T, error) {
	var zero T
	opts := datastore.SelectOptions{}
	opts.Where("id", id)
	res, err := store.Select(ctx, c, opts)
	if err != nil {
		return zero, fmt.Errorf("get %s %s: %w", c, id, err)
	}
	if len(res.Rows) == 0 {
		return zero, fmt.Errorf("%s %s: %w", c, id, shared.ErrNotFound)
	}
	return datastore.Decode[T](res.Rows[0])
}

func insertOne[T any](ctx context.Context, store datastore.Store, c datastore.Collection, row datastore.Row) (T, error) {
	var zero T
	rows, err := store.Insert(ctx, c, row)
	if err != nil {
		return zero, fmt.Errorf("insert %s: %w", c, err)
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("insert %s: no row returned: %w", c, shared.ErrQueryFailed)
	}
	return datastore.Decode[T](rows[0])
}

func updateOne[T any](ctx context.Context, store datastore.Store, c datastore.Collection, id string, patch datastore.Row) (T, error) {
	var zero T
	row, err := store.Update(ctx, c, id, patch)
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", c, id, err)
	}
	return datastore.Decode[T](row)
}

// references are the ids a form resolved from typed names
type references struct {
	counterpart   *string
	category      *string
	paymentMethod *string
}

// resolveReferences resolves typed names before any write. The first name
// without an exact match is returned as a validation error.
func resolveReferences(ctx context.Context, resolver *lookup.Resolver, counterpartKind datastore.Collection, counterpartField, counterpart, category, paymentMethod string) (references, error) {
	var (
		refs references
		err  error
	)
	if counterpartKind != "" {
		if refs.counterpart, err = resolver.ResolveID(ctx, counterpartKind, counterpartField, counterpart); err != nil {
			return refs, err
		}
	}
	if refs.category, err = resolver.ResolveID(ctx, datastore.Categories, "categoria", category); err != nil {
		return refs, err
	}
	if refs.paymentMethod, err = resolver.ResolveID(ctx, datastore.PaymentMethods, "forma_pagamento", paymentMethod); err != nil {
		return refs, err
	}
	return refs, nil
}

// nameTables resolves ids of several kinds, continuing past failures
func nameTables(ctx context.Context, resolver *lookup.Resolver, ids map[datastore.Collection][]string) (map[datastore.Collection]map[string]string, error) {
	out := make(map[datastore.Collection]map[string]string, len(ids))
	var errs []error
	for kind, list := range ids {
		names, err := resolver.ResolveNames(ctx, kind, list)
		if err != nil {
			errs = append(errs, err)
		}
		out[kind] = names
	}
	return out, errors.Join(errs...)
}

func settleDate(in SettleInput, today func() string) string {
	if in.Data != "" {
		return in.Data
	}
	return today()
}

// selectAll reads every row of c with dateColumn in [from, to], ordered by
// that column. Empty bounds are open.
func selectAll[T any](ctx context.Context, store datastore.Store, c datastore.Collection, dateColumn, from, to string) ([]T, error) {
	opts := datastore.SelectOptions{OrderBy: &datastore.Order{Column: dateColumn, Ascending: true}}
	if from != "" {
		opts.From(dateColumn, from)
	}
	if to != "" {
		opts.Until(dateColumn, to)
	}
	res, err := store.Select(ctx, c, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	return datastore.DecodeAll[T](res.Rows)
}
