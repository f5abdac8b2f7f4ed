package datastore

import (
	"context"

	"github.com/backoffice/financeiro/internal/domain/shared"
)

// Unavailable is the store used when no connection is configured.
// Every call fails immediately with shared.ErrStoreUnavailable.
type Unavailable struct{}

// Select implements Store
func (Unavailable) Select(context.Context, Collection, SelectOptions) (*Result, error) {
	return nil, shared.ErrStoreUnavailable
}

// Insert implements Store
func (Unavailable) Insert(context.Context, Collection, ...Row) ([]Row, error) {
	return nil, shared.ErrStoreUnavailable
}

// Update implements Store
func (Unavailable) Update(context.Context, Collection, string, Row) (Row, error) {
	return nil, shared.ErrStoreUnavailable
}

// Remove implements Store
func (Unavailable) Remove(context.Context, Collection, string) error {
	return shared.ErrStoreUnavailable
}

var _ Store = Unavailable{}
