// Package lookup translates foreign-key ids into display names and typed
// names back into ids.
package lookup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/shared"
)

// Missing is the display value of a null reference or of an id that could
// not be resolved
const Missing = "—"

// Cache memoizes id → name mappings per collection. Entries never expire;
// callers invalidate a collection after writing to it.
type Cache interface {
	GetMany(ctx context.Context, kind datastore.Collection, ids []string) (map[string]string, error)
	SetMany(ctx context.Context, kind datastore.Collection, names map[string]string) error
	Invalidate(ctx context.Context, kind datastore.Collection) error
}

// Candidate is a selectable {id, nome} pair
type Candidate struct {
	ID   string `mapstructure:"id" json:"id"`
	Nome string `mapstructure:"nome" json:"nome"`
}

// Resolver resolves names through a cache in front of the store
type Resolver struct {
	store  datastore.Store
	cache  Cache
	logger *zap.Logger
}

// NewResolver creates a resolver. A nil cache disables memoization.
func NewResolver(store datastore.Store, cache Cache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = noCache{}
	}
	return &Resolver{store: store, cache: cache, logger: logger}
}

// ResolveNames returns a name for every non-empty id in ids. Ids that are not
// found resolve to Missing. The map is complete even when err is non-nil, so
// callers can render with sentinels and report the error separately.
func (r *Resolver) ResolveNames(ctx context.Context, kind datastore.Collection, ids []string) (map[string]string, error) {
	wanted := dedupe(ids)
	names := make(map[string]string, len(wanted))
	if len(wanted) == 0 {
		return names, nil
	}

	cached, err := r.cache.GetMany(ctx, kind, wanted)
	if err != nil {
		r.logger.Warn("Lookup cache read failed",
			zap.String("collection", string(kind)),
			zap.Error(err))
		cached = nil
	}
	missing := make([]any, 0, len(wanted))
	for _, id := range wanted {
		if name, ok := cached[id]; ok {
			names[id] = name
		} else {
			missing = append(missing, id)
		}
	}

	var fetchErr error
	if len(missing) > 0 {
		found, err := r.fetch(ctx, kind, missing)
		if err != nil {
			r.logger.Warn("Lookup resolution failed",
				zap.String("collection", string(kind)),
				zap.Int("ids", len(missing)),
				zap.Error(err))
			fetchErr = err
		}
		if len(found) > 0 {
			if err := r.cache.SetMany(ctx, kind, found); err != nil {
				r.logger.Warn("Lookup cache write failed",
					zap.String("collection", string(kind)),
					zap.Error(err))
			}
			for id, name := range found {
				names[id] = name
			}
		}
	}

	for _, id := range wanted {
		if _, ok := names[id]; !ok {
			names[id] = Missing
		}
	}
	return names, fetchErr
}

// Name returns the display name of an optional id. A nil id, or one absent
// from names, renders as Missing.
func Name(names map[string]string, id *string) string {
	if id == nil || *id == "" {
		return Missing
	}
	if n, ok := names[*id]; ok {
		return n
	}
	return Missing
}

func (r *Resolver) fetch(ctx context.Context, kind datastore.Collection, ids []any) (map[string]string, error) {
	opts := datastore.SelectOptions{Columns: []string{"id", "nome"}}
	opts.WhereIn("id", ids)

	res, err := r.store.Select(ctx, kind, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve %s names: %w", kind, err)
	}
	candidates, err := datastore.DecodeAll[Candidate](res.Rows)
	if err != nil {
		return nil, fmt.Errorf("resolve %s names: %w", kind, err)
	}
	found := make(map[string]string, len(candidates))
	for _, c := range candidates {
		found[c.ID] = c.Nome
	}
	return found, nil
}

// Candidates lists every {id, nome} of a collection ordered by name
func (r *Resolver) Candidates(ctx context.Context, kind datastore.Collection) ([]Candidate, error) {
	res, err := r.store.Select(ctx, kind, datastore.SelectOptions{
		Columns: []string{"id", "nome"},
		OrderBy: &datastore.Order{Column: "nome", Ascending: true},
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return datastore.DecodeAll[Candidate](res.Rows)
}

// ResolveID turns a typed name into an id for field, using an exact match.
// An empty name resolves to nil. A non-empty name without a match is a
// *shared.ValidationError; store failures are returned as is.
func (r *Resolver) ResolveID(ctx context.Context, kind datastore.Collection, field, typed string) (*string, error) {
	name := typed
	if name == "" {
		return nil, nil
	}
	opts := datastore.SelectOptions{Columns: []string{"id", "nome"}}
	opts.Where("nome", name)

	res, err := r.store.Select(ctx, kind, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve %s id: %w", kind, err)
	}
	candidates, err := datastore.DecodeAll[Candidate](res.Rows)
	if err != nil {
		return nil, fmt.Errorf("resolve %s id: %w", kind, err)
	}
	return ResolveIDByName(candidates, field, name)
}

// ResolveIDByName finds the candidate whose nome equals typed exactly
// (case-sensitive, whitespace included). There is no fuzzy matching.
func ResolveIDByName(candidates []Candidate, field, typed string) (*string, error) {
	name := typed
	if name == "" {
		return nil, nil
	}
	for _, c := range candidates {
		if c.Nome == name {
			id := c.ID
			return &id, nil
		}
	}
	return nil, shared.NewValidationError(field, fmt.Sprintf("%q não encontrado", name))
}

// Invalidate drops every cached name of kind
func (r *Resolver) Invalidate(ctx context.Context, kind datastore.Collection) {
	if err := r.cache.Invalidate(ctx, kind); err != nil {
		r.logger.Warn("Lookup cache invalidation failed",
			zap.String("collection", string(kind)),
			zap.Error(err))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IDs collects the non-nil values of optional ids
func IDs(ids ...*string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != nil && *id != "" {
			out = append(out, *id)
		}
	}
	return out
}

type noCache struct{}

func (noCache) GetMany(context.Context, datastore.Collection, []string) (map[string]string, error) {
	return nil, nil
}

func (noCache) SetMany(context.Context, datastore.Collection, map[string]string) error {
	return nil
}

func (noCache) Invalidate(context.Context, datastore.Collection) error {
	return nil
}
