// Package listing runs the list screens: it splits each load between the
// store and memory, and guards views against stale responses.
package listing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/query"
	"github.com/backoffice/financeiro/internal/domain/shared"
	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
	"github.com/backoffice/financeiro/internal/infrastructure/telemetry"
)

// Request is one load of a list screen
type Request[F ~string] struct {
	Filter   query.Filter
	Sort     query.Sort[F]
	Page     int
	PageSize int
	// Today overrides the reference date of the overdue predicate
	Today string
}

// Enricher fills display names on decoded items in place. A returned error
// is logged; the items are still rendered with whatever names were resolved.
type Enricher[T any] func(ctx context.Context, items []T) error

// Metrics receives listing events
type Metrics interface {
	RecordLoad(ctx context.Context, collection datastore.Collection, mode query.Mode, elapsed time.Duration)
	RecordStale(ctx context.Context, collection datastore.Collection)
	RecordStoreError(ctx context.Context, collection datastore.Collection)
}

// Pipeline loads pages of one collection
type Pipeline[T any, F ~string] struct {
	store      datastore.Store
	collection datastore.Collection
	schema     *query.Schema[T, F]
	enrich     Enricher[T]
	pageSize   int
	metrics    Metrics
	logger     *zap.Logger
}

// Option configures a Pipeline
type Option[T any, F ~string] func(*Pipeline[T, F])

// WithEnricher sets the name enrichment step
func WithEnricher[T any, F ~string](e Enricher[T]) Option[T, F] {
	return func(p *Pipeline[T, F]) { p.enrich = e }
}

// WithPageSize sets the default page size
func WithPageSize[T any, F ~string](n int) Option[T, F] {
	return func(p *Pipeline[T, F]) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics[T any, F ~string](m Metrics) Option[T, F] {
	return func(p *Pipeline[T, F]) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLogger sets the logger
func WithLogger[T any, F ~string](l *zap.Logger) Option[T, F] {
	return func(p *Pipeline[T, F]) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline creates a pipeline over collection described by schema
func NewPipeline[T any, F ~string](store datastore.Store, collection datastore.Collection, schema *query.Schema[T, F], opts ...Option[T, F]) *Pipeline[T, F] {
	p := &Pipeline[T, F]{
		store:      store,
		collection: collection,
		schema:     schema,
		pageSize:   shared.DefaultPageSize,
		metrics:    nopMetrics{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Collection returns the collection the pipeline reads
func (p *Pipeline[T, F]) Collection() datastore.Collection {
	return p.collection
}

// Load returns one page. With a free-text search or a derived sort field the
// structurally filtered set is fetched, enriched and finished in memory.
// Otherwise predicates, order and range go to the store and its count drives
// pagination. A page beyond the last one is clamped to the last one.
func (p *Pipeline[T, F]) Load(ctx context.Context, req Request[F]) (query.Page[T], error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = p.pageSize
	}
	today := req.Today
	if today == "" {
		today = valueobject.Today()
	}
	srt := p.schema.ResolveSort(req.Sort)
	mode := p.schema.ModeFor(req.Filter, srt)

	ctx, span := telemetry.StartServiceSpan(ctx, "listing", "load",
		telemetry.WithAttributes(
			telemetry.SpanCollection.String(string(p.collection)),
			telemetry.SpanMode.String(string(mode)),
		),
	)
	defer span.End()
	start := time.Now()

	opts, ok := p.schema.Pushdown(req.Filter, today)
	if !ok {
		page := query.EmptyPage[T](pageSize)
		page.Mode = mode
		return page, nil
	}

	var (
		page query.Page[T]
		err  error
	)
	if mode == query.ModeClient {
		page, err = p.loadClient(ctx, opts, req, srt, pageSize, today)
	} else {
		page, err = p.loadServer(ctx, opts, req.Page, srt, pageSize)
	}
	if err != nil {
		p.metrics.RecordStoreError(ctx, p.collection)
		telemetry.RecordError(span, err)
		empty := query.EmptyPage[T](pageSize)
		empty.Mode = mode
		return empty, err
	}
	span.SetAttributes(telemetry.SpanRows.Int(len(page.Items)), telemetry.SpanTotal.Int64(page.Total))
	p.metrics.RecordLoad(ctx, p.collection, mode, time.Since(start))
	return page, nil
}

func (p *Pipeline[T, F]) loadClient(ctx context.Context, opts datastore.SelectOptions, req Request[F], srt query.Sort[F], pageSize int, today string) (query.Page[T], error) {
	res, err := p.store.Select(ctx, p.collection, opts)
	if err != nil {
		return query.Page[T]{}, fmt.Errorf("list %s: %w", p.collection, err)
	}
	items, err := p.decode(ctx, res.Rows)
	if err != nil {
		return query.Page[T]{}, err
	}
	return p.schema.Apply(items, req.Filter, srt, req.Page, pageSize, today), nil
}

func (p *Pipeline[T, F]) loadServer(ctx context.Context, opts datastore.SelectOptions, page int, srt query.Sort[F], pageSize int) (query.Page[T], error) {
	if page < 1 {
		page = 1
	}
	opts.OrderBy = p.schema.OrderFor(srt)
	opts.Count = true
	opts.Range = pageRange(page, pageSize)

	res, err := p.store.Select(ctx, p.collection, opts)
	if err != nil {
		return query.Page[T]{}, fmt.Errorf("list %s: %w", p.collection, err)
	}
	total := res.Total()
	totalPages := shared.TotalPages(total, pageSize)
	if page > totalPages {
		page = totalPages
		opts.Range = pageRange(page, pageSize)
		res, err = p.store.Select(ctx, p.collection, opts)
		if err != nil {
			return query.Page[T]{}, fmt.Errorf("list %s: %w", p.collection, err)
		}
		total = res.Total()
		totalPages = shared.TotalPages(total, pageSize)
	}

	items, err := p.decode(ctx, res.Rows)
	if err != nil {
		return query.Page[T]{}, err
	}
	return query.Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Mode:       query.ModeServer,
	}, nil
}

func (p *Pipeline[T, F]) decode(ctx context.Context, rows []datastore.Row) ([]T, error) {
	items, err := datastore.DecodeAll[T](rows)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.collection, err)
	}
	if p.enrich != nil && len(items) > 0 {
		if err := p.enrich(ctx, items); err != nil {
			p.logger.Warn("Name resolution incomplete",
				zap.String("collection", string(p.collection)),
				zap.Error(err))
		}
	}
	return items, nil
}

func pageRange(page, pageSize int) *datastore.Range {
	from := (page - 1) * pageSize
	return &datastore.Range{From: from, To: from + pageSize - 1}
}

type nopMetrics struct{}

func (nopMetrics) RecordLoad(context.Context, datastore.Collection, query.Mode, time.Duration) {}
func (nopMetrics) RecordStale(context.Context, datastore.Collection)                           {}
func (nopMetrics) RecordStoreError(context.Context, datastore.Collection)                      {}
