package listing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/domain/query"
)

// DefaultDebounce is the quiescence window of free-text search
const DefaultDebounce = 250 * time.Millisecond

// View is the state of one list screen. Every load takes a new version; a
// response whose version has been superseded by the time it arrives is
// discarded and never becomes the current page.
type View[T any, F ~string] struct {
	pipeline  *Pipeline[T, F]
	debouncer *Debouncer
	logger    *zap.Logger

	mu      sync.Mutex
	version uint64
	current query.Page[T]
	last    Request[F]
}

// NewView creates a view over p. debounce <= 0 uses DefaultDebounce.
func NewView[T any, F ~string](p *Pipeline[T, F], debounce time.Duration, logger *zap.Logger) *View[T, F] {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View[T, F]{
		pipeline:  p,
		debouncer: NewDebouncer(debounce),
		logger:    logger,
		current:   query.EmptyPage[T](p.pageSize),
	}
}

// Load runs req and commits the result unless a newer load started
// meanwhile. committed is false for a superseded response, which carries no
// page and no error. A failed read commits an empty page and returns the error.
func (v *View[T, F]) Load(ctx context.Context, req Request[F]) (page query.Page[T], committed bool, err error) {
	v.mu.Lock()
	v.version++
	token := v.version
	v.mu.Unlock()

	page, err = v.pipeline.Load(ctx, req)

	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.version {
		v.logger.Debug("Discarded stale list response",
			zap.String("collection", string(v.pipeline.collection)),
			zap.Uint64("version", token),
			zap.Uint64("latest", v.version))
		v.pipeline.metrics.RecordStale(ctx, v.pipeline.collection)
		return query.Page[T]{}, false, nil
	}
	v.last = req
	if err != nil {
		v.logger.Error("List load failed",
			zap.String("collection", string(v.pipeline.collection)),
			zap.Error(err))
		v.current = page
		return page, true, err
	}
	v.current = page
	return page, true, nil
}

// Refresh reloads the last committed request, e.g. after a write. The page
// is clamped if the data shrank.
func (v *View[T, F]) Refresh(ctx context.Context) (query.Page[T], bool, error) {
	v.mu.Lock()
	req := v.last
	req.Page = v.current.Page
	v.mu.Unlock()
	return v.Load(ctx, req)
}

// Search schedules a load of req after the debounce window. Each call
// replaces the pending one; done receives the outcome of the load that runs.
func (v *View[T, F]) Search(ctx context.Context, req Request[F], done func(page query.Page[T], committed bool, err error)) {
	v.debouncer.Trigger(func() {
		page, committed, err := v.Load(ctx, req)
		if done != nil {
			done(page, committed, err)
		}
	})
}

// Current returns the last committed page
func (v *View[T, F]) Current() query.Page[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Version returns the number of loads started so far
func (v *View[T, F]) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Close cancels a pending debounced search
func (v *View[T, F]) Close() {
	v.debouncer.Stop()
}
