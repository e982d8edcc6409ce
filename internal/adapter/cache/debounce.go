package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/couchcryptid/spin-location-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DebouncedWriter delays writes to an underlying cache. Each key has at most
// one pending write; a newer Set replaces the pending value and restarts its
// timer. Reads see pending values.
type DebouncedWriter struct {
	inner   domain.Cache
	delay   time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

type pendingWrite struct {
	value json.RawMessage
	timer clockwork.Timer
}

// NewDebouncedWriter wraps inner. A non-positive delay writes through immediately.
func NewDebouncedWriter(inner domain.Cache, delay time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *DebouncedWriter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DebouncedWriter{
		inner:   inner,
		delay:   delay,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
		pending: make(map[string]*pendingWrite),
	}
}

func (w *DebouncedWriter) Get(ctx context.Context, key string) (json.RawMessage, error) {
	w.mu.Lock()
	if p, ok := w.pending[key]; ok {
		v := clone(p.value)
		w.mu.Unlock()
		return v, nil
	}
	w.mu.Unlock()
	return w.inner.Get(ctx, key)
}

func (w *DebouncedWriter) Set(ctx context.Context, key string, value json.RawMessage) error {
	if w.delay <= 0 {
		return w.inner.Set(ctx, key, value)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.pending[key]; ok {
		prev.timer.Stop()
	}
	p := &pendingWrite{value: clone(value)}
	p.timer = w.clock.AfterFunc(w.delay, func() { w.fire(key, p) })
	w.pending[key] = p
	w.metrics.PendingCacheWrites.Set(float64(len(w.pending)))
	return nil
}

// Flush writes every pending value immediately.
func (w *DebouncedWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]*pendingWrite)
	for _, p := range batch {
		p.timer.Stop()
	}
	w.metrics.PendingCacheWrites.Set(0)
	w.mu.Unlock()

	var errs []error
	for key, p := range batch {
		if err := w.inner.Set(ctx, key, p.value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pending returns the number of writes waiting for their timer.
func (w *DebouncedWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *DebouncedWriter) fire(key string, p *pendingWrite) {
	w.mu.Lock()
	if w.pending[key] != p {
		// Superseded or flushed.
		w.mu.Unlock()
		return
	}
	delete(w.pending, key)
	w.metrics.PendingCacheWrites.Set(float64(len(w.pending)))
	w.mu.Unlock()

	if err := w.inner.Set(context.Background(), key, p.value); err != nil {
		w.logger.Warn("debounced cache write failed", "key", key, "error", err)
	}
}
