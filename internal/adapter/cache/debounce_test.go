package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/couchcryptid/spin-location-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDebounced(t *testing.T, delay time.Duration) (*DebouncedWriter, *Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := NewStore(10, 0, clock)
	return NewDebouncedWriter(store, delay, clock, observability.NewMetricsForTesting(), discardLogger()), store, clock
}

func stored(s *Store, key string) func() bool {
	return func() bool {
		_, err := s.Get(context.Background(), key)
		return err == nil
	}
}

func TestDebouncedWriter_WritesAfterDelay(t *testing.T) {
	w, store, clock := newDebounced(t, time.Second)

	set(t, w, "a", `1`)

	_, err := store.Get(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "write is still pending")
	assert.Equal(t, `1`, mustGet(t, w, "a"), "pending value is readable")

	clock.Advance(time.Second)

	assert.Eventually(t, stored(store, "a"), time.Second, 5*time.Millisecond)
	assert.Zero(t, w.Pending())
}

func TestDebouncedWriter_NewerWriteReplacesPending(t *testing.T) {
	w, store, clock := newDebounced(t, time.Second)

	set(t, w, "a", `1`)
	clock.Advance(600 * time.Millisecond)
	set(t, w, "a", `2`)
	assert.Equal(t, 1, w.Pending())

	// The first timer would have fired here; it was replaced.
	clock.Advance(600 * time.Millisecond)
	assert.Never(t, stored(store, "a"), 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(400 * time.Millisecond)
	assert.Eventually(t, stored(store, "a"), time.Second, 5*time.Millisecond)
	assert.Equal(t, `2`, mustGet(t, store, "a"))
}

func TestDebouncedWriter_Flush(t *testing.T) {
	w, store, _ := newDebounced(t, time.Hour)

	set(t, w, "a", `1`)
	set(t, w, "b", `2`)
	require.NoError(t, w.Flush(context.Background()))

	assert.Zero(t, w.Pending())
	assert.Equal(t, `1`, mustGet(t, store, "a"))
	assert.Equal(t, `2`, mustGet(t, store, "b"))
}

func TestDebouncedWriter_ZeroDelayWritesThrough(t *testing.T) {
	w, store, _ := newDebounced(t, 0)

	require.NoError(t, w.Set(context.Background(), "a", json.RawMessage(`1`)))

	assert.Equal(t, `1`, mustGet(t, store, "a"))
	assert.Zero(t, w.Pending())
}
