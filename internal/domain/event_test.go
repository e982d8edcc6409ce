package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolutionEvent(t *testing.T) {
	now := time.Date(2025, time.May, 2, 18, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	defer SetClock(nil)

	resolved := ResolvedLocation{Label: "Powell, OH", Source: SourceGeocoded}
	event := NewResolutionEvent("powell", resolved, true)

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, "powell", event.Query)
	assert.True(t, event.CacheHit)
	assert.Equal(t, resolved, event.Resolved)
	assert.Equal(t, now, event.ResolvedAt)
}
