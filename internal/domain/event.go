package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResolutionEvent describes one completed resolution for downstream consumers.
type ResolutionEvent struct {
	ID         string           `json:"id"`
	Query      string           `json:"query"`
	CacheHit   bool             `json:"cache_hit"`
	Resolved   ResolvedLocation `json:"resolved"`
	ResolvedAt time.Time        `json:"resolved_at"`
}

// NewResolutionEvent stamps a resolution with a random ID and the current time.
func NewResolutionEvent(query string, resolved ResolvedLocation, cacheHit bool) ResolutionEvent {
	return ResolutionEvent{
		ID:         uuid.NewString(),
		Query:      query,
		CacheHit:   cacheHit,
		Resolved:   resolved,
		ResolvedAt: clock.Now().UTC(),
	}
}
