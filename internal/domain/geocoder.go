package domain

import (
	"context"
	"encoding/json"
	"errors"
)

// Status is the provider outcome of a geocode call.
type Status string

const (
	StatusOK             Status = "OK"
	StatusZeroResults    Status = "ZERO_RESULTS"
	StatusRequestDenied  Status = "REQUEST_DENIED"
	StatusInvalidRequest Status = "INVALID_REQUEST"
	StatusOverQueryLimit Status = "OVER_QUERY_LIMIT"
	StatusNetworkError   Status = "NETWORK_ERROR"
	StatusEmptyQuery     Status = "EMPTY_QUERY"
	StatusUnknownError   Status = "UNKNOWN_ERROR"

	// StatusCancelled marks a resolution abandoned because a newer one superseded it.
	StatusCancelled Status = "CANCELLED"
)

// GeocodeResponse is the normalized result of a geocode or reverse geocode
// call. Every failure, including transport errors, is reported through
// Status and ErrorMessage rather than a Go error.
type GeocodeResponse struct {
	OK           bool               `json:"ok"`
	Status       Status             `json:"status"`
	Results      []GeocodeCandidate `json:"results"`
	Raw          json.RawMessage    `json:"raw"`
	ErrorMessage string             `json:"error_message,omitempty"`
}

// EmptyQueryResponse is returned for blank queries without a network call.
func EmptyQueryResponse() GeocodeResponse {
	return GeocodeResponse{
		Status:       StatusEmptyQuery,
		Results:      []GeocodeCandidate{},
		ErrorMessage: "No query provided",
	}
}

// GeocodeClient looks up locations with a geocoding provider.
type GeocodeClient interface {
	// Geocode resolves free text to candidates, biased by opts when non-nil.
	Geocode(ctx context.Context, query string, opts *GeocodeBiasOptions) GeocodeResponse

	// ReverseGeocode resolves a coordinate to candidates describing it.
	ReverseGeocode(ctx context.Context, lat, lng float64) GeocodeResponse
}

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a key-value store for JSON values. Expiry is a property of the store.
type Cache interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
}

// Recorder receives every completed resolution, e.g. for analytics.
type Recorder interface {
	Record(ctx context.Context, event ResolutionEvent) error
}
