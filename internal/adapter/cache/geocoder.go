package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/spin-location-service/internal/domain"
)

// CachedGeocoder wraps a GeocodeClient and caches successful reverse geocodes
// under coordinates rounded to three decimals. Forward geocodes pass through;
// their results are cached per query by the resolver.
type CachedGeocoder struct {
	inner  domain.GeocodeClient
	cache  domain.Cache
	logger *slog.Logger
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.GeocodeClient, cache domain.Cache, logger *slog.Logger) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: cache, logger: logger}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, query string, opts *domain.GeocodeBiasOptions) domain.GeocodeResponse {
	return c.inner.Geocode(ctx, query, opts)
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) domain.GeocodeResponse {
	key := fmt.Sprintf("rev:%.3f,%.3f", lat, lng)
	if raw, err := c.cache.Get(ctx, key); err == nil {
		var resp domain.GeocodeResponse
		if err := json.Unmarshal(raw, &resp); err == nil && resp.OK {
			return resp
		}
	}

	resp := c.inner.ReverseGeocode(ctx, lat, lng)
	// Only cache successes so transient failures can be retried.
	if !resp.OK || len(resp.Results) == 0 {
		return resp
	}
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("encode reverse geocode for cache failed", "key", key, "error", err)
		return resp
	}
	if err := c.cache.Set(ctx, key, data); err != nil {
		c.logger.Warn("cache reverse geocode failed", "key", key, "error", err)
	}
	return resp
}
