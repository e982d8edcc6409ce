// Package resolver turns free-text locations into ResolvedLocations,
// disambiguating geocoder candidates by distance from the device location.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/couchcryptid/spin-location-service/internal/geo"
	"github.com/couchcryptid/spin-location-service/internal/observability"
)

// resolutionKeyPrefix keeps resolution entries apart from other values in a
// shared cache, such as cached reverse geocodes.
const resolutionKeyPrefix = "resolve:"

// CurrentLocationLabel labels device coordinates that could not be reverse geocoded.
const CurrentLocationLabel = "Current Location"

// Options configures the bias applied to every forward geocode.
type Options struct {
	Country string
	State   string
	KmBias  float64
}

// Resolver resolves location queries, caching successful resolutions by
// normalized query text. Failed lookups are never cached.
type Resolver struct {
	client   domain.GeocodeClient
	cache    domain.Cache
	recorder domain.Recorder
	opts     Options
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu     sync.RWMutex
	device *geo.Coordinate
}

// New creates a Resolver. recorder may be nil.
func New(client domain.GeocodeClient, cache domain.Cache, recorder domain.Recorder, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Resolver {
	if opts.KmBias <= 0 {
		opts.KmBias = domain.DefaultKmBias
	}
	return &Resolver{
		client:   client,
		cache:    cache,
		recorder: recorder,
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
	}
}

// SetDeviceLocation records the last known device coordinates, used as the
// bias center and as the result for blank queries.
func (r *Resolver) SetDeviceLocation(c geo.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.device = &c
}

// ClearDeviceLocation forgets the device coordinates.
func (r *Resolver) ClearDeviceLocation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.device = nil
}

// DeviceLocation returns the last known device coordinates.
func (r *Resolver) DeviceLocation() (geo.Coordinate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.device == nil {
		return geo.Coordinate{}, false
	}
	return *r.device, true
}

// Resolve resolves query against the held device location. It always returns
// a well-formed ResolvedLocation; failures produce a fallback with Message set.
func (r *Resolver) Resolve(ctx context.Context, query string) domain.ResolvedLocation {
	var device *geo.Coordinate
	if c, ok := r.DeviceLocation(); ok {
		device = &c
	}
	return r.resolve(ctx, query, device)
}

// ResolveNear resolves query using device as the bias center instead of the
// held device location.
func (r *Resolver) ResolveNear(ctx context.Context, query string, device geo.Coordinate) domain.ResolvedLocation {
	return r.resolve(ctx, query, &device)
}

func (r *Resolver) resolve(ctx context.Context, query string, device *geo.Coordinate) domain.ResolvedLocation {
	query = strings.TrimSpace(query)
	normalized := domain.NormalizeQuery(query)

	if normalized == "" {
		resolved := r.resolveEmpty(ctx, device)
		r.finish(ctx, query, resolved, false)
		return resolved
	}

	key := resolutionKey(normalized)
	if resolved, ok := r.lookup(ctx, key); ok {
		r.finish(ctx, query, resolved, true)
		return resolved
	}

	resolved, cacheable := r.geocode(ctx, query, device)
	if cacheable {
		r.store(ctx, key, resolved)
	}
	r.finish(ctx, query, resolved, false)
	return resolved
}

// resolveEmpty handles a blank query: the device location when known,
// otherwise an empty fallback.
func (r *Resolver) resolveEmpty(ctx context.Context, device *geo.Coordinate) domain.ResolvedLocation {
	if device == nil {
		return domain.Fallback("", domain.EmptyQueryResponse())
	}

	coords := *device
	resolved := domain.ResolvedLocation{
		Coords: &coords,
		Label:  CurrentLocationLabel,
		Source: domain.SourceCoords,
	}

	resp := r.client.ReverseGeocode(ctx, coords.Latitude, coords.Longitude)
	if !resp.OK {
		return resolved
	}
	usable := domain.UsableCandidates(resp.Results)
	if len(usable) == 0 {
		return resolved
	}
	resolved.Label = domain.ExtractCanonicalLabel(usable[0])
	resolved.State, _ = domain.ExtractStateCode(usable[0])
	return resolved
}

// geocode runs a forward geocode and picks a candidate. The boolean reports
// whether the outcome may be cached.
func (r *Resolver) geocode(ctx context.Context, query string, device *geo.Coordinate) (domain.ResolvedLocation, bool) {
	if ctx.Err() != nil {
		return cancelled(query), false
	}

	opts := &domain.GeocodeBiasOptions{
		Country:    r.opts.Country,
		State:      r.opts.State,
		BiasCenter: device,
		KmBias:     r.opts.KmBias,
	}
	resp := r.client.Geocode(ctx, query, opts)

	// A superseded call must not overwrite anything with a stale answer.
	if ctx.Err() != nil {
		return cancelled(query), false
	}

	if !resp.OK {
		r.logger.Warn("geocode fell back to query text",
			"query", query,
			"status", resp.Status,
			"error", resp.ErrorMessage,
		)
		return domain.Fallback(query, resp), false
	}

	usable := domain.UsableCandidates(resp.Results)
	if len(usable) == 0 {
		return domain.Fallback(query, domain.GeocodeResponse{Status: domain.StatusZeroResults}), false
	}

	selected := usable[0]
	if device != nil {
		selected, _ = domain.FindClosest(usable, *device)
	}
	coords := *selected.Location

	resolved := domain.ResolvedLocation{
		Coords: &coords,
		Label:  domain.ExtractCanonicalLabel(selected),
		Source: domain.SourceGeocoded,
	}
	resolved.State, _ = domain.ExtractStateCode(selected)

	if len(usable) > 1 {
		reference := coords
		if device != nil {
			reference = *device
		}
		resolved.Alternatives = domain.RankAlternatives(usable, reference)
	}

	return resolved, true
}

func (r *Resolver) lookup(ctx context.Context, key string) (domain.ResolvedLocation, bool) {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			r.logger.Warn("resolution cache read failed", "key", key, "error", err)
		}
		r.metrics.ResolveCache.WithLabelValues("miss").Inc()
		return domain.ResolvedLocation{}, false
	}

	var resolved domain.ResolvedLocation
	if err := json.Unmarshal(raw, &resolved); err != nil || !wellFormed(resolved) {
		r.logger.Warn("discarding malformed cached resolution", "key", key, "error", err)
		r.metrics.ResolveCache.WithLabelValues("miss").Inc()
		return domain.ResolvedLocation{}, false
	}

	r.metrics.ResolveCache.WithLabelValues("hit").Inc()
	r.logger.Debug("resolution cache hit", "key", key, "label", resolved.Label)
	return resolved, true
}

func (r *Resolver) store(ctx context.Context, key string, resolved domain.ResolvedLocation) {
	data, err := json.Marshal(resolved)
	if err != nil {
		r.logger.Warn("encode resolution for cache failed", "key", key, "error", err)
		return
	}
	if err := r.cache.Set(ctx, key, data); err != nil {
		r.logger.Warn("resolution cache write failed", "key", key, "error", err)
	}
}

func (r *Resolver) finish(ctx context.Context, query string, resolved domain.ResolvedLocation, cacheHit bool) {
	r.metrics.Resolutions.WithLabelValues(string(resolved.Source)).Inc()
	if r.recorder == nil || resolved.Status == domain.StatusCancelled {
		return
	}
	event := domain.NewResolutionEvent(query, resolved, cacheHit)
	if err := r.recorder.Record(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Warn("record resolution failed", "event_id", event.ID, "error", err)
	}
}

func resolutionKey(normalized string) string {
	return resolutionKeyPrefix + normalized
}

// wellFormed reports whether a decoded value is a resolution this package
// could have stored: a known source, with coordinates unless it is a fallback.
func wellFormed(r domain.ResolvedLocation) bool {
	switch r.Source {
	case domain.SourceGeocoded, domain.SourceCoords:
		return r.Coords != nil
	case domain.SourceFallback:
		return true
	default:
		return false
	}
}

func cancelled(query string) domain.ResolvedLocation {
	return domain.Fallback(query, domain.GeocodeResponse{
		Status:       domain.StatusCancelled,
		ErrorMessage: "Location search was replaced by a newer search",
	})
}
