package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/couchcryptid/spin-location-service/internal/geo"
	"github.com/couchcryptid/spin-location-service/internal/observability"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Google Geocoding API endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

const (
	methodForward = "forward"
	methodReverse = "reverse"
)

// Client implements domain.GeocodeClient using the Google Geocoding API.
// Every outcome, including transport failures, is returned as a
// domain.GeocodeResponse.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Google geocoding client limited to rps requests per second.
func NewClient(apiKey, baseURL string, timeout time.Duration, rps int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// CheckReadiness reports an error when no API key is configured.
func (c *Client) CheckReadiness(_ context.Context) error {
	if c.apiKey == "" {
		return errors.New("google geocoding API key is not configured")
	}
	return nil
}

// Geocode resolves free text to candidates. Blank queries return
// EMPTY_QUERY without a network call.
func (c *Client) Geocode(ctx context.Context, query string, opts *domain.GeocodeBiasOptions) domain.GeocodeResponse {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.EmptyQueryResponse()
	}

	params := url.Values{"address": {query}}
	if opts != nil {
		if components := opts.Components(); components != "" {
			params.Set("components", components)
		}
		if bounds, ok := opts.Bounds(); ok {
			params.Set("bounds", bounds.String())
		}
	}

	resp := c.do(ctx, params, methodForward)
	if !resp.OK && resp.Status != domain.StatusZeroResults {
		c.logger.Warn("forward geocoding failed",
			"query", query,
			"status", resp.Status,
			"error", resp.ErrorMessage,
		)
	}
	return resp
}

// ReverseGeocode resolves a coordinate to candidates describing it.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) domain.GeocodeResponse {
	params := url.Values{"latlng": {fmt.Sprintf("%.6f,%.6f", lat, lng)}}

	resp := c.do(ctx, params, methodReverse)
	if !resp.OK && resp.Status != domain.StatusZeroResults {
		c.logger.Warn("reverse geocoding failed",
			"lat", lat,
			"lng", lng,
			"status", resp.Status,
			"error", resp.ErrorMessage,
		)
	}
	return resp
}

func (c *Client) do(ctx context.Context, params url.Values, method string) domain.GeocodeResponse {
	start := time.Now()
	resp := c.request(ctx, params)
	c.metrics.GeocodeAPIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	c.metrics.GeocodeRequests.WithLabelValues(method, string(resp.Status)).Inc()
	return resp
}

func (c *Client) request(ctx context.Context, params url.Values) domain.GeocodeResponse {
	if err := c.limiter.Wait(ctx); err != nil {
		return networkError(fmt.Errorf("rate limiter: %w", err))
	}

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodeResponse{
			Status:       domain.StatusInvalidRequest,
			Results:      []domain.GeocodeCandidate{},
			ErrorMessage: fmt.Sprintf("create request: %v", err),
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return domain.GeocodeResponse{
			Status:       statusForHTTP(resp.StatusCode),
			Results:      []domain.GeocodeCandidate{},
			Raw:          rawJSON(body),
			ErrorMessage: fmt.Sprintf("geocoding API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	return normalize(body)
}

// normalize converts a provider payload into a GeocodeResponse. A bare JSON
// array is accepted in place of the {status, results} envelope.
func normalize(body []byte) domain.GeocodeResponse {
	trimmed := bytes.TrimSpace(body)

	var env envelope
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &env.Results); err != nil {
			return networkError(fmt.Errorf("decode response: %w", err))
		}
	} else if err := json.Unmarshal(trimmed, &env); err != nil {
		return networkError(fmt.Errorf("decode response: %w", err))
	}

	status := domain.Status(env.Status)
	if status == "" {
		status = domain.StatusOK
		if len(env.Results) == 0 {
			status = domain.StatusZeroResults
		}
	}

	return domain.GeocodeResponse{
		OK:           status == domain.StatusOK,
		Status:       status,
		Results:      toCandidates(env.Results),
		Raw:          json.RawMessage(trimmed),
		ErrorMessage: env.ErrorMessage,
	}
}

// toCandidates drops results without a complete geometry location.
func toCandidates(results []result) []domain.GeocodeCandidate {
	out := make([]domain.GeocodeCandidate, 0, len(results))
	for _, r := range results {
		if r.Geometry == nil || r.Geometry.Location == nil ||
			r.Geometry.Location.Lat == nil || r.Geometry.Location.Lng == nil {
			continue
		}
		loc := geo.NewCoordinate(*r.Geometry.Location.Lat, *r.Geometry.Location.Lng)
		out = append(out, domain.GeocodeCandidate{
			Location:          &loc,
			AddressComponents: r.AddressComponents,
			FormattedAddress:  r.FormattedAddress,
		})
	}
	return out
}

func statusForHTTP(code int) domain.Status {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.StatusRequestDenied
	case http.StatusTooManyRequests:
		return domain.StatusOverQueryLimit
	case http.StatusBadRequest:
		return domain.StatusInvalidRequest
	default:
		return domain.StatusNetworkError
	}
}

func networkError(err error) domain.GeocodeResponse {
	return domain.GeocodeResponse{
		Status:       domain.StatusNetworkError,
		Results:      []domain.GeocodeCandidate{},
		ErrorMessage: err.Error(),
	}
}

func rawJSON(body []byte) json.RawMessage {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil
	}
	return json.RawMessage(body)
}

// Google API response types.

type envelope struct {
	Status       string   `json:"status"`
	Results      []result `json:"results"`
	ErrorMessage string   `json:"error_message"`
}

type result struct {
	AddressComponents []domain.AddressComponent `json:"address_components"`
	FormattedAddress  string                    `json:"formatted_address"`
	Geometry          *geometry                 `json:"geometry"`
}

type geometry struct {
	Location *latLng `json:"location"`
}

type latLng struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}
