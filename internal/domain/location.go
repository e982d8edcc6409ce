package domain

import (
	"strings"

	"github.com/couchcryptid/spin-location-service/internal/geo"
)

// Address component types used for labeling.
const (
	TypeLocality = "locality"
	TypeCounty   = "administrative_area_level_2"
	TypeState    = "administrative_area_level_1"
)

// UnknownLocation is the label used when a candidate has nothing displayable.
const UnknownLocation = "Unknown Location"

// DefaultKmBias is the bias radius used when none is configured.
const DefaultKmBias = 50.0

// AddressComponent is one structured part of a provider address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// HasType reports whether the component is tagged with t.
func (a AddressComponent) HasType(t string) bool {
	for _, typ := range a.Types {
		if typ == t {
			return true
		}
	}
	return false
}

// GeocodeCandidate is a single raw match returned by the geocoding provider.
// Location is nil when the provider omitted geometry.
type GeocodeCandidate struct {
	Location          *geo.Coordinate    `json:"location,omitempty"`
	AddressComponents []AddressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
}

// usable reports whether the candidate carries a valid point location.
func (c GeocodeCandidate) usable() bool {
	return c.Location != nil && c.Location.Valid()
}

// GeocodeBiasOptions restricts and biases a provider search.
type GeocodeBiasOptions struct {
	Country    string          // ISO 3166-1 alpha-2
	State      string          // administrative area short code
	BiasCenter *geo.Coordinate // nil disables the bounds hint
	KmBias     float64         // radius around BiasCenter; DefaultKmBias when <= 0
}

// Components serializes the country/state restriction as
// "country:{CC}|administrative_area:{STATE}". Empty parts are omitted.
func (o GeocodeBiasOptions) Components() string {
	var parts []string
	if o.Country != "" {
		parts = append(parts, "country:"+o.Country)
	}
	if o.State != "" {
		parts = append(parts, "administrative_area:"+o.State)
	}
	return strings.Join(parts, "|")
}

// Bounds returns the bias window around BiasCenter, or false when no center is set.
func (o GeocodeBiasOptions) Bounds() (geo.Bounds, bool) {
	if o.BiasCenter == nil {
		return geo.Bounds{}, false
	}
	km := o.KmBias
	if km <= 0 {
		km = DefaultKmBias
	}
	return geo.BoundsFromCenter(*o.BiasCenter, km), true
}

// Source records how a ResolvedLocation was produced.
type Source string

const (
	SourceGeocoded Source = "geocoded"
	SourceCoords   Source = "coords"
	SourceFallback Source = "fallback"
)

// Alternative is a ranked candidate offered for disambiguation.
type Alternative struct {
	Label      string         `json:"label"`
	Coords     geo.Coordinate `json:"coords"`
	DistanceKm float64        `json:"distance_km"`
}

// ResolvedLocation is the outcome of resolving a free-text location.
// Coords is nil only when Source is SourceFallback.
type ResolvedLocation struct {
	Coords       *geo.Coordinate `json:"coords"`
	Label        string          `json:"label"`
	State        string          `json:"state,omitempty"`
	Source       Source          `json:"source"`
	Alternatives []Alternative   `json:"alternatives,omitempty"`

	// Status and Message are set on fallbacks caused by a provider outcome.
	Status  Status `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// Fallback builds a coordinate-less resolution that uses label as-is.
func Fallback(label string, resp GeocodeResponse) ResolvedLocation {
	return ResolvedLocation{
		Label:   label,
		Source:  SourceFallback,
		Status:  resp.Status,
		Message: HumanizeGeocodeError(resp),
	}
}
