package domain

import (
	"testing"

	"github.com/couchcryptid/spin-location-service/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeBiasOptions_Components(t *testing.T) {
	assert.Equal(t, "country:US", GeocodeBiasOptions{Country: "US"}.Components())
	assert.Equal(t, "country:US|administrative_area:OH", GeocodeBiasOptions{Country: "US", State: "OH"}.Components())
	assert.Empty(t, GeocodeBiasOptions{}.Components())
}

func TestGeocodeBiasOptions_Bounds(t *testing.T) {
	_, ok := GeocodeBiasOptions{Country: "US"}.Bounds()
	assert.False(t, ok)

	center := geo.NewCoordinate(39.9612, -82.9988)
	b, ok := GeocodeBiasOptions{BiasCenter: &center}.Bounds()
	require.True(t, ok)
	assert.Equal(t, geo.BoundsFromCenter(center, DefaultKmBias), b)

	b, ok = GeocodeBiasOptions{BiasCenter: &center, KmBias: 10}.Bounds()
	require.True(t, ok)
	assert.Equal(t, geo.BoundsFromCenter(center, 10), b)
}

func TestFallback(t *testing.T) {
	r := Fallback("Atlantis", GeocodeResponse{Status: StatusZeroResults})

	assert.Nil(t, r.Coords)
	assert.Equal(t, "Atlantis", r.Label)
	assert.Equal(t, SourceFallback, r.Source)
	assert.Equal(t, StatusZeroResults, r.Status)
	assert.Equal(t, "No results found for that location", r.Message)
}

func TestAddressComponent_HasType(t *testing.T) {
	c := component("Ohio", "OH", TypeState, "political")
	assert.True(t, c.HasType(TypeState))
	assert.False(t, c.HasType(TypeLocality))
}
