package domain

import (
	"testing"

	"github.com/couchcryptid/spin-location-service/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindClosest_PicksNearestToReference(t *testing.T) {
	got, ok := FindClosest([]GeocodeCandidate{powellWyoming(), powellOhio()}, columbus)

	require.True(t, ok)
	assert.Equal(t, "Powell, OH", ExtractCanonicalLabel(got))
}

func TestFindClosest_TieKeepsFirst(t *testing.T) {
	first := powellOhio()
	first.FormattedAddress = "first"
	second := powellOhio()
	second.FormattedAddress = "second"

	got, ok := FindClosest([]GeocodeCandidate{first, second}, columbus)

	require.True(t, ok)
	assert.Equal(t, "first", got.FormattedAddress)
}

func TestFindClosest_SkipsUnusable(t *testing.T) {
	bad := geo.NewCoordinate(120, 0)
	candidates := []GeocodeCandidate{
		{FormattedAddress: "no geometry"},
		{Location: &bad, FormattedAddress: "out of range"},
		powellWyoming(),
	}

	got, ok := FindClosest(candidates, columbus)

	require.True(t, ok)
	assert.Equal(t, "Powell, WY", ExtractCanonicalLabel(got))
}

func TestFindClosest_NoSelection(t *testing.T) {
	_, ok := FindClosest(nil, columbus)
	assert.False(t, ok)

	_, ok = FindClosest([]GeocodeCandidate{{FormattedAddress: "no geometry"}}, columbus)
	assert.False(t, ok)
}

func TestRankAlternatives_AscendingDistance(t *testing.T) {
	alts := RankAlternatives([]GeocodeCandidate{powellWyoming(), {FormattedAddress: "dropped"}, powellOhio()}, columbus)

	require.Len(t, alts, 2)
	assert.Equal(t, "Powell, OH", alts[0].Label)
	assert.Equal(t, powellOH, alts[0].Coords)
	assert.Equal(t, "Powell, WY", alts[1].Label)
	assert.Less(t, alts[0].DistanceKm, alts[1].DistanceKm)
	assert.Greater(t, alts[1].DistanceKm, 1000.0)
}

func TestRankAlternatives_SelectedFirst(t *testing.T) {
	candidates := []GeocodeCandidate{powellWyoming(), powellOhio()}

	closest, ok := FindClosest(candidates, columbus)
	require.True(t, ok)
	alts := RankAlternatives(candidates, columbus)

	assert.Equal(t, ExtractCanonicalLabel(closest), alts[0].Label)
}

func TestUsableCandidates(t *testing.T) {
	got := UsableCandidates([]GeocodeCandidate{{FormattedAddress: "x"}, powellOhio()})

	require.Len(t, got, 1)
	assert.Equal(t, "Powell, OH", ExtractCanonicalLabel(got[0]))
}
