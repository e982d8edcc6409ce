package domain

import (
	"math"
	"sort"

	"github.com/couchcryptid/spin-location-service/internal/geo"
)

// FindClosest returns the candidate nearest to reference, skipping candidates
// without a usable location. Ties keep the earliest candidate. The boolean is
// false when no candidate is usable, which is a normal outcome.
func FindClosest(candidates []GeocodeCandidate, reference geo.Coordinate) (GeocodeCandidate, bool) {
	var (
		best     GeocodeCandidate
		bestDist = math.Inf(1)
		found    bool
	)
	for _, c := range candidates {
		if !c.usable() {
			continue
		}
		d := geo.HaversineDistanceKm(*c.Location, reference)
		if !found || d < bestDist {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

// RankAlternatives labels every usable candidate and orders them by ascending
// distance from reference. Equal distances keep provider order.
func RankAlternatives(candidates []GeocodeCandidate, reference geo.Coordinate) []Alternative {
	alts := make([]Alternative, 0, len(candidates))
	for _, c := range candidates {
		if !c.usable() {
			continue
		}
		alts = append(alts, Alternative{
			Label:      ExtractCanonicalLabel(c),
			Coords:     *c.Location,
			DistanceKm: geo.HaversineDistanceKm(*c.Location, reference),
		})
	}
	sort.SliceStable(alts, func(i, j int) bool {
		return alts[i].DistanceKm < alts[j].DistanceKm
	})
	return alts
}

// UsableCandidates filters out candidates without a usable location.
func UsableCandidates(candidates []GeocodeCandidate) []GeocodeCandidate {
	out := make([]GeocodeCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.usable() {
			out = append(out, c)
		}
	}
	return out
}
