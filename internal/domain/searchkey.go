package domain

import (
	"fmt"
	"strings"
)

// NormalizeQuery lowercases and trims free text for use in cache keys.
func NormalizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BuildSearchKey derives the business-search cache key for a resolved
// location and search term. Coordinates are rounded to three decimals; without
// coordinates the label is used with every rune outside [a-z0-9] mapped to "-".
func BuildSearchKey(resolved ResolvedLocation, term string) string {
	term = NormalizeQuery(term)
	if resolved.Coords != nil {
		return fmt.Sprintf("search:%.3f,%.3f:%s", resolved.Coords.Latitude, resolved.Coords.Longitude, term)
	}
	return "search:" + normalizeLabel(resolved.Label) + ":" + term
}

func normalizeLabel(label string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, strings.ToLower(label))
}
