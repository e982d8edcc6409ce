package domain

// ExtractCanonicalLabel returns the display label for a candidate:
//
//  1. "{locality long name}, {state short name}"
//  2. "{county long name}, {state short name}"
//  3. the formatted address
//  4. UnknownLocation
//
// Missing or empty components fall through to the next rule.
func ExtractCanonicalLabel(c GeocodeCandidate) string {
	if label, ok := placeLabel(c, TypeLocality); ok {
		return label
	}
	if label, ok := placeLabel(c, TypeCounty); ok {
		return label
	}
	if c.FormattedAddress != "" {
		return c.FormattedAddress
	}
	return UnknownLocation
}

// ExtractStateCode returns the short form of the candidate's state component.
func ExtractStateCode(c GeocodeCandidate) (string, bool) {
	state, ok := findComponent(c.AddressComponents, TypeState)
	if !ok || state.ShortName == "" {
		return "", false
	}
	return state.ShortName, true
}

func placeLabel(c GeocodeCandidate, placeType string) (string, bool) {
	place, ok := findComponent(c.AddressComponents, placeType)
	if !ok || place.LongName == "" {
		return "", false
	}
	state, ok := ExtractStateCode(c)
	if !ok {
		return "", false
	}
	return place.LongName + ", " + state, true
}

// findComponent returns the first component tagged with typ.
func findComponent(components []AddressComponent, typ string) (AddressComponent, bool) {
	for _, comp := range components {
		if comp.HasType(typ) {
			return comp, true
		}
	}
	return AddressComponent{}, false
}
