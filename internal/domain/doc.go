// Package domain models free-text location resolution for restaurant search.
//
// # Provider Data
//
// Candidates come from a Google-style geocoding provider. Each candidate has a
// point location, a formatted address, and an ordered list of address
// components tagged with types:
//
//	locality                     city or town, e.g. "Powell"
//	administrative_area_level_2  county, e.g. "Delaware County"
//	administrative_area_level_1  state or province, short form "OH"
//
// Candidates without a geometry location are dropped by the client adapter
// before they reach this package.
//
// # Disambiguation
//
// Ambiguous place names ("Powell" is a city in both Ohio and Wyoming) are
// resolved by geocoding with a bias window around the device location and
// picking the candidate nearest the bias center by great-circle distance.
// Ties keep the first candidate the provider returned. The remaining
// candidates are surfaced as alternatives, nearest first, so a picker can
// offer the other matches.
//
// # Labels
//
// The display label for a candidate is "{locality}, {state}" when both are
// present, else "{county}, {state}", else the provider's formatted address,
// else "Unknown Location". See [ExtractCanonicalLabel].
//
// # Search Keys
//
// Business search results are cached under keys built by [BuildSearchKey].
// Coordinates are rounded to three decimals (about 111 m) so repeated nearby
// searches share an entry:
//
//	search:40.158,-83.075:dinner
//	search:st--louis--mo:barbecue   (no coordinates; label with non [a-z0-9] as "-")
package domain
