package domain

import "github.com/couchcryptid/spin-location-service/internal/geo"

var (
	columbus = geo.NewCoordinate(39.9612, -82.9988)
	powellOH = geo.NewCoordinate(40.1581, -83.0752)
	powellWY = geo.NewCoordinate(44.7541, -108.7573)
)

func component(long, short string, types ...string) AddressComponent {
	return AddressComponent{LongName: long, ShortName: short, Types: types}
}

func cityCandidate(city, county, stateLong, stateShort string, at geo.Coordinate) GeocodeCandidate {
	loc := at
	return GeocodeCandidate{
		Location: &loc,
		AddressComponents: []AddressComponent{
			component(city, city, TypeLocality, "political"),
			component(county, county, TypeCounty, "political"),
			component(stateLong, stateShort, TypeState, "political"),
			component("United States", "US", "country", "political"),
		},
		FormattedAddress: city + ", " + stateShort + ", USA",
	}
}

func powellOhio() GeocodeCandidate {
	return cityCandidate("Powell", "Delaware County", "Ohio", "OH", powellOH)
}

func powellWyoming() GeocodeCandidate {
	return cityCandidate("Powell", "Park County", "Wyoming", "WY", powellWY)
}
