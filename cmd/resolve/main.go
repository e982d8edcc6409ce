// Command resolve resolves a single location query and prints the result
// with its search key. Configuration is read the same way as the service.
//
// Usage:
//
//	go run ./cmd/resolve -q Powell -lat 39.96 -lng -83.00 -term dinner
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/spin-location-service/internal/adapter/cache"
	"github.com/couchcryptid/spin-location-service/internal/adapter/google"
	"github.com/couchcryptid/spin-location-service/internal/config"
	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/couchcryptid/spin-location-service/internal/geo"
	"github.com/couchcryptid/spin-location-service/internal/observability"
	"github.com/couchcryptid/spin-location-service/internal/resolver"
)

type output struct {
	Resolved  domain.ResolvedLocation `json:"resolved"`
	SearchKey string                  `json:"search_key"`
}

func main() {
	query := flag.String("q", "", "location to resolve; empty resolves the device location")
	lat := flag.String("lat", "", "device latitude")
	lng := flag.String("lng", "", "device longitude")
	term := flag.String("term", "", "business search term for the search key")
	flag.Parse()

	if err := run(*query, *lat, *lng, *term); err != nil {
		fmt.Fprintln(os.Stderr, "resolve:", err)
		os.Exit(1)
	}
}

func run(query, lat, lng, term string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := google.NewClient(cfg.GoogleAPIKey, cfg.GoogleGeocodeURL, cfg.GoogleTimeout, cfg.GoogleRPS, metrics, logger)
	if err := client.CheckReadiness(context.Background()); err != nil {
		return err
	}
	store := cache.NewStore(cfg.ResolveCacheSize, cfg.ResolveCacheTTL, clockwork.NewRealClock())

	res := resolver.New(cache.NewCachedGeocoder(client, store, logger), store, nil, resolver.Options{
		Country: cfg.GeocodeCountry,
		State:   cfg.GeocodeState,
		KmBias:  cfg.GeocodeKmBias,
	}, metrics, logger)

	if lat != "" || lng != "" {
		device, err := parseDevice(lat, lng)
		if err != nil {
			return err
		}
		res.SetDeviceLocation(device)
	}

	resolved := res.Resolve(context.Background(), query)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output{Resolved: resolved, SearchKey: domain.BuildSearchKey(resolved, term)})
}

func parseDevice(lat, lng string) (geo.Coordinate, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid -lat %q", lat)
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid -lng %q", lng)
	}
	c := geo.NewCoordinate(la, ln)
	if !c.Valid() {
		return geo.Coordinate{}, fmt.Errorf("device location %s,%s out of range", lat, lng)
	}
	return c, nil
}
