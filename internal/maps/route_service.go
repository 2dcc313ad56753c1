package maps

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"

	"gocab/internal/geo"
	"gocab/internal/types"
)

// RouteService estimates driving distance and duration via the Google Maps
// Directions API, falling back to a haversine/average-speed estimate when no
// client is configured or the API call fails.
type RouteService struct {
	client *maps.Client
	log    *slog.Logger
}

// fallbackSpeedKmh approximates urban driving speed for the offline estimate.
const fallbackSpeedKmh = 30.0

func NewRouteService(apiKey string, log *slog.Logger) (*RouteService, error) {
	if apiKey == "" {
		return &RouteService{log: log}, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &RouteService{client: client, log: log}, nil
}

func (s *RouteService) Estimate(ctx context.Context, from, to types.Point) (float64, int, error) {
	if s.client == nil {
		return s.fallback(from, to)
	}

	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", from.Lat, from.Lng),
		Destination: fmt.Sprintf("%f,%f", to.Lat, to.Lng),
		Mode:        maps.TravelModeDriving,
	}
	routes, _, err := s.client.Directions(ctx, r)
	if err != nil || len(routes) == 0 || len(routes[0].Legs) == 0 {
		if err != nil {
			s.log.Warn("directions request failed, using haversine estimate", "error", err)
		}
		return s.fallback(from, to)
	}

	leg := routes[0].Legs[0]
	return float64(leg.Distance.Meters) / 1000.0, int(leg.Duration / time.Minute), nil
}

func (s *RouteService) fallback(from, to types.Point) (float64, int, error) {
	km := geo.HaversineKm(from.Lat, from.Lng, to.Lat, to.Lng)
	minutes := int(km / fallbackSpeedKmh * 60)
	return km, minutes, nil
}
