// README: Pure candidate filtering and ordering; no I/O so the rules are unit-testable.
package matching

import (
	"sort"
	"strings"
	"time"

	"gocab/internal/types"
)

// RouteClasses maps a ride's requested vehicle class to the driver vehicle
// classes allowed to serve it. Unknown classes fall back to exact match.
func RouteClasses(requested string) []string {
	switch strings.ToLower(requested) {
	case "parcel", "bike":
		return []string{"bike"}
	case "auto":
		return []string{"auto"}
	case "car", "cab", "premium":
		return []string{"car", "premium"}
	default:
		return []string{strings.ToLower(requested)}
	}
}

type RankOptions struct {
	RadiusKm    float64
	VehicleType string
	// Rejected drivers are permanently excluded for this ride.
	Rejected map[types.ID]struct{}
	// Active drivers are already tied to another unresolved ride.
	Active map[types.ID]struct{}
	// MaxLocationAge drops candidates whose last location update is older;
	// zero disables the check.
	MaxLocationAge time.Duration
	Now            time.Time
}

// Rank applies every eligibility filter and returns candidates ordered by
// ascending distance, ties broken by driver id so the result is reproducible.
func Rank(hits []GeoHit, profiles map[types.ID]DriverProfile, opts RankOptions) []Candidate {
	radius := opts.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	allowed := make(map[string]struct{})
	for _, c := range RouteClasses(opts.VehicleType) {
		allowed[c] = struct{}{}
	}

	out := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		if hit.DistanceKm > radius {
			continue
		}
		p, ok := profiles[hit.DriverID]
		if !ok || !p.Online || p.Position == nil {
			continue
		}
		if _, ok := allowed[strings.ToLower(p.VehicleType)]; !ok {
			continue
		}
		if _, ok := opts.Rejected[p.UserID]; ok {
			continue
		}
		if _, ok := opts.Active[p.UserID]; ok {
			continue
		}
		if opts.MaxLocationAge > 0 {
			if p.LocationUpdatedAt == nil || opts.Now.Sub(*p.LocationUpdatedAt) > opts.MaxLocationAge {
				continue
			}
		}
		out = append(out, Candidate{Driver: p, DistanceKm: hit.DistanceKm})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].Driver.UserID < out[j].Driver.UserID
	})
	return out
}
