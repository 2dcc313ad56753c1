// README: Candidate and driver profile models for the locator.
package matching

import (
	"time"

	"gocab/internal/types"
)

// DriverProfile is the read-only view of driver_profiles this module needs.
// Online flag and position are mutated by the driver's own update path and
// read here without locking; matches are best-effort against a snapshot.
type DriverProfile struct {
	UserID            types.ID
	VehicleType       string
	Online            bool
	Position          *types.Point
	LocationUpdatedAt *time.Time
}

// GeoHit is one driver returned by the GEO radius query, distance in km.
type GeoHit struct {
	DriverID   types.ID
	DistanceKm float64
}

// Candidate is an eligible driver paired with its distance from the pickup.
type Candidate struct {
	Driver     DriverProfile
	DistanceKm float64
}

// DefaultRadiusKm bounds the candidate search when the caller passes no radius.
const DefaultRadiusKm = 5.0
