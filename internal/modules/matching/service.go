// README: Locator service resolves eligible drivers for a ride's pickup point.
package matching

import (
	"context"
	"log/slog"
	"time"

	"gocab/internal/config"
	"gocab/internal/types"
)

// ActiveRides reports drivers currently tied to an unresolved ride.
type ActiveRides interface {
	ActiveDriverIDs(ctx context.Context) (map[types.ID]struct{}, error)
}

// RejectionLedger answers which drivers already declined a ride.
type RejectionLedger interface {
	DriverIDsForRide(ctx context.Context, rideID types.ID) (map[types.ID]struct{}, error)
}

type Service struct {
	store  *Store
	rides  ActiveRides
	ledger RejectionLedger
	cfg    config.DispatchConfig
	log    *slog.Logger
	now    func() time.Time
}

func NewService(store *Store, rides ActiveRides, ledger RejectionLedger, cfg config.DispatchConfig, log *slog.Logger) *Service {
	return &Service{store: store, rides: rides, ledger: ledger, cfg: cfg, log: log, now: time.Now}
}

// FindEligibleDrivers returns drivers able to serve the ride, ordered by
// ascending distance from the pickup. An empty result is not an error; it
// means the ride keeps searching.
func (s *Service) FindEligibleDrivers(ctx context.Context, pickup types.Point, radiusKm float64, vehicleType string, rideID types.ID) ([]Candidate, error) {
	if radiusKm <= 0 {
		radiusKm = s.cfg.RadiusKm
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	hits, err := s.store.NearbyDrivers(ctx, pickup, radiusKm)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]types.ID, len(hits))
	for i, h := range hits {
		ids[i] = h.DriverID
	}
	profiles, err := s.store.ProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	rejected, err := s.ledger.DriverIDsForRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	active, err := s.rides.ActiveDriverIDs(ctx)
	if err != nil {
		return nil, err
	}

	return Rank(hits, profiles, RankOptions{
		RadiusKm:       radiusKm,
		VehicleType:    vehicleType,
		Rejected:       rejected,
		Active:         active,
		MaxLocationAge: s.cfg.MaxLocationAge,
		Now:            s.now().UTC(),
	}), nil
}
