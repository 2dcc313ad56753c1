// README: Ride service implements guarded state transitions and persistence.
package ride

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gocab/internal/types"
)

var (
	ErrNotFound       = errors.New("ride not found")
	ErrDriverNotFound = errors.New("driver not found")
	ErrConflict       = errors.New("ride state conflict")
	ErrPinMismatch    = errors.New("invalid ride pin")
	ErrBadRequest     = errors.New("bad request")
)

// Pricing estimates a fare for a trip of the given length in a vehicle class.
type Pricing interface {
	Estimate(ctx context.Context, distanceKm float64, durationMin int, vehicleType string) (types.Money, error)
}

// RouteEstimator predicts driving distance and duration between two points.
type RouteEstimator interface {
	Estimate(ctx context.Context, from, to types.Point) (distanceKm float64, durationMin int, err error)
}

// DriverDirectory resolves driver identities; backed by driver_profiles.
type DriverDirectory interface {
	Exists(ctx context.Context, driverID types.ID) (bool, error)
}

type Service struct {
	store   Store
	pricing Pricing
	routes  RouteEstimator
	drivers DriverDirectory
	log     *slog.Logger
	now     func() time.Time
}

func NewService(store Store, pricing Pricing, routes RouteEstimator, drivers DriverDirectory, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		pricing: pricing,
		routes:  routes,
		drivers: drivers,
		log:     log,
		now:     time.Now,
	}
}

type CreateCommand struct {
	RiderID        types.ID
	Pickup         types.Point
	PickupAddress  string
	Dropoff        types.Point
	DropoffAddress string
	VehicleType    string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Ride, error) {
	if cmd.RiderID == "" || cmd.VehicleType == "" {
		return nil, ErrBadRequest
	}

	distanceKm, durationMin := 0.0, 0
	if s.routes != nil {
		d, m, err := s.routes.Estimate(ctx, cmd.Pickup, cmd.Dropoff)
		if err != nil {
			s.log.Warn("route estimate failed", "error", err)
		} else {
			distanceKm, durationMin = d, m
		}
	}

	fare := types.Money{Currency: "INR"}
	if s.pricing != nil {
		if m, err := s.pricing.Estimate(ctx, distanceKm, durationMin, cmd.VehicleType); err == nil {
			fare = m
		} else {
			s.log.Warn("fare estimate failed", "error", err)
		}
	}

	r := &Ride{
		ID:             types.ID(uuid.NewString()),
		RiderID:        cmd.RiderID,
		Pickup:         cmd.Pickup,
		PickupAddress:  cmd.PickupAddress,
		Dropoff:        cmd.Dropoff,
		DropoffAddress: cmd.DropoffAddress,
		VehicleType:    strings.ToLower(cmd.VehicleType),
		DistanceKm:     distanceKm,
		DurationMin:    durationMin,
		Fare:           fare,
		Status:         StatusPending,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Accept assigns the driver to a pending ride. The store runs the transition
// as a single transaction with a write lock on the row, so of any number of
// concurrent callers exactly one wins; the rest get ErrConflict.
func (s *Service) Accept(ctx context.Context, rideID, driverID types.ID) (*Ride, error) {
	ok, err := s.drivers.Exists(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDriverNotFound
	}
	return s.store.AcceptPending(ctx, rideID, driverID, s.now().UTC())
}

// Start moves an accepted ride to in_progress after the PIN gate. The PIN
// comparison trims both sides; a rider with no PIN configured passes the gate
// (logged). A mismatch fails without echoing either value.
func (s *Service) Start(ctx context.Context, rideID, driverID types.ID, pin string) (*Ride, error) {
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusAccepted {
		return nil, ErrConflict
	}
	if r.DriverID == nil || *r.DriverID != driverID {
		return nil, ErrConflict
	}

	expected, err := s.store.RiderPin(ctx, r.RiderID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	expected = strings.TrimSpace(expected)
	if expected == "" {
		s.log.Warn("rider has no pin configured, starting without verification",
			"ride_id", r.ID, "rider_id", r.RiderID)
	} else if expected != strings.TrimSpace(pin) {
		return nil, ErrPinMismatch
	}

	ok, err := s.store.StartRide(ctx, rideID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.store.Get(ctx, rideID)
}

// Complete moves an in_progress ride to completed. The store finalizes the
// fare (estimated fare stands in when no final fare was computed) and bumps
// the driver's aggregate counters in the same transaction.
func (s *Service) Complete(ctx context.Context, rideID, driverID types.ID) (*Ride, error) {
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusInProgress {
		return nil, ErrConflict
	}
	if r.DriverID == nil || *r.DriverID != driverID {
		return nil, ErrConflict
	}
	return s.store.CompleteRide(ctx, rideID, driverID, s.now().UTC())
}

// Cancel moves any non-terminal ride to cancelled. Cancelling an already
// cancelled ride is a no-op, not an error.
func (s *Service) Cancel(ctx context.Context, rideID types.ID) (*Ride, error) {
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status == StatusCancelled {
		return r, nil
	}
	ok, err := s.store.CancelRide(ctx, rideID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another transition; only an already-cancelled
		// outcome keeps this idempotent.
		r, err = s.store.Get(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if r.Status != StatusCancelled {
			return nil, ErrConflict
		}
	}
	return s.store.Get(ctx, rideID)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListPending(ctx context.Context) ([]Ride, error) {
	return s.store.ListPending(ctx)
}

func (s *Service) CurrentForDriver(ctx context.Context, driverID types.ID) (*Ride, error) {
	return s.store.ActiveByDriver(ctx, driverID)
}

func (s *Service) HistoryForDriver(ctx context.Context, driverID types.ID) ([]Ride, error) {
	return s.store.HistoryByDriver(ctx, driverID)
}
