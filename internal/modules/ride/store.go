// README: Store contract for ride persistence; implemented by Postgres and by an in-memory fake in tests.
package ride

import (
	"context"
	"time"

	"gocab/internal/types"
)

type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)

	// AcceptPending atomically assigns the driver and moves a pending ride to
	// accepted. Exactly one concurrent caller wins; the rest observe a
	// non-pending status and get ErrConflict.
	AcceptPending(ctx context.Context, rideID, driverID types.ID, at time.Time) (*Ride, error)

	// StartRide moves accepted to in_progress, stamping started_at and the PIN
	// verification time. Returns false when the status guard did not hold.
	StartRide(ctx context.Context, rideID types.ID, at time.Time) (bool, error)

	// CompleteRide moves in_progress to completed, falls back to the estimated
	// fare when no final fare was computed, and increments the driver's
	// aggregate ride and earnings counters in the same transaction.
	CompleteRide(ctx context.Context, rideID, driverID types.ID, at time.Time) (*Ride, error)

	// CancelRide moves any non-terminal status to cancelled. Returns false when
	// the ride was already terminal.
	CancelRide(ctx context.Context, rideID types.ID, at time.Time) (bool, error)

	ListPending(ctx context.Context) ([]Ride, error)
	ActiveByDriver(ctx context.Context, driverID types.ID) (*Ride, error)
	HistoryByDriver(ctx context.Context, driverID types.ID) ([]Ride, error)

	// ActiveDriverIDs returns drivers currently tied to a ride with status
	// pending, accepted, or in_progress. Used to enforce one ride per driver.
	ActiveDriverIDs(ctx context.Context) (map[types.ID]struct{}, error)

	// RiderPin returns the rider's stored ride PIN, empty when none configured.
	RiderPin(ctx context.Context, riderID types.ID) (string, error)
}
