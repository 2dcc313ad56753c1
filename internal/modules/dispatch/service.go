// README: Dispatch coordinator; offers each pending ride to the closest eligible driver, one at a time.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gocab/internal/config"
	"gocab/internal/modules/matching"
	"gocab/internal/modules/ride"
	"gocab/internal/observability"
	"gocab/internal/types"
)

// Locator finds eligible drivers ordered by distance from pickup.
type Locator interface {
	FindEligibleDrivers(ctx context.Context, pickup types.Point, radiusKm float64, vehicleType string, rideID types.ID) ([]matching.Candidate, error)
}

// Rides is the slice of the ride service the coordinator drives.
type Rides interface {
	Get(ctx context.Context, id types.ID) (*ride.Ride, error)
	Accept(ctx context.Context, rideID, driverID types.ID) (*ride.Ride, error)
	Start(ctx context.Context, rideID, driverID types.ID, pin string) (*ride.Ride, error)
	Complete(ctx context.Context, rideID, driverID types.ID) (*ride.Ride, error)
	Cancel(ctx context.Context, rideID types.ID) (*ride.Ride, error)
	ListPending(ctx context.Context) ([]ride.Ride, error)
}

// Ledger records driver declines; duplicates are absorbed silently.
type Ledger interface {
	Record(ctx context.Context, rideID, driverID types.ID) error
}

// Drivers resolves driver identities for decline validation.
type Drivers interface {
	Exists(ctx context.Context, driverID types.ID) (bool, error)
}

// Notifier is the outbound notification port. Both calls are best-effort:
// the coordinator never blocks ride state on their outcome.
type Notifier interface {
	NotifyDriver(ctx context.Context, driverID types.ID, r *ride.Ride, distanceKm float64) error
	NotifyRider(ctx context.Context, riderID types.ID, kind string, r *ride.Ride) error
}

// Tracker remembers when a ride was last offered, for the timeout monitor.
type Tracker interface {
	RecordDispatch(ctx context.Context, rideID types.ID) error
	LastDispatch(ctx context.Context, rideID types.ID) (time.Time, bool, error)
}

type Coordinator struct {
	rides    Rides
	locator  Locator
	ledger   Ledger
	drivers  Drivers
	notifier Notifier
	tracker  Tracker
	cfg      config.DispatchConfig
	log      *slog.Logger

	// background runs fire-and-forget work; tests swap it for a synchronous
	// version to avoid sleeping.
	background func(func())
}

func NewCoordinator(rides Rides, locator Locator, ledger Ledger, drivers Drivers, notifier Notifier, tracker Tracker, cfg config.DispatchConfig, log *slog.Logger) *Coordinator {
	return &Coordinator{
		rides:      rides,
		locator:    locator,
		ledger:     ledger,
		drivers:    drivers,
		notifier:   notifier,
		tracker:    tracker,
		cfg:        cfg,
		log:        log,
		background: func(fn func()) { go fn() },
	}
}

// NotifyNextDriver runs one dispatch cycle: offer the ride to the single
// closest eligible driver. A ride that is no longer pending is a no-op, and
// an empty candidate list leaves the ride searching; neither is an error.
func (c *Coordinator) NotifyNextDriver(ctx context.Context, rideID types.ID) (*matching.Candidate, error) {
	r, err := c.rides.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status != ride.StatusPending {
		c.log.Debug("ride no longer pending, skipping dispatch", "ride_id", rideID, "status", r.Status)
		return nil, nil
	}

	observability.DispatchCycles.Inc()
	candidates, err := c.locator.FindEligibleDrivers(ctx, r.Pickup, c.cfg.RadiusKm, r.VehicleType, rideID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		observability.NoCandidateTotal.Inc()
		c.log.Info("no eligible driver found, ride keeps searching", "ride_id", rideID)
		return nil, nil
	}

	best := candidates[0]
	if c.tracker != nil {
		if err := c.tracker.RecordDispatch(ctx, rideID); err != nil {
			c.log.Warn("record dispatch failed", "ride_id", rideID, "error", err)
		}
	}

	// The offer must not hold up the caller; delivery failure never touches
	// ride state.
	c.background(func() {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.notifier.NotifyDriver(nctx, best.Driver.UserID, r, best.DistanceKm); err != nil {
			observability.NotifyFailures.Inc()
			c.log.Warn("driver offer delivery failed", "ride_id", rideID, "driver_id", best.Driver.UserID, "error", err)
		}
	})
	observability.OffersSent.Inc()
	c.log.Info("offered ride to driver",
		"ride_id", rideID, "driver_id", best.Driver.UserID, "distance_km", best.DistanceKm)
	return &best, nil
}

// Decline records the driver's rejection and re-dispatches in the background
// so the declining driver gets an immediate acknowledgment. A repeat decline
// from the same driver is accepted without effect.
func (c *Coordinator) Decline(ctx context.Context, rideID, driverID types.ID) error {
	if _, err := c.rides.Get(ctx, rideID); err != nil {
		return err
	}
	ok, err := c.drivers.Exists(ctx, driverID)
	if err != nil {
		return err
	}
	if !ok {
		return ride.ErrDriverNotFound
	}
	if err := c.ledger.Record(ctx, rideID, driverID); err != nil {
		return err
	}
	observability.DeclinesTotal.Inc()

	c.background(func() {
		dctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := c.NotifyNextDriver(dctx, rideID); err != nil {
			c.log.Error("re-dispatch after decline failed", "ride_id", rideID, "error", err)
		}
	})
	return nil
}

// Accept delegates to the transactional state machine; the rider is told
// about the match asynchronously.
func (c *Coordinator) Accept(ctx context.Context, rideID, driverID types.ID) (*ride.Ride, error) {
	r, err := c.rides.Accept(ctx, rideID, driverID)
	if err != nil {
		if errors.Is(err, ride.ErrConflict) {
			observability.AcceptConflicts.Inc()
		}
		return nil, err
	}
	c.notifyRider(r, "ride_accepted")
	return r, nil
}

func (c *Coordinator) Start(ctx context.Context, rideID, driverID types.ID, pin string) (*ride.Ride, error) {
	r, err := c.rides.Start(ctx, rideID, driverID, pin)
	if err != nil {
		return nil, err
	}
	c.notifyRider(r, "ride_started")
	return r, nil
}

func (c *Coordinator) Complete(ctx context.Context, rideID, driverID types.ID) (*ride.Ride, error) {
	r, err := c.rides.Complete(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}
	c.notifyRider(r, "ride_completed")
	return r, nil
}

func (c *Coordinator) Cancel(ctx context.Context, rideID types.ID) (*ride.Ride, error) {
	r, err := c.rides.Cancel(ctx, rideID)
	if err != nil {
		return nil, err
	}
	c.notifyRider(r, "ride_cancelled")
	return r, nil
}

// HandleRideCreated kicks off the first dispatch cycle for a new ride; wired
// to the ride.created queue.
func (c *Coordinator) HandleRideCreated(ctx context.Context, rideID types.ID) {
	if _, err := c.NotifyNextDriver(ctx, rideID); err != nil {
		c.log.Error("initial dispatch failed", "ride_id", rideID, "error", err)
	}
}

// RunOfferTimeoutMonitor re-dispatches rides still pending after the offer
// timeout, so a driver who never answers cannot park a ride forever.
func (c *Coordinator) RunOfferTimeoutMonitor(ctx context.Context) {
	if c.cfg.OfferTimeout <= 0 || c.tracker == nil {
		return
	}
	ticker := time.NewTicker(c.cfg.OfferTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweepPending(ctx)
		}
	}
}

func (c *Coordinator) sweepPending(ctx context.Context) {
	pending, err := c.rides.ListPending(ctx)
	if err != nil {
		c.log.Error("pending sweep failed", "error", err)
		return
	}
	now := time.Now().UTC()
	for _, r := range pending {
		last, dispatched, err := c.tracker.LastDispatch(ctx, r.ID)
		if err != nil {
			c.log.Warn("last dispatch lookup failed", "ride_id", r.ID, "error", err)
			continue
		}
		if dispatched && now.Sub(last) < c.cfg.OfferTimeout {
			continue
		}
		if !dispatched && now.Sub(r.CreatedAt) < c.cfg.OfferTimeout {
			continue
		}
		if _, err := c.NotifyNextDriver(ctx, r.ID); err != nil {
			c.log.Error("timeout re-dispatch failed", "ride_id", r.ID, "error", err)
		}
	}
}

func (c *Coordinator) notifyRider(r *ride.Ride, kind string) {
	rideCopy := *r
	c.background(func() {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.notifier.NotifyRider(nctx, rideCopy.RiderID, kind, &rideCopy); err != nil {
			observability.NotifyFailures.Inc()
			c.log.Warn("rider notification failed", "ride_id", rideCopy.ID, "kind", kind, "error", err)
		}
	})
}
