// README: Location service fans driver updates out to Postgres and the GEO index.
package location

import (
	"context"
	"log/slog"
	"time"

	"gocab/internal/types"
)

// CandidateIndex is the GEO index the locator searches; implemented by the
// matching store.
type CandidateIndex interface {
	AddCandidate(ctx context.Context, id types.ID, pos types.Point) error
	RemoveCandidate(ctx context.Context, id types.ID) error
}

type Service struct {
	store *Store
	index CandidateIndex
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store *Store, index CandidateIndex, log *slog.Logger) *Service {
	return &Service{store: store, index: index, log: log, now: time.Now}
}

// Update records a driver's position. The Postgres row is the source of truth;
// a failed GEO write only degrades matching freshness, so it is logged and
// swallowed.
func (s *Service) Update(ctx context.Context, u Update) error {
	now := s.now().UTC()
	if err := s.store.UpdatePosition(ctx, u.DriverID, u.Position, now); err != nil {
		return err
	}
	if err := s.index.AddCandidate(ctx, u.DriverID, u.Position); err != nil {
		s.log.Warn("geo index update failed", "driver_id", u.DriverID, "error", err)
	}
	if err := s.store.AppendSnapshot(ctx, Snapshot{DriverID: u.DriverID, Position: u.Position, RecordedAt: now}); err != nil {
		s.log.Warn("location snapshot append failed", "driver_id", u.DriverID, "error", err)
	}
	return nil
}

// SetAvailability flips the online flag and keeps the GEO index in sync so
// offline drivers drop out of radius queries immediately.
func (s *Service) SetAvailability(ctx context.Context, driverID types.ID, online bool) error {
	if err := s.store.SetOnline(ctx, driverID, online); err != nil {
		return err
	}
	if online {
		return nil
	}
	if err := s.index.RemoveCandidate(ctx, driverID); err != nil {
		s.log.Warn("geo index removal failed", "driver_id", driverID, "error", err)
	}
	return nil
}
