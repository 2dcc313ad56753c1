// README: Location store; live position on driver_profiles plus an append-only history table.
package location

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gocab/internal/types"
)

var ErrDriverNotFound = errors.New("driver not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) UpdatePosition(ctx context.Context, id types.ID, pos types.Point, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE driver_profiles
		SET current_latitude = $1, current_longitude = $2, location_updated_at = $3
		WHERE user_id = $4`,
		pos.Lat, pos.Lng, at, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDriverNotFound
	}
	return nil
}

func (s *Store) SetOnline(ctx context.Context, id types.ID, online bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE driver_profiles SET is_online = $1 WHERE user_id = $2`,
		online, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDriverNotFound
	}
	return nil
}

func (s *Store) AppendSnapshot(ctx context.Context, snap Snapshot) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO driver_location_history (id, driver_id, latitude, longitude, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), string(snap.DriverID), snap.Position.Lat, snap.Position.Lng, snap.RecordedAt,
	)
	return err
}

// Exists satisfies the ride module's driver directory.
func (s *Store) Exists(ctx context.Context, driverID types.ID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM driver_profiles WHERE user_id = $1)`, string(driverID),
	).Scan(&exists)
	return exists, err
}
