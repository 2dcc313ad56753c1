// README: Append-only ledger of (ride, driver) declines backed by PostgreSQL.
package rejection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gocab/internal/types"
)

// Ledger records declines and answers exclusion queries for the locator.
// A recorded pair permanently removes the driver from that ride's candidate
// lists; records are never updated or deleted.
type Ledger interface {
	Record(ctx context.Context, rideID, driverID types.ID) error
	Excludes(ctx context.Context, rideID, driverID types.ID) (bool, error)
	DriverIDsForRide(ctx context.Context, rideID types.ID) (map[types.ID]struct{}, error)
}

type PGLedger struct {
	db *pgxpool.Pool
}

func NewPGLedger(db *pgxpool.Pool) *PGLedger {
	return &PGLedger{db: db}
}

// Record is insert-or-ignore on the unique (ride_id, driver_id) pair, so a
// duplicate decline from the same driver is accepted without a second row.
func (l *PGLedger) Record(ctx context.Context, rideID, driverID types.ID) error {
	_, err := l.db.Exec(ctx, `
		INSERT INTO ride_rejections (id, ride_id, driver_id, rejected_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ride_id, driver_id) DO NOTHING`,
		uuid.NewString(), string(rideID), string(driverID), time.Now().UTC(),
	)
	return err
}

func (l *PGLedger) Excludes(ctx context.Context, rideID, driverID types.ID) (bool, error) {
	var exists bool
	err := l.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ride_rejections WHERE ride_id = $1 AND driver_id = $2
		)`, string(rideID), string(driverID),
	).Scan(&exists)
	return exists, err
}

func (l *PGLedger) DriverIDsForRide(ctx context.Context, rideID types.ID) (map[types.ID]struct{}, error) {
	rows, err := l.db.Query(ctx,
		`SELECT driver_id FROM ride_rejections WHERE ride_id = $1`, string(rideID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[types.ID]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[types.ID(id)] = struct{}{}
	}
	return ids, rows.Err()
}
