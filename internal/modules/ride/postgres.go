// README: Ride store backed by PostgreSQL.
package ride

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gocab/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const rideColumns = `
	id, rider_id, driver_id,
	pickup_latitude, pickup_longitude, pickup_address,
	dropoff_latitude, dropoff_longitude, dropoff_address,
	vehicle_type, estimated_distance_km, estimated_duration_min,
	fare_amount, final_fare_amount, currency, status,
	rider_pin_verified_at, started_at, completed_at, cancelled_at, created_at`

func (s *PGStore) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rides (
			id, rider_id,
			pickup_latitude, pickup_longitude, pickup_address,
			dropoff_latitude, dropoff_longitude, dropoff_address,
			vehicle_type, estimated_distance_km, estimated_duration_min,
			fare_amount, currency, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		string(r.ID), string(r.RiderID),
		r.Pickup.Lat, r.Pickup.Lng, r.PickupAddress,
		r.Dropoff.Lat, r.Dropoff.Lng, r.DropoffAddress,
		r.VehicleType, r.DistanceKm, r.DurationMin,
		r.Fare.Amount, r.Fare.Currency, string(r.Status), r.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	return scanRide(row)
}

func (s *PGStore) AcceptPending(ctx context.Context, rideID, driverID types.ID, at time.Time) (*Ride, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM rides WHERE id = $1 FOR UPDATE`, string(rideID),
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if Status(status) != StatusPending {
		return nil, ErrConflict
	}

	_, err = tx.Exec(ctx, `
		UPDATE rides
		SET driver_id = $1, status = $2, accepted_at = $3
		WHERE id = $4`,
		string(driverID), string(StatusAccepted), at, string(rideID),
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, rideID)
}

func (s *PGStore) StartRide(ctx context.Context, rideID types.ID, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1, started_at = $2,
		    rider_pin_entered_by_driver = TRUE, rider_pin_verified_at = $2
		WHERE id = $3 AND status = $4`,
		string(StatusInProgress), at, string(rideID), string(StatusAccepted),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) CompleteRide(ctx context.Context, rideID, driverID types.ID, at time.Time) (*Ride, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET status = $1, completed_at = $2,
		    final_fare_amount = COALESCE(final_fare_amount, fare_amount)
		WHERE id = $3 AND status = $4 AND driver_id = $5`,
		string(StatusCompleted), at, string(rideID), string(StatusInProgress), string(driverID),
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, ErrConflict
	}

	_, err = tx.Exec(ctx, `
		UPDATE driver_profiles
		SET total_rides = total_rides + 1,
		    earnings_total = earnings_total + (
		        SELECT final_fare_amount FROM rides WHERE id = $1
		    )
		WHERE user_id = $2`,
		string(rideID), string(driverID),
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, rideID)
}

func (s *PGStore) CancelRide(ctx context.Context, rideID types.ID, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1, cancelled_at = $2
		WHERE id = $3 AND status IN ($4, $5, $6)`,
		string(StatusCancelled), at, string(rideID),
		string(StatusPending), string(StatusAccepted), string(StatusInProgress),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) ListPending(ctx context.Context) ([]Ride, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE status = $1 ORDER BY created_at DESC`,
		string(StatusPending),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (s *PGStore) ActiveByDriver(ctx context.Context, driverID types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE driver_id = $1 AND status IN ($2, $3)
		LIMIT 1`,
		string(driverID), string(StatusAccepted), string(StatusInProgress),
	)
	r, err := scanRide(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return r, err
}

func (s *PGStore) HistoryByDriver(ctx context.Context, driverID types.ID) ([]Ride, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC`,
		string(driverID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (s *PGStore) ActiveDriverIDs(ctx context.Context) (map[types.ID]struct{}, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT driver_id FROM rides
		WHERE driver_id IS NOT NULL AND status IN ($1, $2, $3)`,
		string(StatusPending), string(StatusAccepted), string(StatusInProgress),
	)
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

func (s *PGStore) RiderPin(ctx context.Context, riderID types.ID) (string, error) {
	var pin sql.NullString
	err := s.db.QueryRow(ctx,
		`SELECT ride_pin FROM users WHERE id = $1`, string(riderID),
	).Scan(&pin)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return pin.String, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*Ride, error) {
	var r Ride
	var driverID sql.NullString
	var finalFare sql.NullInt64
	var pinVerifiedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&r.ID, &r.RiderID, &driverID,
		&r.Pickup.Lat, &r.Pickup.Lng, &r.PickupAddress,
		&r.Dropoff.Lat, &r.Dropoff.Lng, &r.DropoffAddress,
		&r.VehicleType, &r.DistanceKm, &r.DurationMin,
		&r.Fare.Amount, &finalFare, &r.Fare.Currency, &r.Status,
		&pinVerifiedAt, &startedAt, &completedAt, &cancelledAt, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan ride: %w", err)
	}

	if driverID.Valid {
		d := types.ID(driverID.String)
		r.DriverID = &d
	}
	if finalFare.Valid {
		r.FinalFare = &types.Money{Amount: finalFare.Int64, Currency: r.Fare.Currency}
	}
	r.PinVerifiedAt = toTimePtr(pinVerifiedAt)
	r.StartedAt = toTimePtr(startedAt)
	r.CompletedAt = toTimePtr(completedAt)
	r.CancelledAt = toTimePtr(cancelledAt)
	return &r, nil
}

func collectRides(rows pgx.Rows) ([]Ride, error) {
	var out []Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
