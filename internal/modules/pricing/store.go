// README: Rate table loader backed by PostgreSQL.
package pricing

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) LoadRates(ctx context.Context) (map[string]Rate, error) {
	rows, err := s.db.Query(ctx,
		`SELECT vehicle_type, base_fare, per_km, per_min, currency FROM fare_rates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := make(map[string]Rate)
	for rows.Next() {
		var r Rate
		if err := rows.Scan(&r.VehicleType, &r.BaseFare, &r.PerKm, &r.PerMin, &r.Currency); err != nil {
			return nil, err
		}
		rates[r.VehicleType] = r
	}
	return rates, rows.Err()
}
