// README: Matching store backed by Redis GEO for positions and Postgres for driver profiles.
package matching

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"gocab/internal/types"
)

const (
	driverGeoKey      = "matching:drivers"
	dispatchKeyPrefix = "matching:ride:%s:dispatched_at"
	// TTL for dispatch markers (rides resolve well within a day).
	dispatchKeyTTL = 24 * time.Hour
)

type Store struct {
	redis *redis.Client
	db    *pgxpool.Pool
}

func NewStore(redisClient *redis.Client, db *pgxpool.Pool) *Store {
	return &Store{redis: redisClient, db: db}
}

// AddCandidate registers or refreshes a driver position in the GEO index.
func (s *Store) AddCandidate(ctx context.Context, id types.ID, pos types.Point) error {
	return s.redis.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

// RemoveCandidate drops a driver from the GEO index (went offline).
func (s *Store) RemoveCandidate(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, driverGeoKey, string(id)).Err()
}

// NearbyDrivers returns drivers within radiusKm of p, closest first.
func (s *Store) NearbyDrivers(ctx context.Context, p types.Point, radiusKm float64) ([]GeoHit, error) {
	results, err := s.redis.GeoSearchLocation(ctx, driverGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, err
	}
	hits := make([]GeoHit, len(results))
	for i, r := range results {
		hits[i] = GeoHit{DriverID: types.ID(r.Name), DistanceKm: r.Dist}
	}
	return hits, nil
}

// ProfilesByIDs loads driver_profiles rows for the given drivers.
func (s *Store) ProfilesByIDs(ctx context.Context, ids []types.ID) (map[types.ID]DriverProfile, error) {
	profiles := make(map[types.ID]DriverProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	rows, err := s.db.Query(ctx, `
		SELECT user_id, vehicle_type, is_online,
		       current_latitude, current_longitude, location_updated_at
		FROM driver_profiles
		WHERE user_id = ANY($1)`, raw)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p DriverProfile
		var lat, lng sql.NullFloat64
		var updatedAt sql.NullTime
		if err := rows.Scan(&p.UserID, &p.VehicleType, &p.Online, &lat, &lng, &updatedAt); err != nil {
			return nil, err
		}
		if lat.Valid && lng.Valid {
			p.Position = &types.Point{Lat: lat.Float64, Lng: lng.Float64}
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			p.LocationUpdatedAt = &t
		}
		profiles[p.UserID] = p
	}
	return profiles, rows.Err()
}

// RecordDispatch marks when a ride was last offered to a driver; the offer
// timeout monitor uses it to decide when to re-dispatch.
func (s *Store) RecordDispatch(ctx context.Context, rideID types.ID) error {
	return s.redis.Set(ctx, dispatchKey(rideID),
		time.Now().UTC().Format(time.RFC3339), dispatchKeyTTL).Err()
}

// LastDispatch returns when the ride was last offered, and whether it ever was.
func (s *Store) LastDispatch(ctx context.Context, rideID types.ID) (time.Time, bool, error) {
	val, err := s.redis.Get(ctx, dispatchKey(rideID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func dispatchKey(rideID types.ID) string {
	return fmt.Sprintf(dispatchKeyPrefix, string(rideID))
}
