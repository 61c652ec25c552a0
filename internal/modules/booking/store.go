// README: Booking store backed by PostgreSQL (append on confirm, list/detail reads).
package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"yahu/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, code, pickup, destination, pickup_time,
			car_type, audio_pref, reciter,
			distance_km, estimated_fare, currency, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12
		)`,
		string(b.ID),
		b.Code,
		b.Pickup,
		b.Destination,
		b.PickupTime,
		b.CarType,
		b.AudioPref,
		nullIfEmpty(b.Reciter),
		b.DistanceKm,
		b.EstimatedFare.Amount,
		b.EstimatedFare.Currency,
		b.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, code, pickup, destination, pickup_time,
		       car_type, audio_pref, reciter,
		       distance_km, estimated_fare, currency, created_at
		FROM bookings
		WHERE id = $1`, string(id),
	)
	return scanBooking(row)
}

func (s *Store) List(ctx context.Context, limit int) ([]*Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, code, pickup, destination, pickup_time,
		       car_type, audio_pref, reciter,
		       distance_km, estimated_fare, currency, created_at
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var reciter sql.NullString
	err := row.Scan(
		&b.ID, &b.Code, &b.Pickup, &b.Destination, &b.PickupTime,
		&b.CarType, &b.AudioPref, &reciter,
		&b.DistanceKm, &b.EstimatedFare.Amount, &b.EstimatedFare.Currency, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reciter.Valid {
		b.Reciter = reciter.String
	}
	return &b, nil
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
