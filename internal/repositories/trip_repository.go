package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "busbooking/internal/db"
	"busbooking/internal/domain/models"
)

// TripRepository owns trips and their per-seat rows in trip_seats.
type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) CreateTrip(ctx context.Context, trip *models.Trip, seats []models.TripSeat) error {
	return intdb.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO trips (route_number, bus_number, trip_date, departure_time, arrival_time, total_seats, price, status, created_at)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			trip.RouteNumber, trip.BusNumber, trip.Date, trip.DepartureTime, trip.ArrivalTime,
			trip.SeatAvailability.TotalSeats, trip.Price, string(trip.Status), trip.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert trip: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("trip id: %w", err)
		}
		trip.ID = id

		if len(seats) == 0 {
			return nil
		}
		placeholders := make([]string, 0, len(seats))
		args := make([]any, 0, len(seats)*3)
		for _, s := range seats {
			placeholders = append(placeholders, "(?,?,?)")
			args = append(args, id, s.SeatNumber, string(s.Category))
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trip_seats (trip_id, seat_number, category) VALUES `+strings.Join(placeholders, ","),
			args...); err != nil {
			return fmt.Errorf("insert seats: %w", err)
		}
		return nil
	})
}

// GetTrip loads the trip row without seat projection.
func (r TripRepository) GetTrip(ctx context.Context, id int64) (models.Trip, error) {
	var (
		t      models.Trip
		status string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, route_number, bus_number, trip_date, departure_time, arrival_time, total_seats, price, status, created_at
		FROM trips WHERE id=? LIMIT 1`, id).Scan(
		&t.ID, &t.RouteNumber, &t.BusNumber, &t.Date, &t.DepartureTime, &t.ArrivalTime,
		&t.SeatAvailability.TotalSeats, &t.Price, &status, &t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, ErrNotFound
	}
	if err != nil {
		return models.Trip{}, err
	}
	t.Status = models.TripStatus(status)
	return t, nil
}

func (r TripRepository) ListSeats(ctx context.Context, tripID int64) ([]models.TripSeat, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT seat_number, category, held_at
		FROM trip_seats WHERE trip_id=? ORDER BY seat_number ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TripSeat{}
	for rows.Next() {
		var (
			s      = models.TripSeat{TripID: tripID}
			cat    string
			heldAt sql.NullTime
		)
		if err := rows.Scan(&s.SeatNumber, &cat, &heldAt); err != nil {
			return out, err
		}
		s.Category = models.SeatCategory(cat)
		if heldAt.Valid {
			ts := heldAt.Time
			s.HeldAt = &ts
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TransitionSeat moves one seat to `to` only if it currently sits in one of
// `from`. It reports false when no row matched, leaving the seat untouched.
func (r TripRepository) TransitionSeat(ctx context.Context, tripID int64, seat int, from []models.SeatCategory, to models.SeatCategory, at time.Time) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	var heldAt any
	if to == models.SeatBookingInProgress {
		heldAt = at
	}
	args := []any{string(to), heldAt, tripID, seat}
	marks := make([]string, len(from))
	for i, c := range from {
		marks[i] = "?"
		args = append(args, string(c))
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE trip_seats SET category=?, held_at=?
		WHERE trip_id=? AND seat_number=? AND category IN (`+strings.Join(marks, ",")+`)`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseStaleHolds frees every in-progress seat held before cutoff.
func (r TripRepository) ReleaseStaleHolds(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE trip_seats SET category=?, held_at=NULL
		WHERE category=? AND held_at IS NOT NULL AND held_at < ?`,
		string(models.SeatAvailable), string(models.SeatBookingInProgress), cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r TripRepository) UpdateTripStatus(ctx context.Context, id int64, from, to models.TripStatus) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE trips SET status=? WHERE id=? AND status=?`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
