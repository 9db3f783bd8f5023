package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"busbooking/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

const bookingColumns = `id, user_id, trip_id, bus_number, passenger_name, mobile_number, email, seat_number,
	boarding_place, destination_place, total_price, status, booking_token, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b      models.Booking
		status string
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.TripID, &b.BusNumber, &b.PassengerName, &b.MobileNumber, &b.Email, &b.SeatNumber,
		&b.BoardingPlace, &b.DestinationPlace, &b.TotalPrice, &status, &b.BookingToken, &b.CreatedAt, &b.UpdatedAt,
	)
	b.Status = models.BookingStatus(status)
	return b, err
}

func (r BookingRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings (user_id, trip_id, bus_number, passenger_name, mobile_number, email, seat_number,
			boarding_place, destination_place, total_price, status, booking_token, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, b.TripID, b.BusNumber, b.PassengerName, b.MobileNumber, b.Email, b.SeatNumber,
		b.BoardingPlace, b.DestinationPlace, b.TotalPrice, string(b.Status), b.BookingToken, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("booking id: %w", err)
	}
	b.ID = id
	return nil
}

func (r BookingRepository) GetBooking(ctx context.Context, id int64) (models.Booking, error) {
	b, err := scanBooking(r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, ErrNotFound
	}
	return b, err
}

// TransitionBooking is a status compare-and-swap; false means the booking was
// not in any of the `from` states.
func (r BookingRepository) TransitionBooking(ctx context.Context, id int64, from []models.BookingStatus, to models.BookingStatus, at time.Time) (bool, error) {
	return transitionBooking(ctx, r.DB, id, from, to, "", at)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// transitionBooking sets booking_token too when token is non-empty.
func transitionBooking(ctx context.Context, ex execer, id int64, from []models.BookingStatus, to models.BookingStatus, token string, at time.Time) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	set := "status=?, updated_at=?"
	args := []any{string(to), at}
	if token != "" {
		set += ", booking_token=?"
		args = append(args, token)
	}
	args = append(args, id)
	marks := make([]string, len(from))
	for i, s := range from {
		marks[i] = "?"
		args = append(args, string(s))
	}
	res, err := ex.ExecContext(ctx, `UPDATE bookings SET `+set+` WHERE id=? AND status IN (`+strings.Join(marks, ",")+`)`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r BookingRepository) ListBookingsByTrip(ctx context.Context, tripID int64) ([]models.Booking, error) {
	return r.list(ctx, `WHERE trip_id=? ORDER BY id ASC`, tripID)
}

func (r BookingRepository) ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	return r.list(ctx, `WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID)
}

func (r BookingRepository) ListBookingsByBuses(ctx context.Context, busNumbers []string) ([]models.Booking, error) {
	if len(busNumbers) == 0 {
		return []models.Booking{}, nil
	}
	marks := make([]string, len(busNumbers))
	args := make([]any, len(busNumbers))
	for i, bn := range busNumbers {
		marks[i] = "?"
		args[i] = bn
	}
	return r.list(ctx, `WHERE bus_number IN (`+strings.Join(marks, ",")+`) ORDER BY created_at DESC, id DESC`, args...)
}

func (r BookingRepository) list(ctx context.Context, where string, args ...any) ([]models.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
