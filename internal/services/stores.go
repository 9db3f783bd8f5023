package services

import (
	"context"
	"errors"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/notify"
	"busbooking/internal/repositories"
)

// TripStore is implemented by repositories.TripRepository and memstore.Store.
type TripStore interface {
	CreateTrip(ctx context.Context, trip *models.Trip, seats []models.TripSeat) error
	GetTrip(ctx context.Context, id int64) (models.Trip, error)
	ListSeats(ctx context.Context, tripID int64) ([]models.TripSeat, error)
	TransitionSeat(ctx context.Context, tripID int64, seat int, from []models.SeatCategory, to models.SeatCategory, at time.Time) (bool, error)
	ReleaseStaleHolds(ctx context.Context, cutoff time.Time) (int64, error)
	UpdateTripStatus(ctx context.Context, id int64, from, to models.TripStatus) (bool, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id int64) (models.Booking, error)
	TransitionBooking(ctx context.Context, id int64, from []models.BookingStatus, to models.BookingStatus, at time.Time) (bool, error)
	ListBookingsByTrip(ctx context.Context, tripID int64) ([]models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error)
	ListBookingsByBuses(ctx context.Context, busNumbers []string) ([]models.Booking, error)
}

type PaymentStore interface {
	RecordPayment(ctx context.Context, p *models.Payment, bookingToken string) (bool, error)
	GetPaymentByBooking(ctx context.Context, bookingID int64) (models.Payment, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	SaveBus(ctx context.Context, b models.Bus) error
	GetBus(ctx context.Context, busNumber string) (models.Bus, error)
	ListBusNumbersByOperator(ctx context.Context, operatorID int64) ([]string, error)
}

// Notifier is satisfied by *notify.Dispatcher.
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, notify.Message) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

// storeErr maps repository sentinels onto the domain taxonomy.
func storeErr(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return domain.NotFoundError{Resource: resource, Err: err}
	case errors.Is(err, repositories.ErrDuplicate):
		return domain.ConflictError{Resource: resource, Msg: resource + " already exists", Err: err}
	default:
		return domain.InternalError{Msg: "failed to access " + resource, Err: err}
	}
}
