package services

import (
	"context"
	"fmt"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/notify"
	"busbooking/internal/utils"
)

// TripService schedules and cancels trips.
type TripService struct {
	Trips    TripStore
	Bookings BookingStore
	Users    UserStore
	Notifier Notifier
	Now      func() time.Time
}

// CreateTrip writes the trip and one seat row per seat. Seats not listed as
// ladies-only or not-provided start out available. A given operatorId
// registers the bus to that operator first.
func (s TripService) CreateTrip(ctx context.Context, in models.CreateTripInput) (models.Trip, error) {
	if !in.ArrivalTime.After(in.DepartureTime) {
		return models.Trip{}, domain.ValidationError{Field: "arrivalTime", Msg: "must be after departureTime"}
	}
	seats, err := seatLayout(in.TotalSeats, in.AvailableForLadies, in.NotProvided)
	if err != nil {
		return models.Trip{}, err
	}

	if in.OperatorID > 0 {
		bus := models.Bus{BusNumber: in.BusNumber, BusName: in.BusName, OperatorID: in.OperatorID}
		if err := s.Users.SaveBus(ctx, bus); err != nil {
			return models.Trip{}, domain.InternalError{Msg: "failed to register bus", Err: err}
		}
	}

	t := models.Trip{
		RouteNumber:      in.RouteNumber,
		BusNumber:        in.BusNumber,
		Date:             in.Date,
		DepartureTime:    in.DepartureTime,
		ArrivalTime:      in.ArrivalTime,
		Price:            in.Price,
		Status:           models.TripScheduled,
		SeatAvailability: models.SeatAvailability{TotalSeats: in.TotalSeats},
		CreatedAt:        nowOr(s.Now),
	}
	if err := s.Trips.CreateTrip(ctx, &t, seats); err != nil {
		return models.Trip{}, domain.InternalError{Msg: "failed to create trip", Err: err}
	}
	t.SeatAvailability = models.AvailabilityFromSeats(in.TotalSeats, seats)
	utils.LogEventCtx(ctx, "trip", "create", fmt.Sprintf("trip_id=%d bus=%s seats=%d", t.ID, t.BusNumber, in.TotalSeats))
	return t, nil
}

func seatLayout(total int, ladies, notProvided []int) ([]models.TripSeat, error) {
	cat := make(map[int]models.SeatCategory, len(ladies)+len(notProvided))
	mark := func(field string, list []int, c models.SeatCategory) error {
		for _, n := range list {
			if n < 1 || n > total {
				return domain.ValidationError{Field: field, Msg: fmt.Sprintf("seat %d is outside 1..%d", n, total)}
			}
			if _, dup := cat[n]; dup {
				return domain.ValidationError{Field: field, Msg: fmt.Sprintf("seat %d is listed more than once", n)}
			}
			cat[n] = c
		}
		return nil
	}
	if err := mark("availableForLadies", ladies, models.SeatLadiesOnly); err != nil {
		return nil, err
	}
	if err := mark("notProvided", notProvided, models.SeatNotProvided); err != nil {
		return nil, err
	}

	seats := make([]models.TripSeat, 0, total)
	for n := 1; n <= total; n++ {
		c, ok := cat[n]
		if !ok {
			c = models.SeatAvailable
		}
		seats = append(seats, models.TripSeat{SeatNumber: n, Category: c})
	}
	return seats, nil
}

// CancelTrip marks a scheduled trip Cancelled and emails a refund notice to
// every passenger still holding a booking. Operators may only cancel trips
// run by their own buses.
func (s TripService) CancelTrip(ctx context.Context, actor domain.Actor, tripID int64) (models.Trip, error) {
	t, err := s.Trips.GetTrip(ctx, tripID)
	if err != nil {
		return models.Trip{}, storeErr("Trip", err)
	}
	if !actor.IsAdmin() {
		bus, err := s.Users.GetBus(ctx, t.BusNumber)
		if err != nil || bus.OperatorID != actor.UserID {
			return models.Trip{}, domain.ForbiddenError{Msg: "Operator does not own this trip"}
		}
	}

	ok, err := s.Trips.UpdateTripStatus(ctx, t.ID, models.TripScheduled, models.TripCancelled)
	if err != nil {
		return models.Trip{}, domain.InternalError{Msg: "failed to cancel trip", Err: err}
	}
	if !ok {
		return models.Trip{}, domain.InvalidStateError{Resource: "trip", From: string(models.TripCancelled), Action: "cancel"}
	}
	t.Status = models.TripCancelled

	bookings, err := s.Bookings.ListBookingsByTrip(ctx, t.ID)
	if err != nil {
		utils.LogEventCtx(ctx, "trip", "cancel", "list bookings failed: "+err.Error())
	}
	n := notifierOrNop(s.Notifier)
	notified := 0
	for _, b := range bookings {
		if b.Status == models.BookingCanceled {
			continue
		}
		n.Notify(ctx, notify.Message{
			Channel:     notify.ChannelEmail,
			Destination: b.Email,
			Subject:     "Bus Cancellation Notification",
			Body: fmt.Sprintf("Your trip on bus %s has been cancelled.\nSeat Number: %d\nBoarding Place: %s\nDestination Place: %s\nTotal Price: %s (Refund will be processed)",
				t.BusNumber, b.SeatNumber, b.BoardingPlace, b.DestinationPlace, utils.FormatMoney(b.TotalPrice)),
		})
		notified++
	}
	utils.LogEventCtx(ctx, "trip", "cancel", fmt.Sprintf("trip_id=%d notified=%d", t.ID, notified))
	return t, nil
}

// GetTrip returns the trip with its seat projection.
func (s TripService) GetTrip(ctx context.Context, id int64) (models.Trip, error) {
	return InventoryService{Trips: s.Trips, Now: s.Now}.Availability(ctx, id)
}
