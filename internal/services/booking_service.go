package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/notify"
	"busbooking/internal/utils"
)

// BookingService keeps booking records in step with seat inventory.
type BookingService struct {
	Inventory InventoryService
	Bookings  BookingStore
	Users     UserStore
	OTP       OTPVerifier
	Notifier  Notifier
	Now       func() time.Time
}

// CancelInput is what a commuter presents to cancel their booking.
type CancelInput struct {
	BookingID    int64  `json:"bookingId" binding:"required,gt=0"`
	BookingToken string `json:"bookingToken"`
	OTP          string `json:"otp"`
}

// Book reserves the seat, records a Confirmed booking and confirms the seat.
// On failure after the reservation the seat is released again.
func (s BookingService) Book(ctx context.Context, actor domain.Actor, in models.BookSeatInput) (models.Booking, error) {
	trip, err := s.Inventory.trip(ctx, in.TripID)
	if err != nil {
		return models.Booking{}, err
	}
	if trip.Status != models.TripScheduled {
		return models.Booking{}, domain.InvalidStateError{Resource: "trip", From: string(trip.Status), Action: "book"}
	}
	if err := s.Inventory.reserveOn(ctx, trip, in.SeatNumber); err != nil {
		return models.Booking{}, err
	}

	price := in.TotalPrice
	if price == 0 {
		price = trip.Price
	}
	now := nowOr(s.Now)
	b := models.Booking{
		UserID:           actor.UserID,
		TripID:           trip.ID,
		BusNumber:        trip.BusNumber,
		PassengerName:    strings.TrimSpace(in.PassengerName),
		MobileNumber:     strings.TrimSpace(in.MobileNumber),
		Email:            strings.TrimSpace(in.Email),
		SeatNumber:       in.SeatNumber,
		BoardingPlace:    strings.TrimSpace(in.BoardingPlace),
		DestinationPlace: strings.TrimSpace(in.DestinationPlace),
		TotalPrice:       price,
		Status:           models.BookingConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Bookings.CreateBooking(ctx, &b); err != nil {
		s.compensate(ctx, b, false)
		return models.Booking{}, domain.InternalError{Msg: "failed to create booking", Err: err}
	}
	if err := s.Inventory.Confirm(ctx, trip.ID, in.SeatNumber); err != nil {
		s.compensate(ctx, b, true)
		return models.Booking{}, err
	}

	utils.LogEventCtx(ctx, "booking", "book", fmt.Sprintf("booking_id=%d trip_id=%d seat=%d", b.ID, b.TripID, b.SeatNumber))
	return b, nil
}

// compensate undoes a half-finished Book: a seat still held goes back to
// available and a written booking is left Canceled. A booked seat is never
// touched, since by then it belongs to another booking.
func (s BookingService) compensate(ctx context.Context, b models.Booking, written bool) {
	if _, err := s.Inventory.ReleaseHold(ctx, b.TripID, b.SeatNumber); err != nil {
		utils.LogEventCtx(ctx, "booking", "compensate", "release failed: "+err.Error())
	}
	if !written {
		return
	}
	if _, err := s.Bookings.TransitionBooking(ctx, b.ID, []models.BookingStatus{models.BookingConfirmed}, models.BookingCanceled, nowOr(s.Now)); err != nil {
		utils.LogEventCtx(ctx, "booking", "compensate", "cancel failed: "+err.Error())
	}
}

// Cancel cancels a commuter's own booking after checking the booking token
// and OTP.
func (s BookingService) Cancel(ctx context.Context, actor domain.Actor, in CancelInput) (models.Booking, error) {
	b, err := s.Bookings.GetBooking(ctx, in.BookingID)
	if err != nil {
		return models.Booking{}, storeErr("Booking", err)
	}
	if b.UserID != actor.UserID {
		return models.Booking{}, domain.ForbiddenError{Msg: "You can only cancel your own bookings"}
	}
	// The token is issued at payment; an unpaid booking stores "" and is
	// cancelled with an empty bookingToken.
	if subtle.ConstantTimeCompare([]byte(b.BookingToken), []byte(in.BookingToken)) != 1 {
		return models.Booking{}, domain.InvalidTokenError{}
	}
	if s.OTP != nil && !s.OTP.Verify(ctx, b.ID, in.OTP) {
		return models.Booking{}, domain.InvalidTokenError{Msg: "Invalid OTP"}
	}

	b, err = s.cancel(ctx, b)
	if err != nil {
		return models.Booking{}, err
	}
	s.notifyCancel(ctx, b, "Your booking has been canceled.")
	return b, nil
}

// AdminCancel cancels any booking without ownership or token checks.
func (s BookingService) AdminCancel(ctx context.Context, bookingID int64) (models.Booking, error) {
	b, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return models.Booking{}, storeErr("Booking", err)
	}
	b, err = s.cancel(ctx, b)
	if err != nil {
		return models.Booking{}, err
	}
	s.notifyCancel(ctx, b, "Your booking has been canceled by the administrator.")
	return b, nil
}

// cancel flips the booking first so a repeated call fails on the status check
// and never releases the seat twice.
func (s BookingService) cancel(ctx context.Context, b models.Booking) (models.Booking, error) {
	if b.Status == models.BookingCanceled {
		return models.Booking{}, domain.InvalidStateError{Resource: "booking", From: string(b.Status), Action: "cancel"}
	}
	now := nowOr(s.Now)
	ok, err := s.Bookings.TransitionBooking(ctx, b.ID,
		[]models.BookingStatus{models.BookingConfirmed, models.BookingPaid}, models.BookingCanceled, now)
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "failed to cancel booking", Err: err}
	}
	if !ok {
		return models.Booking{}, domain.InvalidStateError{Resource: "booking", From: string(models.BookingCanceled), Action: "cancel"}
	}
	if _, err := s.Inventory.Release(ctx, b.TripID, b.SeatNumber); err != nil {
		return models.Booking{}, err
	}
	b.Status = models.BookingCanceled
	b.UpdatedAt = now
	utils.LogEventCtx(ctx, "booking", "cancel", fmt.Sprintf("booking_id=%d seat=%d", b.ID, b.SeatNumber))
	return b, nil
}

func (s BookingService) notifyCancel(ctx context.Context, b models.Booking, lead string) {
	n := notifierOrNop(s.Notifier)
	details := fmt.Sprintf("Bus Number: %s\nSeat Number: %d\nFrom: %s\nTo: %s", b.BusNumber, b.SeatNumber, b.BoardingPlace, b.DestinationPlace)
	n.Notify(ctx, notify.Message{
		Channel:     notify.ChannelEmail,
		Destination: b.Email,
		Subject:     "Booking Cancellation Notification",
		Body:        lead + "\n" + details,
	})
	n.Notify(ctx, notify.Message{
		Channel:     notify.ChannelSMS,
		Destination: b.MobileNumber,
		Body:        fmt.Sprintf("%s Seat %d on bus %s.", lead, b.SeatNumber, b.BusNumber),
	})
}

// ListByTrip returns every booking of an existing trip.
func (s BookingService) ListByTrip(ctx context.Context, tripID int64) ([]models.Booking, error) {
	if _, err := s.Inventory.trip(ctx, tripID); err != nil {
		return nil, err
	}
	out, err := s.Bookings.ListBookingsByTrip(ctx, tripID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list bookings", Err: err}
	}
	return out, nil
}

func (s BookingService) ListByUser(ctx context.Context, userID int64) ([]models.BookingSummary, error) {
	list, err := s.Bookings.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list bookings", Err: err}
	}
	out := make([]models.BookingSummary, 0, len(list))
	for _, b := range list {
		out = append(out, b.Summary())
	}
	return out, nil
}

func (s BookingService) ListForOperatorBuses(ctx context.Context, busNumbers []string) ([]models.Booking, error) {
	out, err := s.Bookings.ListBookingsByBuses(ctx, busNumbers)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list bookings", Err: err}
	}
	return out, nil
}

// ListForOperator resolves the operator's buses and lists their bookings.
func (s BookingService) ListForOperator(ctx context.Context, operatorID int64) ([]models.Booking, error) {
	buses, err := s.Users.ListBusNumbersByOperator(ctx, operatorID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to resolve operator buses", Err: err}
	}
	return s.ListForOperatorBuses(ctx, buses)
}
