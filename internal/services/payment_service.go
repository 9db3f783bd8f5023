package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/notify"
	"busbooking/internal/utils"

	"github.com/google/uuid"
)

type PaymentService struct {
	Bookings BookingStore
	Payments PaymentStore
	Gateway  PaymentGateway
	Notifier Notifier
	Now      func() time.Time
}

// PayResult carries the recorded payment and the token needed to cancel.
type PayResult struct {
	Payment      models.Payment
	BookingToken string
}

func (s PaymentService) Pay(ctx context.Context, actor domain.Actor, in models.PayInput) (PayResult, error) {
	b, err := s.Bookings.GetBooking(ctx, in.BookingID)
	if err != nil {
		return PayResult{}, storeErr("Booking", err)
	}
	if b.UserID != actor.UserID {
		return PayResult{}, domain.ForbiddenError{Msg: "You can only pay for your own bookings"}
	}
	if b.Status != models.BookingConfirmed {
		return PayResult{}, domain.InvalidStateError{Resource: "booking", From: string(b.Status), Action: "pay for"}
	}

	gw := s.Gateway
	if gw == nil {
		gw = MockGateway{}
	}
	if err := gw.Charge(ctx, b.TotalPrice, in.PaymentMethod, in.CardDetails); err != nil {
		utils.LogEventCtx(ctx, "payment", "declined", fmt.Sprintf("booking_id=%d", b.ID))
		return PayResult{}, domain.PaymentDeclinedError{Reason: err.Error(), Err: err}
	}

	token, err := newBookingToken()
	if err != nil {
		return PayResult{}, domain.InternalError{Msg: "failed to issue booking token", Err: err}
	}
	p := models.Payment{
		BookingID:     b.ID,
		Amount:        b.TotalPrice,
		PaymentMethod: in.PaymentMethod,
		CardDetails:   in.CardDetails,
		Status:        models.PaymentSuccessful,
		TransactionID: uuid.NewString(),
		PaymentDate:   nowOr(s.Now),
	}
	ok, err := s.Payments.RecordPayment(ctx, &p, token)
	if err != nil {
		return PayResult{}, storeErr("Payment", err)
	}
	if !ok {
		return PayResult{}, domain.InvalidStateError{Resource: "booking", Action: "pay for", From: "non-Confirmed"}
	}

	utils.LogEventCtx(ctx, "payment", "pay", fmt.Sprintf("booking_id=%d tx=%s", b.ID, p.TransactionID))
	notifierOrNop(s.Notifier).Notify(ctx, notify.Message{
		Channel:     notify.ChannelEmail,
		Destination: b.Email,
		Subject:     "Payment Confirmation",
		Body: fmt.Sprintf("Payment of %s received for seat %d on bus %s.\nTransaction ID: %s\nBooking token: %s",
			utils.FormatMoney(p.Amount), b.SeatNumber, b.BusNumber, p.TransactionID, token),
	})
	return PayResult{Payment: p, BookingToken: token}, nil
}

// GetByBooking returns the payment receipt for a booking the actor owns.
func (s PaymentService) GetByBooking(ctx context.Context, actor domain.Actor, bookingID int64) (models.Payment, error) {
	b, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return models.Payment{}, storeErr("Booking", err)
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return models.Payment{}, domain.ForbiddenError{}
	}
	p, err := s.Payments.GetPaymentByBooking(ctx, bookingID)
	if err != nil {
		return models.Payment{}, storeErr("Payment", err)
	}
	return p, nil
}

// newBookingToken returns 32 random bytes hex-encoded.
func newBookingToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
