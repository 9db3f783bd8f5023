package services

import (
	"context"
	"crypto/subtle"

	"busbooking/internal/domain/models"
)

// PaymentGateway charges a card. Returning an error declines the payment.
type PaymentGateway interface {
	Charge(ctx context.Context, amount float64, method string, card models.CardDetails) error
}

// MockGateway approves every charge.
type MockGateway struct{}

func (MockGateway) Charge(context.Context, float64, string, models.CardDetails) error { return nil }

// OTPVerifier checks a one-time code presented on cancellation.
type OTPVerifier interface {
	Verify(ctx context.Context, bookingID int64, otp string) bool
}

type AcceptAllOTP struct{}

func (AcceptAllOTP) Verify(context.Context, int64, string) bool { return true }

// StaticOTP accepts a single configured code.
type StaticOTP struct {
	Code string
}

func (s StaticOTP) Verify(_ context.Context, _ int64, otp string) bool {
	return subtle.ConstantTimeCompare([]byte(s.Code), []byte(otp)) == 1
}
