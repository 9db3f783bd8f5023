package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"busbooking/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTrip(t *testing.T, s *Store, total int) int64 {
	t.Helper()
	seats := make([]models.TripSeat, 0, total)
	for i := 1; i <= total; i++ {
		seats = append(seats, models.TripSeat{SeatNumber: i, Category: models.SeatAvailable})
	}
	trip := models.Trip{Status: models.TripScheduled, SeatAvailability: models.SeatAvailability{TotalSeats: total}}
	require.NoError(t, s.CreateTrip(context.Background(), &trip, seats))
	return trip.ID
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	s := New()
	tripID := seedTrip(t, s, 10)

	const racers = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.TransitionSeat(context.Background(), tripID, 3,
				[]models.SeatCategory{models.SeatAvailable}, models.SeatBookingInProgress, time.Now())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestReleaseStaleHoldsOnlyOld(t *testing.T) {
	s := New()
	tripID := seedTrip(t, s, 4)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	inProgress := []models.SeatCategory{models.SeatAvailable}

	_, err := s.TransitionSeat(ctx, tripID, 1, inProgress, models.SeatBookingInProgress, base)
	require.NoError(t, err)
	_, err = s.TransitionSeat(ctx, tripID, 2, inProgress, models.SeatBookingInProgress, base.Add(20*time.Minute))
	require.NoError(t, err)

	n, err := s.ReleaseStaleHolds(ctx, base.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	seats, err := s.ListSeats(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, models.SeatAvailable, seats[0].Category)
	assert.Nil(t, seats[0].HeldAt)
	assert.Equal(t, models.SeatBookingInProgress, seats[1].Category)
}

func TestRecordPaymentRequiresConfirmed(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := models.Booking{UserID: 1, TripID: 1, Status: models.BookingCanceled}
	require.NoError(t, s.CreateBooking(ctx, &b))

	p := models.Payment{BookingID: b.ID, CardDetails: models.CardDetails{CardNumber: "4111111111111111", CVV: "1"}}
	ok, err := s.RecordPayment(ctx, &p, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.PaymentCount())
}

func TestRecordPaymentMasksCard(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := models.Booking{UserID: 1, TripID: 1, Status: models.BookingConfirmed}
	require.NoError(t, s.CreateBooking(ctx, &b))

	p := models.Payment{BookingID: b.ID, CardDetails: models.CardDetails{CardNumber: "4111111111111111", CVV: "123"}}
	ok, err := s.RecordPayment(ctx, &p, "tok")
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := s.GetPaymentByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "****1111", stored.CardDetails.CardNumber)
	assert.Empty(t, stored.CardDetails.CVV)

	got, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, got.Status)
	assert.Equal(t, "tok", got.BookingToken)
}
