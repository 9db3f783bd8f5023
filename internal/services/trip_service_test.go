package services

import (
	"context"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tripInput(total int) models.CreateTripInput {
	return models.CreateTripInput{
		RouteNumber:   "R-02",
		BusNumber:     "NB-2002",
		Date:          fixedNow,
		DepartureTime: fixedNow.Add(time.Hour),
		ArrivalTime:   fixedNow.Add(4 * time.Hour),
		Price:         900,
		TotalSeats:    total,
	}
}

func TestCreateTripLayout(t *testing.T) {
	f := newFixture(t)
	in := tripInput(8)
	in.AvailableForLadies = []int{2}
	in.NotProvided = []int{8}

	trip, err := f.trips.CreateTrip(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.TripScheduled, trip.Status)
	assert.Equal(t, []int{1, 3, 4, 5, 6, 7}, trip.SeatAvailability.Available)
	requirePartition(t, trip.SeatAvailability)

	stored, err := f.trips.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.SeatAvailability, stored.SeatAvailability)
}

func TestCreateTripRegistersOperatorBus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := domain.Actor{UserID: 30, Role: domain.RoleOperator}

	plain, err := f.trips.CreateTrip(ctx, tripInput(8))
	require.NoError(t, err)
	_, err = f.store.GetBus(ctx, plain.BusNumber)
	assert.Error(t, err)

	in := tripInput(8)
	in.OperatorID = owner.UserID
	in.BusName = "Hill Line"
	trip, err := f.trips.CreateTrip(ctx, in)
	require.NoError(t, err)

	bus, err := f.store.GetBus(ctx, in.BusNumber)
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, bus.OperatorID)
	assert.Equal(t, "Hill Line", bus.BusName)

	b, err := f.bookings.Book(ctx, f.commuter, models.BookSeatInput{
		TripID: trip.ID, PassengerName: "Kamal", MobileNumber: "0770000000", Email: "k@example.com",
		SeatNumber: 3, BoardingPlace: "Kandy", DestinationPlace: "Ella",
	})
	require.NoError(t, err)
	list, err := f.bookings.ListForOperator(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	cancelled, err := f.trips.CancelTrip(ctx, owner, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TripCancelled, cancelled.Status)

	// Reassigning without a name keeps the stored one.
	in.OperatorID = f.operator.UserID
	in.BusName = ""
	_, err = f.trips.CreateTrip(ctx, in)
	require.NoError(t, err)
	bus, err = f.store.GetBus(ctx, in.BusNumber)
	require.NoError(t, err)
	assert.Equal(t, f.operator.UserID, bus.OperatorID)
	assert.Equal(t, "Hill Line", bus.BusName)
}

func TestCreateTripRejectsBadLayout(t *testing.T) {
	f := newFixture(t)
	cases := map[string]func(*models.CreateTripInput){
		"overlap":      func(in *models.CreateTripInput) { in.AvailableForLadies = []int{3}; in.NotProvided = []int{3} },
		"out of range": func(in *models.CreateTripInput) { in.NotProvided = []int{9} },
		"duplicate":    func(in *models.CreateTripInput) { in.AvailableForLadies = []int{1, 1} },
		"arrival":      func(in *models.CreateTripInput) { in.ArrivalTime = in.DepartureTime },
	}
	for name, mutate := range cases {
		in := tripInput(8)
		mutate(&in)
		_, err := f.trips.CreateTrip(context.Background(), in)
		assert.True(t, domain.IsValidation(err), name)
	}
}

func TestCancelTripNotifiesActiveBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.Book(ctx, f.commuter, f.bookInput(5))
	require.NoError(t, err)
	b2, err := f.bookings.Book(ctx, f.other, f.bookInput(6))
	require.NoError(t, err)
	_, err = f.bookings.Cancel(ctx, f.other, CancelInput{BookingID: b2.ID})
	require.NoError(t, err)
	before := len(f.notifier.byChannel(notify.ChannelEmail))

	trip, err := f.trips.CancelTrip(ctx, f.operator, f.tripID)
	require.NoError(t, err)
	assert.Equal(t, models.TripCancelled, trip.Status)

	emails := f.notifier.byChannel(notify.ChannelEmail)
	require.Len(t, emails, before+1)
	last := emails[len(emails)-1]
	assert.Equal(t, "Bus Cancellation Notification", last.Subject)
	assert.Contains(t, last.Body, "Refund will be processed")

	_, err = f.trips.CancelTrip(ctx, f.operator, f.tripID)
	assert.True(t, domain.IsInvalidState(err))
}

func TestCancelTripRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := domain.Actor{UserID: 77, Role: domain.RoleOperator}

	_, err := f.trips.CancelTrip(ctx, stranger, f.tripID)
	assert.True(t, domain.IsForbidden(err))

	_, err = f.trips.CancelTrip(ctx, f.admin, 404)
	assert.True(t, domain.IsNotFound(err))

	trip, err := f.trips.GetTrip(ctx, f.tripID)
	require.NoError(t, err)
	assert.Equal(t, models.TripScheduled, trip.Status)
}
