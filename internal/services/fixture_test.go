package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/notify"
	"busbooking/internal/repositories/memstore"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (r *recordingNotifier) Notify(_ context.Context, msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingNotifier) byChannel(ch notify.Channel) []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []notify.Message{}
	for _, m := range r.msgs {
		if m.Channel == ch {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	store    *memstore.Store
	notifier *recordingNotifier
	clock    *time.Time

	inventory InventoryService
	bookings  BookingService
	payments  PaymentService
	trips     TripService
	docs      DocsService

	tripID    int64
	commuter  domain.Actor
	other     domain.Actor
	operator  domain.Actor
	admin     domain.Actor
	busNumber string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := fixedNow
	f := &fixture{
		store:     memstore.New(),
		notifier:  &recordingNotifier{},
		clock:     &now,
		commuter:  domain.Actor{UserID: 10, Role: domain.RoleCommuter},
		other:     domain.Actor{UserID: 11, Role: domain.RoleCommuter},
		operator:  domain.Actor{UserID: 20, Role: domain.RoleOperator},
		admin:     domain.Actor{UserID: 1, Role: domain.RoleAdmin},
		busNumber: "NB-1001",
	}
	clock := func() time.Time { return *f.clock }

	f.inventory = InventoryService{Trips: f.store, Now: clock}
	f.bookings = BookingService{
		Inventory: f.inventory,
		Bookings:  f.store,
		Users:     f.store,
		OTP:       AcceptAllOTP{},
		Notifier:  f.notifier,
		Now:       clock,
	}
	f.payments = PaymentService{Bookings: f.store, Payments: f.store, Gateway: MockGateway{}, Notifier: f.notifier, Now: clock}
	f.trips = TripService{Trips: f.store, Bookings: f.store, Users: f.store, Notifier: f.notifier, Now: clock}
	f.docs = DocsService{Bookings: f.store, Trips: f.store, Payments: f.store}

	trip, err := f.trips.CreateTrip(context.Background(), models.CreateTripInput{
		RouteNumber:        "R-01",
		BusNumber:          f.busNumber,
		BusName:            "Express",
		OperatorID:         f.operator.UserID,
		Date:               fixedNow,
		DepartureTime:      fixedNow.Add(2 * time.Hour),
		ArrivalTime:        fixedNow.Add(5 * time.Hour),
		Price:              1500,
		TotalSeats:         40,
		AvailableForLadies: []int{1, 2},
		NotProvided:        []int{40},
	})
	require.NoError(t, err)
	f.tripID = trip.ID
	return f
}

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func (f *fixture) bookInput(seat int) models.BookSeatInput {
	return models.BookSeatInput{
		TripID:           f.tripID,
		PassengerName:    "Nimal Perera",
		MobileNumber:     "0771234567",
		Email:            "nimal@example.com",
		SeatNumber:       seat,
		BoardingPlace:    "Colombo",
		DestinationPlace: "Kandy",
		TotalPrice:       1500,
	}
}

func (f *fixture) payInput(bookingID int64) models.PayInput {
	return models.PayInput{
		BookingID:     bookingID,
		PaymentMethod: models.MethodVisaMastercard,
		CardDetails:   models.CardDetails{NameOnCard: "N Perera", CardNumber: "4111111111111111", ExpiryDate: "12/29", CVV: "123"},
	}
}

func (f *fixture) availability(t *testing.T) models.SeatAvailability {
	t.Helper()
	trip, err := f.inventory.Availability(context.Background(), f.tripID)
	require.NoError(t, err)
	return trip.SeatAvailability
}

// requirePartition checks every seat sits in exactly one bucket.
func requirePartition(t *testing.T, av models.SeatAvailability) {
	t.Helper()
	seen := map[int]int{}
	for _, list := range [][]int{av.Available, av.BookingInProgress, av.AlreadyBooked, av.AvailableForLadies, av.NotProvided} {
		for _, n := range list {
			seen[n]++
		}
	}
	require.Len(t, seen, av.TotalSeats)
	for n := 1; n <= av.TotalSeats; n++ {
		require.Equal(t, 1, seen[n], "seat %d", n)
	}
}
