// Package memstore is a mutex-guarded in-memory backend with the same
// conditional-update semantics as the MySQL repositories.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"
)

type seatKey struct {
	trip int64
	seat int
}

type Store struct {
	mu sync.Mutex

	nextTrip, nextBooking, nextPayment, nextUser int64

	trips    map[int64]models.Trip
	seats    map[seatKey]models.TripSeat
	bookings map[int64]models.Booking
	payments map[int64]models.Payment // by booking id
	users    map[int64]models.User
	buses    map[string]models.Bus
}

func New() *Store {
	return &Store{
		trips:    map[int64]models.Trip{},
		seats:    map[seatKey]models.TripSeat{},
		bookings: map[int64]models.Booking{},
		payments: map[int64]models.Payment{},
		users:    map[int64]models.User{},
		buses:    map[string]models.Bus{},
	}
}

// SaveBus inserts the bus or moves an existing one to b.OperatorID.
func (s *Store) SaveBus(_ context.Context, b models.Bus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.buses[b.BusNumber]; ok && b.BusName == "" {
		b.BusName = old.BusName
	}
	s.buses[b.BusNumber] = b
	return nil
}

func (s *Store) CreateTrip(_ context.Context, trip *models.Trip, seats []models.TripSeat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTrip++
	trip.ID = s.nextTrip
	stored := *trip
	stored.SeatAvailability = models.SeatAvailability{TotalSeats: trip.SeatAvailability.TotalSeats}
	s.trips[trip.ID] = stored
	for _, seat := range seats {
		seat.TripID = trip.ID
		seat.HeldAt = nil
		s.seats[seatKey{trip.ID, seat.SeatNumber}] = seat
	}
	return nil
}

func (s *Store) GetTrip(_ context.Context, id int64) (models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok {
		return models.Trip{}, repositories.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListSeats(_ context.Context, tripID int64) ([]models.TripSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.TripSeat{}
	for k, seat := range s.seats {
		if k.trip == tripID {
			out = append(out, copySeat(seat))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func copySeat(seat models.TripSeat) models.TripSeat {
	if seat.HeldAt != nil {
		ts := *seat.HeldAt
		seat.HeldAt = &ts
	}
	return seat
}

func (s *Store) TransitionSeat(_ context.Context, tripID int64, seat int, from []models.SeatCategory, to models.SeatCategory, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := seatKey{tripID, seat}
	cur, ok := s.seats[k]
	if !ok || !containsCategory(from, cur.Category) {
		return false, nil
	}
	cur.Category = to
	cur.HeldAt = nil
	if to == models.SeatBookingInProgress {
		ts := at
		cur.HeldAt = &ts
	}
	s.seats[k] = cur
	return true, nil
}

func containsCategory(list []models.SeatCategory, c models.SeatCategory) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

func (s *Store) ReleaseStaleHolds(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, seat := range s.seats {
		if seat.Category != models.SeatBookingInProgress || seat.HeldAt == nil || !seat.HeldAt.Before(cutoff) {
			continue
		}
		seat.Category = models.SeatAvailable
		seat.HeldAt = nil
		s.seats[k] = seat
		n++
	}
	return n, nil
}

func (s *Store) UpdateTripStatus(_ context.Context, id int64, from, to models.TripStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	s.trips[id] = t
	return true, nil
}

func (s *Store) CreateBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBooking++
	b.ID = s.nextBooking
	s.bookings[b.ID] = *b
	return nil
}

func (s *Store) GetBooking(_ context.Context, id int64) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, repositories.ErrNotFound
	}
	return b, nil
}

func (s *Store) TransitionBooking(_ context.Context, id int64, from []models.BookingStatus, to models.BookingStatus, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionBookingLocked(id, from, to, "", at), nil
}

func (s *Store) transitionBookingLocked(id int64, from []models.BookingStatus, to models.BookingStatus, token string, at time.Time) bool {
	b, ok := s.bookings[id]
	if !ok {
		return false
	}
	matched := false
	for _, st := range from {
		if b.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	b.Status = to
	b.UpdatedAt = at
	if token != "" {
		b.BookingToken = token
	}
	s.bookings[id] = b
	return true
}

func (s *Store) ListBookingsByTrip(_ context.Context, tripID int64) ([]models.Booking, error) {
	out := s.filterBookings(func(b models.Booking) bool { return b.TripID == tripID })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListBookingsByUser(_ context.Context, userID int64) ([]models.Booking, error) {
	out := s.filterBookings(func(b models.Booking) bool { return b.UserID == userID })
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) ListBookingsByBuses(_ context.Context, busNumbers []string) ([]models.Booking, error) {
	set := make(map[string]struct{}, len(busNumbers))
	for _, bn := range busNumbers {
		set[bn] = struct{}{}
	}
	out := s.filterBookings(func(b models.Booking) bool {
		_, ok := set[b.BusNumber]
		return ok
	})
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) filterBookings(keep func(models.Booking) bool) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Booking{}
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func sortNewestFirst(list []models.Booking) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

// RecordPayment applies the booking CAS and the payment insert under one lock.
func (s *Store) RecordPayment(_ context.Context, p *models.Payment, bookingToken string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.payments[p.BookingID]; dup {
		return false, repositories.ErrDuplicate
	}
	if !s.transitionBookingLocked(p.BookingID, []models.BookingStatus{models.BookingConfirmed}, models.BookingPaid, bookingToken, p.PaymentDate) {
		return false, nil
	}
	s.nextPayment++
	p.ID = s.nextPayment
	p.CardDetails = p.CardDetails.Masked()
	s.payments[p.BookingID] = *p
	return true, nil
}

func (s *Store) GetPaymentByBooking(_ context.Context, bookingID int64) (models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[bookingID]
	if !ok {
		return models.Payment{}, repositories.ErrNotFound
	}
	return p, nil
}

// PaymentCount is used by tests to assert no payment was written.
func (s *Store) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repositories.ErrDuplicate
		}
	}
	s.nextUser++
	u.ID = s.nextUser
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *Store) GetBus(_ context.Context, busNumber string) (models.Bus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buses[busNumber]
	if !ok {
		return models.Bus{}, repositories.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBusNumbersByOperator(_ context.Context, operatorID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for _, b := range s.buses {
		if b.OperatorID == operatorID {
			out = append(out, b.BusNumber)
		}
	}
	sort.Strings(out)
	return out, nil
}
