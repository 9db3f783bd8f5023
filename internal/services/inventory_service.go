package services

import (
	"context"
	"fmt"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"
)

const seatsPerRow = 4

// SeatCell is one entry of the seat matrix shown to commuters.
type SeatCell struct {
	SeatNumber int                 `json:"seatNumber"`
	Status     models.SeatCategory `json:"status"`
}

// InventoryService guards the per-seat state of every trip. All mutations are
// single conditional updates in the store, so concurrent callers cannot both
// win the same seat.
type InventoryService struct {
	Trips TripStore
	Now   func() time.Time
}

func (s InventoryService) trip(ctx context.Context, tripID int64) (models.Trip, error) {
	t, err := s.Trips.GetTrip(ctx, tripID)
	if err != nil {
		return models.Trip{}, storeErr("Trip", err)
	}
	return t, nil
}

func checkSeatRange(t models.Trip, seat int) error {
	if seat < 1 || seat > t.SeatAvailability.TotalSeats {
		return domain.ValidationError{Field: "seatNumber", Msg: fmt.Sprintf("must be between 1 and %d", t.SeatAvailability.TotalSeats)}
	}
	return nil
}

// Reserve moves seat from available to booking-in-progress.
func (s InventoryService) Reserve(ctx context.Context, tripID int64, seat int) error {
	t, err := s.trip(ctx, tripID)
	if err != nil {
		return err
	}
	return s.reserveOn(ctx, t, seat)
}

func (s InventoryService) reserveOn(ctx context.Context, t models.Trip, seat int) error {
	if err := checkSeatRange(t, seat); err != nil {
		return err
	}
	ok, err := s.Trips.TransitionSeat(ctx, t.ID, seat,
		[]models.SeatCategory{models.SeatAvailable}, models.SeatBookingInProgress, nowOr(s.Now))
	if err != nil {
		return domain.InternalError{Msg: "failed to reserve seat", Err: err}
	}
	if !ok {
		return domain.ConflictError{Resource: "seat", Msg: "Seat not available"}
	}
	utils.LogEventCtx(ctx, "inventory", "reserve", fmt.Sprintf("trip_id=%d seat=%d", t.ID, seat))
	return nil
}

// Confirm moves a held seat to already-booked.
func (s InventoryService) Confirm(ctx context.Context, tripID int64, seat int) error {
	ok, err := s.Trips.TransitionSeat(ctx, tripID, seat,
		[]models.SeatCategory{models.SeatBookingInProgress}, models.SeatAlreadyBooked, nowOr(s.Now))
	if err != nil {
		return domain.InternalError{Msg: "failed to confirm seat", Err: err}
	}
	if !ok {
		return domain.ConflictError{Resource: "seat", Msg: "Seat reservation expired"}
	}
	return nil
}

// Release returns a held or booked seat to available. It reports whether the
// seat actually moved; releasing a seat that is already free is a no-op.
func (s InventoryService) Release(ctx context.Context, tripID int64, seat int) (bool, error) {
	ok, err := s.Trips.TransitionSeat(ctx, tripID, seat,
		[]models.SeatCategory{models.SeatAlreadyBooked, models.SeatBookingInProgress}, models.SeatAvailable, nowOr(s.Now))
	if err != nil {
		return false, domain.InternalError{Msg: "failed to release seat", Err: err}
	}
	if !ok {
		utils.LogEventCtx(ctx, "inventory", "release_noop", fmt.Sprintf("trip_id=%d seat=%d", tripID, seat))
	}
	return ok, nil
}

// ReleaseHold frees a seat only while it is still booking-in-progress. A seat
// that was swept and then booked by someone else stays booked.
func (s InventoryService) ReleaseHold(ctx context.Context, tripID int64, seat int) (bool, error) {
	ok, err := s.Trips.TransitionSeat(ctx, tripID, seat,
		[]models.SeatCategory{models.SeatBookingInProgress}, models.SeatAvailable, nowOr(s.Now))
	if err != nil {
		return false, domain.InternalError{Msg: "failed to release hold", Err: err}
	}
	if !ok {
		utils.LogEventCtx(ctx, "inventory", "release_hold_noop", fmt.Sprintf("trip_id=%d seat=%d", tripID, seat))
	}
	return ok, nil
}

// Availability returns the trip with its five-bucket seat projection filled in.
func (s InventoryService) Availability(ctx context.Context, tripID int64) (models.Trip, error) {
	t, err := s.trip(ctx, tripID)
	if err != nil {
		return models.Trip{}, err
	}
	seats, err := s.Trips.ListSeats(ctx, tripID)
	if err != nil {
		return models.Trip{}, domain.InternalError{Msg: "failed to load seats", Err: err}
	}
	t.SeatAvailability = models.AvailabilityFromSeats(t.SeatAvailability.TotalSeats, seats)
	return t, nil
}

func (s InventoryService) SeatMatrix(ctx context.Context, tripID int64) ([][]SeatCell, error) {
	t, err := s.Availability(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return BuildSeatMatrix(t.SeatAvailability), nil
}

// ReclaimStale frees in-progress seats held for longer than ttl.
func (s InventoryService) ReclaimStale(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.Trips.ReleaseStaleHolds(ctx, nowOr(s.Now).Add(-ttl))
	if err != nil {
		return 0, domain.InternalError{Msg: "failed to reclaim seats", Err: err}
	}
	return n, nil
}

// BuildSeatMatrix lays seats out in rows of four. When a seat appears in more
// than one bucket the first match wins: ladies-only, not-provided,
// in-progress, booked, then available.
func BuildSeatMatrix(av models.SeatAvailability) [][]SeatCell {
	ladies := toSet(av.AvailableForLadies)
	notProvided := toSet(av.NotProvided)
	inProgress := toSet(av.BookingInProgress)
	booked := toSet(av.AlreadyBooked)

	matrix := [][]SeatCell{}
	row := make([]SeatCell, 0, seatsPerRow)
	for seat := 1; seat <= av.TotalSeats; seat++ {
		status := models.SeatAvailable
		switch {
		case ladies[seat]:
			status = models.SeatLadiesOnly
		case notProvided[seat]:
			status = models.SeatNotProvided
		case inProgress[seat]:
			status = models.SeatBookingInProgress
		case booked[seat]:
			status = models.SeatAlreadyBooked
		}
		row = append(row, SeatCell{SeatNumber: seat, Status: status})
		if len(row) == seatsPerRow {
			matrix = append(matrix, row)
			row = make([]SeatCell, 0, seatsPerRow)
		}
	}
	if len(row) > 0 {
		matrix = append(matrix, row)
	}
	return matrix
}

func toSet(list []int) map[int]bool {
	out := make(map[int]bool, len(list))
	for _, v := range list {
		out[v] = true
	}
	return out
}
