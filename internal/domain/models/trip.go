package models

import (
	"sort"
	"time"
)

type TripStatus string

const (
	TripScheduled TripStatus = "Scheduled"
	TripCancelled TripStatus = "Cancelled"
)

// SeatCategory is the single inventory bucket a seat belongs to.
type SeatCategory string

const (
	SeatAvailable         SeatCategory = "available"
	SeatBookingInProgress SeatCategory = "booking_in_progress"
	SeatAlreadyBooked     SeatCategory = "already_booked"
	SeatLadiesOnly        SeatCategory = "available_for_ladies"
	SeatNotProvided       SeatCategory = "not_provided"
)

// Trip is one scheduled run of a bus on a route.
type Trip struct {
	ID               int64            `json:"id"`
	RouteNumber      string           `json:"routeNumber"`
	BusNumber        string           `json:"busNumber"`
	Date             time.Time        `json:"date"`
	DepartureTime    time.Time        `json:"departureTime"`
	ArrivalTime      time.Time        `json:"arrivalTime"`
	Price            float64          `json:"price"`
	Status           TripStatus       `json:"status"`
	SeatAvailability SeatAvailability `json:"seatAvailability"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// SeatAvailability is the five-bucket view of a trip's seats.
type SeatAvailability struct {
	TotalSeats         int   `json:"totalSeats"`
	Available          []int `json:"available"`
	BookingInProgress  []int `json:"bookingInProgress"`
	AlreadyBooked      []int `json:"alreadyBooked"`
	AvailableForLadies []int `json:"availableForLadies"`
	NotProvided        []int `json:"notProvided"`
}

// TripSeat is the persisted state of one seat on one trip.
type TripSeat struct {
	TripID     int64        `json:"tripId"`
	SeatNumber int          `json:"seatNumber"`
	Category   SeatCategory `json:"category"`
	HeldAt     *time.Time   `json:"heldAt,omitempty"`
}

// AvailabilityFromSeats groups seat rows into the five buckets, sorted ascending.
func AvailabilityFromSeats(total int, seats []TripSeat) SeatAvailability {
	out := SeatAvailability{
		TotalSeats:         total,
		Available:          []int{},
		BookingInProgress:  []int{},
		AlreadyBooked:      []int{},
		AvailableForLadies: []int{},
		NotProvided:        []int{},
	}
	for _, s := range seats {
		switch s.Category {
		case SeatAvailable:
			out.Available = append(out.Available, s.SeatNumber)
		case SeatBookingInProgress:
			out.BookingInProgress = append(out.BookingInProgress, s.SeatNumber)
		case SeatAlreadyBooked:
			out.AlreadyBooked = append(out.AlreadyBooked, s.SeatNumber)
		case SeatLadiesOnly:
			out.AvailableForLadies = append(out.AvailableForLadies, s.SeatNumber)
		case SeatNotProvided:
			out.NotProvided = append(out.NotProvided, s.SeatNumber)
		}
	}
	for _, l := range [][]int{out.Available, out.BookingInProgress, out.AlreadyBooked, out.AvailableForLadies, out.NotProvided} {
		sort.Ints(l)
	}
	return out
}

// CreateTripInput is what an admin supplies to schedule a trip.
type CreateTripInput struct {
	RouteNumber        string    `json:"routeNumber" binding:"required"`
	BusNumber          string    `json:"busNumber" binding:"required"`
	Date               time.Time `json:"date" binding:"required"`
	DepartureTime      time.Time `json:"departureTime" binding:"required"`
	ArrivalTime        time.Time `json:"arrivalTime" binding:"required"`
	Price              float64   `json:"price" binding:"gte=0"`
	TotalSeats         int       `json:"totalSeats" binding:"required,min=1,max=200"`
	AvailableForLadies []int     `json:"availableForLadies"`
	NotProvided        []int     `json:"notProvided"`

	// Optional. When set the bus is registered to this operator.
	OperatorID int64  `json:"operatorId" binding:"omitempty,gt=0"`
	BusName    string `json:"busName"`
}
