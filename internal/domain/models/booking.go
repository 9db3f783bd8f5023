package models

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingPaid      BookingStatus = "Paid"
	BookingCanceled  BookingStatus = "Canceled"
)

// Booking is one passenger's claim on one seat of one trip.
type Booking struct {
	ID               int64         `json:"id"`
	UserID           int64         `json:"userId"`
	TripID           int64         `json:"tripId"`
	BusNumber        string        `json:"busNumber"`
	PassengerName    string        `json:"passengerName"`
	MobileNumber     string        `json:"mobileNumber"`
	Email            string        `json:"email"`
	SeatNumber       int           `json:"seatNumber"`
	BoardingPlace    string        `json:"boardingPlace"`
	DestinationPlace string        `json:"destinationPlace"`
	TotalPrice       float64       `json:"totalPrice"`
	Status           BookingStatus `json:"status"`
	BookingToken     string        `json:"-"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// BookingSummary is the list projection; it never carries the token.
type BookingSummary struct {
	ID               int64         `json:"id"`
	TripID           int64         `json:"tripId"`
	BusNumber        string        `json:"busNumber"`
	SeatNumber       int           `json:"seatNumber"`
	PassengerName    string        `json:"passengerName"`
	BoardingPlace    string        `json:"boardingPlace"`
	DestinationPlace string        `json:"destinationPlace"`
	TotalPrice       float64       `json:"totalPrice"`
	Status           BookingStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
}

func (b Booking) Summary() BookingSummary {
	return BookingSummary{
		ID:               b.ID,
		TripID:           b.TripID,
		BusNumber:        b.BusNumber,
		SeatNumber:       b.SeatNumber,
		PassengerName:    b.PassengerName,
		BoardingPlace:    b.BoardingPlace,
		DestinationPlace: b.DestinationPlace,
		TotalPrice:       b.TotalPrice,
		Status:           b.Status,
		CreatedAt:        b.CreatedAt,
	}
}

// BookSeatInput carries passenger details for a seat request.
type BookSeatInput struct {
	TripID           int64   `json:"tripId" binding:"required,gt=0"`
	PassengerName    string  `json:"passengerName" binding:"required"`
	MobileNumber     string  `json:"mobileNumber" binding:"required"`
	Email            string  `json:"email" binding:"required,email"`
	SeatNumber       int     `json:"seatNumber" binding:"required,gt=0"`
	BoardingPlace    string  `json:"boardingPlace" binding:"required"`
	DestinationPlace string  `json:"destinationPlace" binding:"required"`
	TotalPrice       float64 `json:"totalPrice" binding:"gte=0"`
}
