package handlers

import (
	"context"

	"busbooking/internal/services"
)

// Pinger reports backing store health; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler carries the services the HTTP surface calls into.
type Handler struct {
	Auth      services.AuthService
	Inventory services.InventoryService
	Bookings  services.BookingService
	Payments  services.PaymentService
	Trips     services.TripService
	Docs      services.DocsService
	DB        Pinger
}
