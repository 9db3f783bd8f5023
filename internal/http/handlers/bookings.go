package handlers

import (
	"net/http"

	"busbooking/internal/domain/models"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/commuters/book-seat
func (h Handler) BookSeat(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req models.BookSeatInput
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Bookings.Book(c.Request.Context(), actor, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Seat booked successfully", "booking": b})
}

// PUT /api/commuters/cancel-booking
func (h Handler) CancelBooking(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req services.CancelInput
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Bookings.Cancel(c.Request.Context(), actor, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking canceled successfully", "booking": b})
}

// GET /api/commuters/my-bookings
func (h Handler) MyBookings(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	list, err := h.Bookings.ListByUser(c.Request.Context(), actor.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// GET /api/bookings/trips/:tripId/bookings
func (h Handler) TripBookings(c *gin.Context) {
	tripID, ok := parseIDParam(c, "tripId")
	if !ok {
		return
	}
	list, err := h.Bookings.ListByTrip(c.Request.Context(), tripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bookings retrieved successfully", "bookings": list})
}

// DELETE /api/bookings/bookings/:bookingId/cancel
func (h Handler) AdminCancelBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "bookingId")
	if !ok {
		return
	}
	b, err := h.Bookings.AdminCancel(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking canceled successfully", "booking": b})
}

// GET /api/operators/bookings
func (h Handler) OperatorBookings(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	list, err := h.Bookings.ListForOperator(c.Request.Context(), actor.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}
