package handlers

import (
	"net/http"

	"busbooking/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// POST /api/trips
func (h Handler) CreateTrip(c *gin.Context) {
	var req models.CreateTripInput
	if !BindJSONOrError(c, &req) {
		return
	}
	trip, err := h.Trips.CreateTrip(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Trip created successfully", "trip": trip})
}

// GET /api/trips/:id
func (h Handler) GetTrip(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	trip, err := h.Trips.GetTrip(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// GET /api/commuters/trips/:id/seats
func (h Handler) SeatMatrix(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	matrix, err := h.Inventory.SeatMatrix(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seatMatrix": matrix})
}

type cancelTripRequest struct {
	TripID int64 `json:"tripId" binding:"required,gt=0"`
}

// POST /api/operators/cancel-trip
func (h Handler) CancelTrip(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req cancelTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	trip, err := h.Trips.CancelTrip(c.Request.Context(), actor, req.TripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip cancelled and commuters notified.", "trip": trip})
}
