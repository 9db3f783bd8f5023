package handlers

import (
	"net/http"

	"busbooking/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// POST /api/commuters/payments
func (h Handler) Pay(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req models.PayInput
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Payments.Pay(c.Request.Context(), actor, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Payment successful",
		"payment":      res.Payment,
		"bookingToken": res.BookingToken,
	})
}

// GET /api/commuters/payments/:bookingId
func (h Handler) GetPayment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "bookingId")
	if !ok {
		return
	}
	p, err := h.Payments.GetByBooking(c.Request.Context(), actor, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}
