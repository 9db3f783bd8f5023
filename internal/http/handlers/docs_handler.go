package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/commuters/bookings/:id/e-ticket returns the e-ticket inline.
func (h Handler) ETicket(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := h.Docs.ETicket(c.Request.Context(), actor, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
