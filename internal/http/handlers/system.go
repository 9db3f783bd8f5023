package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GET /api/health always answers 200; a failed ping is reported in the body.
func (h Handler) Health(c *gin.Context) {
	status := gin.H{"status": "ok", "message": "bus booking backend running"}
	if h.DB == nil {
		status["store"] = "memory"
		c.JSON(http.StatusOK, status)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	status["store"] = "mysql"
	if err := h.DB.PingContext(ctx); err != nil {
		status["db"] = "unreachable"
	}
	c.JSON(http.StatusOK, status)
}
