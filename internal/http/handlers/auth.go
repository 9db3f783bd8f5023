package handlers

import (
	"net/http"

	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/auth/signup
func (h Handler) Signup(c *gin.Context) {
	var req services.SignupInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Auth.Signup(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!", "user": u})
}

// POST /api/auth/login
func (h Handler) Login(c *gin.Context) {
	var req services.LoginInput
	if !BindJSONOrError(c, &req) {
		return
	}
	token, u, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully!", "token": token, "user": u})
}
