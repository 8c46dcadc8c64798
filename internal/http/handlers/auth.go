package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
	"github.com/ZiyadBin/rain-system/internal/http/middleware"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var in models.LoginInput
	if !BindJSONOrError(c, &in) {
		return
	}
	token, user, err := h.Auth.Login(in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "auth", "login", "username="+user.Username)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
		"message": "Login successful",
	})
}

// POST /api/auth/logout. Tokens are stateless; the client drops its copy.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful"})
}

// GET /api/auth/verify
func (h *Handler) Verify(c *gin.Context) {
	who := middleware.GetIdentity(c)
	if who.Role == "" {
		RespondDomainError(c, domain.UnauthorizedError{Msg: "valid bearer token required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": who})
}

// GET /api/auth/users
func (h *Handler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.Auth.Users()})
}
