package controllers

import (
	"net/http"
	"strings"

	"kpi-management-api/models"
	"kpi-management-api/services"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user loaded by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("currentUser")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication context missing"})
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user context"})
		return nil, false
	}
	return user, true
}

// clientMeta captures request attribution for the activity log.
func clientMeta(c *gin.Context) *services.ClientMeta {
	meta := &services.ClientMeta{IPAddress: c.ClientIP()}
	if ua := strings.TrimSpace(c.GetHeader("User-Agent")); ua != "" {
		meta.UserAgent = ua
	}
	return meta
}

// respondServiceError maps workflow errors onto HTTP statuses. Guard
// violations carry display-safe reasons; everything else is opaque.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsGuardViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case services.IsConfigurationError(err):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
