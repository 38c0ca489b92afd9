package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/slotwise/slotwise-api/internal/middleware"
	"github.com/slotwise/slotwise-api/internal/models"
)

// currentClaims extracts the verified JWT claims the auth middleware stored.
func currentClaims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
