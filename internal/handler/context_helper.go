package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sia-project/sia-api/internal/middleware"
	"github.com/sia-project/sia-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
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

func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// actorFromContext names the authenticated operator for audit entries.
func actorFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil && claims.Email != "" {
		return claims.Email
	}
	return "anonymous"
}
