package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/internal/middleware"
	"github.com/abogida/abogida-api/internal/models"
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

func callerFromContext(c *gin.Context) *models.CallerContext {
	value, exists := c.Get(middleware.ContextCallerKey)
	if !exists {
		return nil
	}
	cc, ok := value.(*models.CallerContext)
	if !ok {
		return nil
	}
	return cc
}
