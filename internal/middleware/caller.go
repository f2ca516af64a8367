package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/internal/models"
	"github.com/abogida/abogida-api/internal/service"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/response"
)

// ContextCallerKey is the gin context key storing the resolved caller.
const ContextCallerKey = "currentCaller"

// ResolveCaller turns the authenticated user into role-scoped caller context.
// Runs after JWT; resolution degrades to an unknown-role caller rather than
// rejecting the request, so read endpoints still answer.
func ResolveCaller(callers *service.CallerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		cc, err := callers.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextCallerKey, cc)
		c.Next()
	}
}
