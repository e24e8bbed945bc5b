package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-api/internal/authz"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/database"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/models"
)

// LoadCaller resolves the authenticated user into an authz.Caller
// snapshot and stores it in the context. Every authorization decision
// downstream runs against this snapshot, never against ambient state.
func LoadCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().First(&user, userID).Error; err != nil {
			// Session references a deleted account
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyCaller, authz.CallerFrom(&user))
		c.Next()
	}
}

// RequireRole gates a route group to a single role. Must run after
// LoadCaller.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, exists := GetCaller(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if caller.Role != role {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetCaller retrieves the resolved caller snapshot from context
func GetCaller(c *gin.Context) (authz.Caller, bool) {
	value, exists := c.Get(constants.ContextKeyCaller)
	if !exists {
		return authz.Caller{}, false
	}

	caller, ok := value.(authz.Caller)
	return caller, ok
}
