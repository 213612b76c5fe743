package middleware

import (
	"net/http"

	"equiplend/internal/access"
	"equiplend/internal/domain"
	"equiplend/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireOperation admits callers whose role may perform op.
func RequireOperation(op access.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		r, _ := role.(string)
		if !access.CanPerform(domain.UserRole(r), op) {
			response.CustomError(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
