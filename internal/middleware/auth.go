package middleware

import (
	"context"
	"net/http"
	"strings"

	"equiplend/internal/domain"
	"equiplend/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// TokenVerifier validates a bearer token with the identity provider.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// UserProvisioner returns the local user row for an identity, creating it on
// first sight.
type UserProvisioner interface {
	Provision(ctx context.Context, identity domain.Identity) (*domain.User, error)
}

// JWTAuth verifies the bearer token, lazily provisions the user and sets
// user_id (int64), role, identity_id and email in the gin context.
func JWTAuth(verifier TokenVerifier, users UserProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.CustomError(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be Bearer <token>")
			c.Abort()
			return
		}

		identity, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := users.Provision(c.Request.Context(), identity)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("role", string(user.Role))
		c.Set("identity_id", identity.ID)
		c.Set("email", user.Email)
		c.Next()
	}
}

// CurrentActor reads the caller set by JWTAuth.
func CurrentActor(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:   c.GetInt64("user_id"),
		Role: domain.UserRole(c.GetString("role")),
	}
}
