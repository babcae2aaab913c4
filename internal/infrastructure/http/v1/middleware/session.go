package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/core/apperror"
	appctx "stockdesk/internal/core/context"
)

// TokenValidator validates session tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.Session, error)
}

// Session middleware validates the bearer token and puts the resulting
// session object into the request context.
func Session(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		sess, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithSession(c.Request.Context(), sess)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", sess.UserID)

		c.Next()
	}
}

// RequireRole middleware checks that the session carries one of the
// required roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := appctx.GetSession(c.Request.Context())
		if sess == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		for _, required := range roles {
			for _, role := range sess.Roles {
				if role == required {
					c.Next()
					return
				}
			}
		}
		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
