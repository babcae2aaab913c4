// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Session contains the authenticated user's session, carried explicitly
// through context rather than read from ambient storage.
type Session struct {
	UserID string
	Email  string
	Roles  []string
}

type sessionContextKey struct{}

// WithSession adds Session to context.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// GetSession returns Session from context.
func GetSession(ctx context.Context) *Session {
	if v, ok := ctx.Value(sessionContextKey{}).(*Session); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.UserID
	}
	return ""
}

// HasRole checks if the session carries the given role.
func HasRole(ctx context.Context, role string) bool {
	s := GetSession(ctx)
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}
