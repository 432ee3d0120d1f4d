package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prodsmart/backend/internal/domain/user"
)

// SessionCookie carries the opaque session token.
const SessionCookie = "session_token"

// Small interfaces so tests can fake them easily.
type SessionResolver interface {
	UserID(ctx context.Context, token string) (string, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
	users    UserGetter
}

func NewAuthMiddleware(sessions SessionResolver, users UserGetter) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, users: users}
}

const (
	ctxUserIDKey = "auth.userID"
	ctxEmailKey  = "auth.email"
)

// RequireAuth resolves the session cookie to an identity before any resource
// logic runs. The user record is re-fetched on every request, so a session
// for a since-deleted user stops authenticating immediately.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)

		if err != nil || token == "" {
			abortUnauthenticated(c)
			return
		}

		userID, err := m.sessions.UserID(c.Request.Context(), token)

		if err != nil {
			abortUnauthenticated(c)
			return
		}

		u, err := m.users.GetByID(c.Request.Context(), userID)

		if err != nil {
			abortUnauthenticated(c)
			return
		}

		// Stash useful bits of identity on the context
		c.Set(ctxUserIDKey, u.ID)
		c.Set(ctxEmailKey, u.Email)

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "Authentication required",
	})
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
