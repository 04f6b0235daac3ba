package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/page"
)

const (
	userKey    = "user"
	backendKey = "backend"

	// TokenCookie holds the API access token of a signed in visitor
	TokenCookie = "accessToken"
)

// Backend is the API client as seen by a request: the page operations plus
// the session lookup
type Backend interface {
	page.Backend
	LoggedInUser(ctx context.Context) (*domain.User, error)
}

// BackendFactory returns the client to use for a token, "" meaning anonymous
type BackendFactory func(token string) Backend

// Session resolves the visitor's token, from the Authorization header or
// the access token cookie, into the logged in user and a client acting on
// their behalf. An invalid token degrades to an anonymous session.
func Session(factory BackendFactory, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c.Request)
		client := factory(token)
		c.Set(backendKey, client)

		if token != "" {
			user, err := client.LoggedInUser(c.Request.Context())
			if err != nil {
				logger.Warn("Failed to resolve logged in user", zap.Error(err))
				c.Set(backendKey, factory(""))
			} else if user != nil {
				c.Set(userKey, user)
			}
		}

		c.Next()
	}
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// GetUserFromContext returns the logged in user, if any
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}

// GetBackendFromContext returns the client bound to the request session
func GetBackendFromContext(c *gin.Context) (Backend, bool) {
	v, ok := c.Get(backendKey)
	if !ok {
		return nil, false
	}
	b, ok := v.(Backend)
	return b, ok
}
