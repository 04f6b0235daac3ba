package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/page"
	"github.com/opencollective/frontend/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type sessionBackend struct {
	page.Backend
	token string
}

func (b *sessionBackend) LoggedInUser(context.Context) (*domain.User, error) {
	switch b.token {
	case "good":
		return &domain.User{ID: 3, Email: "me@example.com"}, nil
	case "":
		return nil, nil
	default:
		return nil, errors.New("invalid token")
	}
}

func sessionRouter(t *testing.T) (*gin.Engine, *[]string) {
	t.Helper()
	var tokens []string
	factory := func(token string) Backend {
		tokens = append(tokens, token)
		return &sessionBackend{token: token}
	}

	r := gin.New()
	r.GET("/", Session(factory, zap.NewNop()), func(c *gin.Context) {
		b, ok := GetBackendFromContext(c)
		require.True(t, ok)
		user, loggedIn := GetUserFromContext(c)
		email := ""
		if loggedIn {
			email = user.Email
		}
		c.JSON(http.StatusOK, gin.H{"token": b.(*sessionBackend).token, "email": email})
	})
	return r, &tokens
}

func TestSession(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(r *http.Request)
		wantBody  string
		wantCalls []string
	}{
		{
			name:      "anonymous",
			setup:     func(*http.Request) {},
			wantBody:  `{"token":"","email":""}`,
			wantCalls: []string{""},
		},
		{
			name:      "bearer token",
			setup:     func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			wantBody:  `{"token":"good","email":"me@example.com"}`,
			wantCalls: []string{"good"},
		},
		{
			name:      "cookie token",
			setup:     func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"}) },
			wantBody:  `{"token":"good","email":"me@example.com"}`,
			wantCalls: []string{"good"},
		},
		{
			name:      "invalid token degrades to anonymous",
			setup:     func(r *http.Request) { r.Header.Set("Authorization", "Bearer expired") },
			wantBody:  `{"token":"","email":""}`,
			wantCalls: []string{"expired", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, calls := sessionRouter(t)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, tt.wantCalls, *calls)
		})
	}
}

func TestVisitorState(t *testing.T) {
	store := storage.Memory{}
	r := gin.New()
	r.GET("/", VisitorState(memoryProvider{store}, zap.NewNop()), func(c *gin.Context) {
		_, ok := GetStoreFromContext(c)
		assert.True(t, ok)
		c.Status(http.StatusNoContent)
	})

	serve := func(target string) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	serve("/?referral=-4&matchingFund=")
	assert.Empty(t, store)

	serve("/?referral=12&matchingFund=fund-1")
	assert.Equal(t, "12", store[storage.KeyReferral])
	assert.Equal(t, "fund-1", store[storage.KeyMatchingFund])

	serve("/?referral=abc")
	assert.Equal(t, "12", store[storage.KeyReferral])
}

type memoryProvider struct {
	store storage.Memory
}

func (p memoryProvider) ForRequest(http.ResponseWriter, *http.Request) storage.Store {
	return p.store
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logging(zap.NewNop()))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "5b0b8a53-7a44-4b8f-9f6b-2f3c1d1b0a11")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "5b0b8a53-7a44-4b8f-9f6b-2f3c1d1b0a11", w.Header().Get(RequestIDHeader))
}
