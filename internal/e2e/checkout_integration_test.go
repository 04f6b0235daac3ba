//go:build integration

package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/backend"
	"github.com/opencollective/frontend/internal/config"
	"github.com/opencollective/frontend/internal/domain"
)

// These tests need a running frontend (WEBSITE_URL), its API (API_URL)
// seeded with the test accounts, and a local Chrome.
func newTestSession(t *testing.T) (*Session, context.Context) {
	t.Helper()
	if os.Getenv("WEBSITE_URL") == "" {
		t.Skip("WEBSITE_URL not set")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	logger := zap.NewNop()
	s, err := NewSession(ctx, SessionConfig{BaseURL: cfg.WebsiteURL, Headless: true}, backend.NewClient(cfg.API, logger), logger)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, ctx
}

func TestSignupAndDonate(t *testing.T) {
	s, ctx := newTestSession(t)

	collective, err := CreateCollective(ctx, s.API, domain.CollectiveTypeCollective, "")
	require.NoError(t, err)

	user, err := s.Signup(ctx, backend.SigninUser{FirstName: "Jane"}, "/"+collective.Slug+"/donate/10")
	require.NoError(t, err)
	assert.NotEmpty(t, user.Email)

	require.NoError(t, s.FillStripeInput(ctx, nil, DefaultCard))
	el, err := s.Page.Context(ctx).Element(`button[type="submit"]`)
	require.NoError(t, err)
	require.NoError(t, el.Click(proto.InputMouseButtonLeft, 1))
	require.NoError(t, s.Page.Context(ctx).WaitLoad())

	info, err := s.Page.Info()
	require.NoError(t, err)
	assert.Contains(t, info.URL, "status=")
}
