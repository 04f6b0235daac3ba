// Package e2e drives a real browser against a running frontend. The helpers
// sign users in through the API, create fixtures and fill the checkout forms.
package e2e

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/backend"
)

// DefaultTestUserEmail is the seeded admin of the test database
const DefaultTestUserEmail = "testuser+admin@opencollective.com"

const defaultTimeout = 30 * time.Second

type SessionConfig struct {
	BaseURL  string
	Headless bool
	Timeout  time.Duration
}

// Session is a browser tab pointed at the frontend plus the API client the
// helpers use for fixtures
type Session struct {
	BaseURL string
	API     *backend.Client
	Browser *rod.Browser
	Page    *rod.Page

	timeout  time.Duration
	launcher *launcher.Launcher
	logger   *zap.Logger
}

// NewSession launches a browser and opens a blank tab
func NewSession(ctx context.Context, cfg SessionConfig, api *backend.Client, logger *zap.Logger) (*Session, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	l := launcher.New().Headless(cfg.Headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &Session{
		BaseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		API:      api,
		Browser:  browser,
		Page:     page,
		timeout:  timeout,
		launcher: l,
		logger:   logger,
	}, nil
}

// Close shuts the browser down
func (s *Session) Close() {
	if err := s.Browser.Close(); err != nil {
		s.logger.Warn("Failed to close browser", zap.Error(err))
	}
	s.launcher.Cleanup()
}

// Visit navigates the tab to path (or an absolute URL) and waits for load
func (s *Session) Visit(ctx context.Context, path string) error {
	target, err := ResolveURL(s.BaseURL, path)
	if err != nil {
		return err
	}

	page := s.Page.Context(ctx).Timeout(s.timeout)
	if err := page.Navigate(target); err != nil {
		return fmt.Errorf("failed to visit %s: %w", target, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", target, err)
	}
	return nil
}

// ResolveURL resolves ref against base. Absolute refs are returned as is.
func ResolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

// RandomEmail returns a fresh address for signup tests
func RandomEmail() string {
	return fmt.Sprintf("oc-test-%s@opencollective.com", strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}
