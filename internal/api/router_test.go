package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/api/handlers"
	"github.com/opencollective/frontend/internal/api/middleware"
	"github.com/opencollective/frontend/internal/config"
	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/metrics"
	"github.com/opencollective/frontend/internal/static"
	"github.com/opencollective/frontend/internal/storage"
	"github.com/opencollective/frontend/internal/view"
	"github.com/opencollective/frontend/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBackend struct {
	mu       sync.Mutex
	token    string
	orders   []domain.OrderInput
	order    *domain.Order
	orderErr error
}

func (f *fakeBackend) Collective(_ context.Context, slug string) (*domain.Collective, error) {
	if slug != "webpack" {
		return nil, &errors.ErrNotFound{Resource: "collective", ID: slug}
	}
	return &domain.Collective{ID: 42, Slug: "webpack", Name: "Webpack", Type: domain.CollectiveTypeCollective, Currency: "USD"}, nil
}

func (f *fakeBackend) Event(ctx context.Context, slug string) (*domain.Collective, error) {
	return f.Collective(ctx, slug)
}

func (f *fakeBackend) Events(context.Context, string, int, int) ([]domain.Collective, error) {
	return nil, nil
}

func (f *fakeBackend) Search(_ context.Context, term string, limit, offset int) (*domain.SearchResult, error) {
	return &domain.SearchResult{Limit: limit, Offset: offset}, nil
}

func (f *fakeBackend) Collectives(context.Context, domain.CollectivesQuery) ([]domain.Collective, error) {
	return nil, nil
}

func (f *fakeBackend) CreateOrder(_ context.Context, order domain.OrderInput) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, order)
	return f.order, f.orderErr
}

func (f *fakeBackend) CreateEvent(context.Context, domain.EventInput) (*domain.Collective, error) {
	return nil, stderrors.New("not implemented")
}

func (f *fakeBackend) EditEvent(context.Context, domain.EventInput) (*domain.Collective, error) {
	return nil, stderrors.New("not implemented")
}

func (f *fakeBackend) LoggedInUser(context.Context) (*domain.User, error) {
	if f.token == "valid" {
		return &domain.User{ID: 1, Email: "me@example.com"}, nil
	}
	if f.token != "" {
		return nil, stderrors.New("GraphQL error: invalid token")
	}
	return nil, nil
}

type testServer struct {
	router  *gin.Engine
	backend *fakeBackend
	reg     *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static", "images", "buttons"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "images", "buttons", "donate-button-white.png"), []byte("white-png"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "widget.js"), []byte("load('{{host}}/{{ collectiveSlug }}')"), 0o644))

	cfg := &config.Config{
		Environment: "test",
		WebsiteURL:  "https://example.org",
		StaticDir:   filepath.Join(dir, "static"),
	}

	backend := &fakeBackend{
		order: &domain.Order{
			ID:             1001,
			Status:         "PAID",
			FromCollective: domain.Ref{ID: 5, Slug: "jane"},
			Transactions:   []domain.Transaction{{ID: 77}},
		},
	}
	renderer, err := view.NewRenderer(logger)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()

	router, err := NewRouter(cfg, Services{
		Backends: func(token string) middleware.Backend {
			backend.token = token
			return backend
		},
		Visitors: storage.NewCookieProvider("test-secret", false, logger),
		Renderer: renderer,
		Responder: static.NewResponder(static.Config{
			StaticDir:    cfg.StaticDir,
			TemplatesDir: filepath.Join(dir, "templates"),
			Host:         cfg.WebsiteURL,
		}, logger),
		Metrics:  metrics.NewWithRegistry("test", reg),
		Gatherer: reg,
	}, logger)
	require.NoError(t, err)

	return &testServer{router: router, backend: backend, reg: reg}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRenderCheckout(t *testing.T) {
	s := newTestServer(t)
	w := s.do(httptest.NewRequest(http.MethodGet, "/webpack/donate/25", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Contribute - Webpack")
	assert.Contains(t, w.Body.String(), `name="totalAmount" value="2500"`)
}

func TestRenderJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/webpack/donate/25/monthly?quantity=2", nil)
	req.Header.Set("Accept", "application/json")
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Page  string `json:"page"`
		State string `json:"state"`
		Data  struct {
			Params struct {
				TotalAmount int    `json:"totalAmount"`
				Quantity    int    `json:"quantity"`
				Interval    string `json:"interval"`
			} `json:"params"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "createOrder", body.Page)
	assert.Equal(t, string(domain.PageStateReady), body.State)
	assert.Equal(t, 2500, body.Data.Params.TotalAmount)
	assert.Equal(t, 2, body.Data.Params.Quantity)
	assert.Equal(t, "month", body.Data.Params.Interval)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/a/b/c/d/e/f", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")

	w = s.do(httptest.NewRequest(http.MethodGet, "/unknown-collective", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "This collective does not exist.")
}

func TestAssets(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/webpack/donate/button.png?color=green", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "white-png", w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodGet, "/webpack/donate/button@2x.png?color=blue", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/webpack/donate/button.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/javascript", w.Header().Get("Content-Type"))
	assert.Equal(t, "load('https://example.org/webpack')", w.Body.String())
}

func TestSubmitOrder_InAppRedirect(t *testing.T) {
	s := newTestServer(t)
	w := s.do(postForm("/webpack/donate/25", url.Values{
		"email":                  {"jane@example.com"},
		"paymentMethod[type]":    {"creditcard"},
		"paymentMethod[token]":   {"tok_1"},
		"paymentMethod[unknown]": {"dropped"},
	}))
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/jane", location.Path)
	assert.Equal(t, "1001", location.Query().Get("OrderId"))
	assert.Equal(t, "PAID", location.Query().Get("status"))
	assert.Equal(t, "creditcard", location.Query().Get("paymentMethodType"))

	require.Len(t, s.backend.orders, 1)
	order := s.backend.orders[0]
	assert.Equal(t, 2500, order.TotalAmount)
	require.NotNil(t, order.User)
	assert.Equal(t, "jane@example.com", order.User.Email)
	assert.Equal(t, "tok_1", order.PaymentMethod.Token)
}

func TestSubmitOrder_ExternalRedirect(t *testing.T) {
	s := newTestServer(t)
	w := s.do(postForm("/webpack/donate/5?redirect="+url.QueryEscape("https://shop.example.com/done"), url.Values{}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://shop.example.com/done?status=PAID&transactionid=77", w.Header().Get("Location"))
}

func TestSubmitOrder_JSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/webpack/donate", strings.NewReader(
		`{"totalAmount": 1500, "paymentMethod": {"type": "creditcard", "cvc": "123"}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp handlers.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Location, "/jane?"))
	assert.True(t, resp.Redirect.ScrollTop)
	assert.Equal(t, "Order processed successfully", resp.Result.Success)
	assert.Equal(t, 1500, s.backend.orders[0].TotalAmount)
}

func TestSubmitOrder_ValidationError(t *testing.T) {
	s := newTestServer(t)
	w := s.do(postForm("/webpack/donate", url.Values{"interval": {"weekly"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Interval must be month or year")
	assert.Empty(t, s.backend.orders)
}

func TestSubmitOrder_BackendError(t *testing.T) {
	s := newTestServer(t)
	s.backend.orderErr = stderrors.New("GraphQL error: Your card was declined.")

	w := s.do(postForm("/webpack/donate/25", url.Values{}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `<div class="error">Your card was declined.</div>`)
	assert.NotContains(t, w.Body.String(), "GraphQL error")
}

func TestSubmitOrder_ReferralFromCampaignLink(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/webpack?referral=12&matchingFund=fund-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := postForm("/webpack/donate/25", url.Values{})
	req.AddCookie(cookies[len(cookies)-1])
	w = s.do(req)
	require.Equal(t, http.StatusSeeOther, w.Code)

	require.Len(t, s.backend.orders, 1)
	require.NotNil(t, s.backend.orders[0].Referral)
	assert.Equal(t, 12, s.backend.orders[0].Referral.ID)
}

func TestSubmitOrder_LoggedInUser(t *testing.T) {
	s := newTestServer(t)
	req := postForm("/webpack/donate/25", url.Values{"email": {"other@example.com"}})
	req.Header.Set("Authorization", "Bearer valid")
	w := s.do(req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, s.backend.orders, 1)
	assert.Nil(t, s.backend.orders[0].User)
}

func TestSubmit_PageWithoutForm(t *testing.T) {
	s := newTestServer(t)
	w := s.do(postForm("/search", url.Values{}))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = s.do(httptest.NewRequest(http.MethodPut, "/webpack", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(postForm("/webpack/donate/25", url.Values{}))

	w := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_form_submissions_total{outcome="success",page="createOrder"} 1`)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="POST",page="createOrder",status_code="303"} 1`)
}
