package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRecordRequest(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())
	m.RecordRequest("createOrder", http.MethodPost, 303, 120*time.Millisecond)
	m.RecordRequest("", http.MethodGet, 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("createOrder", "POST", "303")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("unknown", "GET", "404")))
}

func TestRecordSubmission(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())
	m.RecordSubmission("createOrder", OutcomeError)
	m.RecordSubmission("createOrder", OutcomeError)
	m.RecordSubmission("createOrder", OutcomeSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("createOrder", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("createOrder", OutcomeSuccess)))
}

func TestMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry("test", reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.NoRoute(func(c *gin.Context) {
		c.Set(PageKey, "collective")
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/webpack", "/babel", "/health"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("collective", "GET", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInProgress))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry("frontend", reg)
	m.RecordSubmission("createEvent", OutcomeSuccess)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `frontend_form_submissions_total{outcome="success",page="createEvent"} 1`))
}
