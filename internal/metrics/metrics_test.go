package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsMatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/book/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for _, path := range []string{"/api/book/1", "/api/book/2", "/nowhere"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/book/:id", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("unmatched", "GET", "404")))
}

func TestObserveHelpers(t *testing.T) {
	m := New()

	m.ObserveBookOperation("create", "ok")
	m.ObserveBookOperation("create", "ok")
	m.ObserveBookOperation("get", "not_found")
	m.ObserveLogin("failure")
	m.ObservePurge(3)
	m.ObservePurge(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookOperations.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookOperations.WithLabelValues("get", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TokensPurged))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBookOperation("list", "ok")
		m.ObserveLogin("success")
		m.ObservePurge(1)
	})
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveBookOperation("list", "ok")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `library_book_operations_total{operation="list",result="ok"} 1`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
