package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciome/bmdexpress-web/internal/logging"
	"github.com/sciome/bmdexpress-web/internal/metrics"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, logs := logging.NewObserved()

	var seen string
	r := gin.New()
	r.Use(RequestIDMiddleware(log))
	r.GET("/x", func(c *gin.Context) {
		seen = logging.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "given-id", seen)
	assert.Equal(t, "given-id", rec.Header().Get(RequestIDHeader))
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusTeapot, entries[0].ContextMap()["status"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()

	r := gin.New()
	r.Use(MetricsMiddleware(m))
	r.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/projects/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	n, err := testutil.GatherAndCount(m.Registry(), "bmdexpress_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
