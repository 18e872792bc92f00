package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
)

type counter int

func (c counter) Len() int { return int(c) }

type jobCounts map[domain.Status]int

func (j jobCounts) Counts() map[domain.Status]int { return j }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		ping func(*gin.Context) error
		want string
	}{
		{nil, "disabled"},
		{func(*gin.Context) error { return nil }, "up"},
		{func(*gin.Context) error { return errors.New("refused") }, "down"},
	}
	for _, tc := range cases {
		r := gin.New()
		NewHealthHandler("bmdexpress-web", "1.2.3", counter(2), jobCounts{domain.StatusRunning: 1}, tc.ping).RegisterRoutes(r)

		for _, path := range []string{"/health", "/healthz"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "healthy", body.Status)
			assert.Equal(t, "1.2.3", body.Version)
			assert.Equal(t, 2, body.Projects)
			assert.Equal(t, 1, body.Jobs["RUNNING"])
			assert.Equal(t, tc.want, body.Redis)
		}
	}
}
