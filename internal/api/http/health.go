package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
)

type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Service   string         `json:"service"`
	Version   string         `json:"version"`
	Projects  int            `json:"projects"`
	Jobs      map[string]int `json:"jobs"`
	Redis     string         `json:"redis"`
}

// ProjectCounter reports the number of registered projects.
type ProjectCounter interface {
	Len() int
}

// JobCounter reports the number of analysis jobs per status.
type JobCounter interface {
	Counts() map[domain.Status]int
}

type HealthHandler struct {
	serviceName string
	version     string
	projects    ProjectCounter
	jobs        JobCounter
	redisPing   func(*gin.Context) error
}

// NewHealthHandler creates the health endpoint. redisPing may be nil when
// no Redis mirror is configured.
func NewHealthHandler(serviceName, version string, projects ProjectCounter, jobs JobCounter, redisPing func(*gin.Context) error) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		projects:    projects,
		jobs:        jobs,
		redisPing:   redisPing,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	redisStatus := "disabled"
	if h.redisPing != nil {
		if err := h.redisPing(c); err != nil {
			redisStatus = "down"
		} else {
			redisStatus = "up"
		}
	}

	jobs := make(map[string]int)
	for status, n := range h.jobs.Counts() {
		jobs[string(status)] = n
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Projects:  h.projects.Len(),
		Jobs:      jobs,
		Redis:     redisStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
