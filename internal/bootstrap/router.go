package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	analysishttp "github.com/sciome/bmdexpress-web/internal/analysis/http"
	"github.com/sciome/bmdexpress-web/internal/analysis/events"
	"github.com/sciome/bmdexpress-web/internal/analysis/jobs"
	httpapi "github.com/sciome/bmdexpress-web/internal/api/http"
	"github.com/sciome/bmdexpress-web/internal/api/http/middleware"
	"github.com/sciome/bmdexpress-web/internal/metrics"
	projectshttp "github.com/sciome/bmdexpress-web/internal/projects/http"
	"github.com/sciome/bmdexpress-web/internal/projects/registry"
	"github.com/sciome/bmdexpress-web/internal/projects/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string

	Registry *registry.Registry
	Projects *service.ProjectService
	Jobs     *jobs.Engine
	Broker   *events.Broker
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	// RedisPing reports the Redis mirror's health; nil when disabled.
	RedisPing func(*gin.Context) error
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))
	r.Use(middleware.MetricsMiddleware(dep.Metrics))
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Registry, dep.Jobs, dep.RedisPing)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(dep.Metrics.Handler()))

	api := r.Group("/api")

	projectsHandler := projectshttp.New(dep.Projects, dep.Log)
	projectsHandler.Register(api.Group("/projects"))

	analysisHandler := analysishttp.New(dep.Jobs, dep.Projects, dep.Broker, dep.Log)
	analysisHandler.Register(api.Group("/category-analysis"))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, middleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader, "Content-Disposition", "Location"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
