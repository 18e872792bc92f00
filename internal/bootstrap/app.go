package bootstrap

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/config"
	"github.com/sciome/bmdexpress-web/internal/analysis/engine"
	"github.com/sciome/bmdexpress-web/internal/analysis/events"
	"github.com/sciome/bmdexpress-web/internal/analysis/jobs"
	"github.com/sciome/bmdexpress-web/internal/metrics"
	"github.com/sciome/bmdexpress-web/internal/projects/codec"
	"github.com/sciome/bmdexpress-web/internal/projects/registry"
	"github.com/sciome/bmdexpress-web/internal/projects/service"
	"github.com/sciome/bmdexpress-web/internal/stats"
)

const ServiceName = "bmdexpress-web"

// App holds the wired components of the API server.
type App struct {
	Router    *gin.Engine
	Registry  *registry.Registry
	Jobs      *jobs.Engine
	Metrics   *metrics.Metrics
	scheduler *stats.Scheduler
	redis     *redis.Client
	publisher *events.RedisPublisher
	log       *zap.Logger
}

// NewApp wires the server from cfg. Redis is connected only when
// REDIS_URL is set.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	m := metrics.New()
	reg := registry.New()
	broker := events.NewBroker(log.Named("events"))

	var analyzer engine.Analyzer = engine.Local{}
	if cfg.Analysis.EngineURL != "" {
		analyzer = engine.NewRemote(cfg.Analysis.EngineURL, cfg.Analysis.EngineTimeout)
		log.Info("using remote analysis engine", zap.String("url", cfg.Analysis.EngineURL))
	}

	notifiers := []jobs.Notifier{broker}
	var redisClient *redis.Client
	var publisher *events.RedisPublisher
	var redisPing func(*gin.Context) error
	if cfg.Redis.URL != "" {
		client, err := events.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		redisClient = client
		publisher = events.NewRedisPublisher(client, log.Named("redis"))
		notifiers = append(notifiers, publisher)
		redisPing = func(c *gin.Context) error {
			return client.Ping(c.Request.Context()).Err()
		}
		log.Info("job events mirrored to redis")
	}

	jobEngine := jobs.New(analyzer,
		jobs.WithLogger(log.Named("jobs")),
		jobs.WithMetrics(m),
		jobs.WithNotifiers(notifiers...),
	)
	projects := service.NewProjectService(codec.Codec{MaxDecodedBytes: cfg.Projects.MaxUploadBytes()}, reg, service.Config{
		ProjectsDir:    cfg.Projects.Dir,
		MaxUploadBytes: cfg.Projects.MaxUploadBytes(),
	}, log.Named("projects"), m)

	app := &App{
		Registry:  reg,
		Jobs:      jobEngine,
		Metrics:   m,
		redis:     redisClient,
		publisher: publisher,
		log:       log,
	}
	app.Router = BuildRouter(RouterDeps{
		ServiceName:    ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Registry:       reg,
		Projects:       projects,
		Jobs:           jobEngine,
		Broker:         broker,
		Metrics:        m,
		Log:            log.Named("http"),
		RedisPing:      redisPing,
	})

	if cfg.Analysis.StatsSchedule != "" {
		app.scheduler = stats.NewScheduler(reg, jobEngine, m, log.Named("stats"))
		if err := app.scheduler.Start(cfg.Analysis.StatsSchedule); err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
	}
	return app, nil
}

// Close stops the scheduler, waits for running analyses and queued job
// events until ctx is done and closes the Redis connection.
func (a *App) Close(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	var errs []error
	if err := a.Jobs.Wait(ctx); err != nil {
		a.log.Warn("analyses still running at shutdown", zap.Any("jobs", a.Jobs.Counts()))
		errs = append(errs, err)
	}
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close(ctx))
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
