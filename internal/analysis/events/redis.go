package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
)

const (
	jobEventChannelPrefix = "bmd:jobs:events:" // Pub/Sub channel for job events: bmd:jobs:events:{analysis_id}
	publishTimeout        = 2 * time.Second
	publishQueueSize      = 256
)

// Channel returns the Redis pub/sub channel carrying the events of a job.
func Channel(jobID string) string {
	return jobEventChannelPrefix + jobID
}

// RedisPublisher publishes every job snapshot as JSON on Channel(job.ID).
// Notify only enqueues; a single worker publishes in order. Events are
// dropped when the queue is full, and failures are logged and never
// reach the job engine.
type RedisPublisher struct {
	client *redis.Client
	log    *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Job
	done   chan struct{}
}

func NewRedisPublisher(client *redis.Client, log *zap.Logger) *RedisPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	p := &RedisPublisher{
		client: client,
		log:    log,
		queue:  make(chan domain.Job, publishQueueSize),
		done:   make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *RedisPublisher) Notify(job domain.Job) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- job:
	default:
		p.log.Warn("job event queue full, dropping event",
			zap.String("analysis_id", job.ID), zap.String("status", string(job.Status)))
	}
}

// Close stops accepting events and waits until the queued ones are
// published or ctx is done.
func (p *RedisPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *RedisPublisher) loop() {
	defer close(p.done)
	for job := range p.queue {
		p.publish(job)
	}
}

func (p *RedisPublisher) publish(job domain.Job) {
	data, err := json.Marshal(job)
	if err != nil {
		p.log.Error("failed to marshal job event", zap.String("analysis_id", job.ID), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.client.Publish(ctx, Channel(job.ID), data).Err(); err != nil {
		p.log.Warn("failed to publish job event", zap.String("analysis_id", job.ID), zap.Error(err))
	}
}

// NewRedisClient connects to the server described by url
// (redis://[:password@]host:port/db) and verifies it with a PING.
// Command deadlines follow the caller's context.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	opts.ContextTimeoutEnabled = true
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
