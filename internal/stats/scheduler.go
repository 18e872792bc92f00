// Package stats periodically refreshes gauges and logs a summary of the
// loaded projects and analysis jobs.
package stats

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
	"github.com/sciome/bmdexpress-web/internal/metrics"
)

// ProjectCounter reports the number of registered projects.
type ProjectCounter interface {
	Len() int
}

// JobCounter reports the number of jobs per status.
type JobCounter interface {
	Counts() map[domain.Status]int
}

type Scheduler struct {
	cron     *cron.Cron
	projects ProjectCounter
	jobs     JobCounter
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewScheduler(projects ProjectCounter, jobs JobCounter, m *metrics.Metrics, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(),
		projects: projects,
		jobs:     jobs,
		metrics:  m,
		log:      log,
	}
}

// Start schedules the refresh on spec (standard cron syntax or
// descriptors such as "@every 1m") and starts the cron runner.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.Refresh); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("stats scheduler started", zap.String("schedule", spec))
	return nil
}

// Stop stops the runner and waits for a running refresh to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Refresh() {
	projects := s.projects.Len()
	counts := s.jobs.Counts()

	byStatus := make(map[string]int, len(counts))
	fields := []zap.Field{zap.Int("projects", projects)}
	for _, st := range domain.Statuses {
		byStatus[string(st)] = counts[st]
		fields = append(fields, zap.Int("jobs_"+string(st), counts[st]))
	}

	s.metrics.SetProjects(projects)
	s.metrics.SetJobCounts(byStatus)
	s.log.Info("workspace stats", fields...)
}
