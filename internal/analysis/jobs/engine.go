// Package jobs runs category analyses asynchronously and tracks their
// lifecycle.
//
// Submit records a PENDING job and returns its id at once; the analysis
// runs on its own goroutine. Every transition publishes a new immutable
// snapshot with a compare-and-swap from the expected predecessor, so a
// job moves forward only and is written terminally exactly once. Status
// never blocks on a running analysis.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
	"github.com/sciome/bmdexpress-web/internal/analysis/engine"
	"github.com/sciome/bmdexpress-web/internal/apperr"
	"github.com/sciome/bmdexpress-web/internal/logging"
	"github.com/sciome/bmdexpress-web/internal/metrics"
	projects "github.com/sciome/bmdexpress-web/internal/projects/domain"
)

// ErrNoResult is recorded when the analyzer returns neither a result nor
// an error.
var ErrNoResult = errors.New("analysis engine returned no result")

// Notifier is told about every published snapshot, in transition order
// for a given job. Implementations must not block.
type Notifier interface {
	Notify(job domain.Job)
}

type Option func(*Engine)

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithNotifiers(n ...Notifier) Option {
	return func(e *Engine) { e.notifiers = append(e.notifiers, n...) }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

type record struct {
	snap atomic.Pointer[domain.Job]
}

type Engine struct {
	analyzer  engine.Analyzer
	jobs      sync.Map // id -> *record
	notifiers []Notifier
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
	running   sync.WaitGroup
}

func New(analyzer engine.Analyzer, opts ...Option) *Engine {
	e := &Engine{
		analyzer: analyzer,
		log:      zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit validates the request, records a PENDING job and starts the
// analysis in the background. It returns without waiting for the
// analysis. Identical submissions get distinct jobs.
func (e *Engine) Submit(ctx context.Context, ref domain.ResultRef, analysisType domain.AnalysisType, params map[string]any) (string, error) {
	if ref.BMD == nil {
		return "", apperr.Validation("a BMD result is required")
	}
	if _, err := domain.ParseAnalysisType(string(analysisType)); err != nil {
		return "", err
	}
	resultName := ref.ResultName
	if resultName == "" {
		resultName = ref.BMD.Name
	}

	job := &domain.Job{
		ProjectID:     ref.ProjectID,
		BMDResultName: resultName,
		AnalysisType:  analysisType,
		Parameters:    maps.Clone(params),
		Status:        domain.StatusPending,
		SubmittedAt:   e.now().UTC(),
	}
	rec := &record{}
	for {
		job.ID = e.newID()
		rec.snap.Store(job)
		if _, loaded := e.jobs.LoadOrStore(job.ID, rec); !loaded {
			break
		}
	}

	log := logging.FromContext(ctx, e.log)
	log.Info("category analysis submitted",
		zap.String("analysis_id", job.ID),
		zap.String("project_id", job.ProjectID),
		zap.String("bmd_result", resultName),
		zap.String("analysis_type", string(analysisType)))
	e.metrics.RecordJobSubmitted(string(analysisType))
	e.notify(*job)

	req := engine.Request{
		JobID:         job.ID,
		AnalysisType:  analysisType,
		BMDResultName: resultName,
		BMDResult:     ref.BMD,
		Parameters:    maps.Clone(params),
	}
	e.running.Add(1)
	go e.run(context.WithoutCancel(ctx), rec, req, log)

	return job.ID, nil
}

// Status returns the current snapshot of a job.
func (e *Engine) Status(id string) (domain.Job, error) {
	v, ok := e.jobs.Load(id)
	if !ok {
		return domain.Job{}, apperr.NotFound("analysis %q not found", id)
	}
	return *v.(*record).snap.Load(), nil
}

// Counts returns the number of jobs per status.
func (e *Engine) Counts() map[domain.Status]int {
	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, s := range domain.Statuses {
		counts[s] = 0
	}
	e.jobs.Range(func(_, v any) bool {
		counts[v.(*record).snap.Load().Status]++
		return true
	})
	return counts
}

// Wait blocks until every started analysis has finished or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) run(ctx context.Context, rec *record, req engine.Request, log *zap.Logger) {
	defer e.running.Done()
	log = log.With(zap.String("analysis_id", req.JobID))

	started := e.now().UTC()
	if _, ok := e.transition(rec, domain.StatusPending, func(j *domain.Job) {
		j.Status = domain.StatusRunning
		j.StartedAt = &started
	}); !ok {
		return
	}

	result, err := e.analyze(ctx, req)
	if err == nil && result == nil {
		err = ErrNoResult
	}

	finished := e.now().UTC()
	if err != nil {
		failure := apperr.Execution(err)
		e.transition(rec, domain.StatusRunning, func(j *domain.Job) {
			j.Status = domain.StatusFailed
			j.CompletedAt = &finished
			j.ErrorMessage = failure.Error()
		})
		e.metrics.RecordJobFinished(string(domain.StatusFailed), finished.Sub(started))
		log.Error("category analysis failed", zap.Error(failure))
		return
	}

	e.transition(rec, domain.StatusRunning, func(j *domain.Job) {
		j.Status = domain.StatusCompleted
		j.CompletedAt = &finished
		j.Result = result
	})
	e.metrics.RecordJobFinished(string(domain.StatusCompleted), finished.Sub(started))
	log.Info("category analysis completed",
		zap.Int("categories", len(result.Categories)),
		zap.Duration("elapsed", finished.Sub(started)))
}

func (e *Engine) analyze(ctx context.Context, req engine.Request) (res *projects.CategoryResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("analysis engine panicked: %v", r)
		}
	}()
	return e.analyzer.Analyze(ctx, req)
}

// transition publishes mutate(current) if the job is still in from.
func (e *Engine) transition(rec *record, from domain.Status, mutate func(*domain.Job)) (domain.Job, bool) {
	for {
		cur := rec.snap.Load()
		if cur.Status != from {
			return *cur, false
		}
		next := *cur
		mutate(&next)
		if rec.snap.CompareAndSwap(cur, &next) {
			e.notify(next)
			return next, true
		}
	}
}

func (e *Engine) notify(job domain.Job) {
	for _, n := range e.notifiers {
		n.Notify(job)
	}
}
