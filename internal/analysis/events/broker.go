// Package events fans job transitions out to interested parties.
//
// Broker delivers snapshots to in-process subscribers, each through its
// own buffered channel. RedisPublisher mirrors them onto Redis pub/sub
// for other processes.
package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
)

// subscriptionBuffer holds every transition a job can make, so a
// subscriber that reads slowly still sees the terminal snapshot.
const subscriptionBuffer = 4

// Subscription receives the snapshots of one job. The channel is closed
// after the terminal snapshot or when Close is called.
type Subscription struct {
	JobID string

	ch     chan domain.Job
	broker *Broker
}

// C returns the delivery channel.
func (s *Subscription) C() <-chan domain.Job {
	return s.ch
}

// Close unregisters the subscription and closes its channel. It is safe
// to call more than once and after the job finished.
func (s *Subscription) Close() {
	s.broker.remove(s)
}

type Broker struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
	log  *zap.Logger
}

func NewBroker(log *zap.Logger) *Broker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broker{
		subs: make(map[string]map[*Subscription]struct{}),
		log:  log,
	}
}

func (b *Broker) Subscribe(jobID string) *Subscription {
	s := &Subscription{
		JobID:  jobID,
		ch:     make(chan domain.Job, subscriptionBuffer),
		broker: b,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[jobID]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[jobID] = set
	}
	set[s] = struct{}{}
	return s
}

// Notify delivers job to the subscribers of job.ID. A terminal snapshot
// closes and unregisters all of them.
func (b *Broker) Notify(job domain.Job) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subs[job.ID]
	for s := range set {
		select {
		case s.ch <- job:
		default:
			b.log.Warn("job event dropped for slow subscriber",
				zap.String("analysis_id", job.ID), zap.String("status", string(job.Status)))
		}
		if job.Status.Terminal() {
			close(s.ch)
		}
	}
	if job.Status.Terminal() {
		delete(b.subs, job.ID)
	}
}

// Subscribers returns the number of open subscriptions for jobID.
func (b *Broker) Subscribers(jobID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[jobID])
}

func (b *Broker) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[s.JobID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.ch)
	if len(set) == 0 {
		delete(b.subs, s.JobID)
	}
}
