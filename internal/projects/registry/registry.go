// Package registry holds the decoded projects of the running process.
//
// Sessions live only in memory and are keyed by a generated UUID. The
// registry is safe for concurrent use; reads never block writers to
// other keys.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sciome/bmdexpress-web/internal/apperr"
	"github.com/sciome/bmdexpress-web/internal/projects/domain"
)

// Session is a registered project plus its upload metadata. Sessions are
// never modified after registration.
type Session struct {
	ID               string
	Project          *domain.Project
	OriginalFilename string
	UploadedAt       time.Time
}

type Option func(*Registry)

// WithClock overrides the time source used for UploadedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithIDGenerator overrides the session id generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) { r.newID = gen }
}

type Registry struct {
	sessions sync.Map // id -> *Session
	count    atomic.Int64

	now   func() time.Time
	newID func() string
}

func New(opts ...Option) *Registry {
	r := &Registry{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores project under a fresh id and returns the stored
// session. The session is visible to Get, Exists and List as soon as
// Register returns.
func (r *Registry) Register(project *domain.Project, filename string) (*Session, error) {
	if project == nil {
		return nil, apperr.Validation("project is required")
	}
	s := &Session{
		Project:          project,
		OriginalFilename: filename,
		UploadedAt:       r.now().UTC(),
	}
	for {
		s.ID = r.newID()
		if _, loaded := r.sessions.LoadOrStore(s.ID, s); !loaded {
			break
		}
	}
	r.count.Add(1)
	return s, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	v, ok := r.sessions.Load(id)
	if !ok {
		return nil, apperr.NotFound("project %q not found", id)
	}
	return v.(*Session), nil
}

func (r *Registry) Exists(id string) bool {
	_, ok := r.sessions.Load(id)
	return ok
}

// Remove deletes the session and reports whether it was present.
// Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) bool {
	_, loaded := r.sessions.LoadAndDelete(id)
	if loaded {
		r.count.Add(-1)
	}
	return loaded
}

// List returns the registered ids in ascending order.
func (r *Registry) List() []string {
	ids := make([]string, 0, r.Len())
	r.sessions.Range(func(k, _ any) bool {
		ids = append(ids, k.(string))
		return true
	})
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	return int(r.count.Load())
}
