package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
)

func drain(s *Subscription) []domain.Status {
	var out []domain.Status
	for j := range s.C() {
		out = append(out, j.Status)
	}
	return out
}

func TestBrokerDeliversUntilTerminal(t *testing.T) {
	b := NewBroker(nil)
	s1 := b.Subscribe("j1")
	s2 := b.Subscribe("j1")
	other := b.Subscribe("j2")
	assert.Equal(t, 2, b.Subscribers("j1"))

	b.Notify(domain.Job{ID: "j1", Status: domain.StatusRunning})
	b.Notify(domain.Job{ID: "j1", Status: domain.StatusCompleted})

	want := []domain.Status{domain.StatusRunning, domain.StatusCompleted}
	assert.Equal(t, want, drain(s1))
	assert.Equal(t, want, drain(s2))
	assert.Equal(t, 0, b.Subscribers("j1"))
	assert.Equal(t, 1, b.Subscribers("j2"))

	// Closing after the terminal event is a no-op.
	s1.Close()
	other.Close()
	other.Close()
	assert.Equal(t, 0, b.Subscribers("j2"))
	_, open := <-other.C()
	assert.False(t, open)
}

func TestBrokerCloseUnregisters(t *testing.T) {
	b := NewBroker(nil)
	s := b.Subscribe("j1")
	s.Close()
	assert.Equal(t, 0, b.Subscribers("j1"))

	b.Notify(domain.Job{ID: "j1", Status: domain.StatusFailed})
	assert.Empty(t, drain(s))
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroker(nil)
	s := b.Subscribe("j1")
	for i := 0; i < subscriptionBuffer+2; i++ {
		b.Notify(domain.Job{ID: "j1", Status: domain.StatusRunning})
	}
	assert.Len(t, s.C(), subscriptionBuffer)
	s.Close()
}

func TestBrokerConcurrentSubscribeNotify(t *testing.T) {
	b := NewBroker(nil)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := b.Subscribe("j1")
			defer s.Close()
			b.Notify(domain.Job{ID: "j1", Status: domain.StatusRunning})
		}()
	}
	wg.Wait()
	require.Equal(t, 0, b.Subscribers("j1"))
}
