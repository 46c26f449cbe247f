package live

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription is a handle on one user's change stream. Start begins
// delivery; Stop ends it and closes Events. Both are idempotent, and Stop on
// a never-started subscription still closes the channel.
type Subscription struct {
	hub     *Hub
	userID  uuid.UUID
	filter  map[string]struct{}
	ch      chan Event
	dropped atomic.Int64

	mu      sync.Mutex
	started bool
	stopped bool
}

// Start registers the subscription with its hub.
func (s *Subscription) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.hub.register(s)
}

// Stop unregisters the subscription and closes Events.
func (s *Subscription) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.started {
		s.hub.unregister(s)
		return
	}
	close(s.ch)
}

// Events yields changes until Stop.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// UserID is the owner of the stream.
func (s *Subscription) UserID() uuid.UUID {
	return s.userID
}

// Dropped counts events lost because the queue was full.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Subscription) wants(collection string) bool {
	if len(s.filter) == 0 {
		return true
	}
	_, ok := s.filter[collection]
	return ok
}
