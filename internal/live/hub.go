// Package live fans out change notifications to per-user subscriptions.
package live

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Collections a subscription may follow.
const (
	CollectionTasks      = "tasks"
	CollectionRoutines   = "routines"
	CollectionMenu       = "menu"
	CollectionMeals      = "meals"
	CollectionShopping   = "shopping"
	CollectionReminders  = "reminders"
	CollectionCustomFood = "custom_foods"
	CollectionProfile    = "profile"
	CollectionUploads    = "uploads"
)

// Actions carried by events.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionReset    = "reset"
	ActionProgress = "progress"
)

// Event describes one change to a user's document.
type Event struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	ID         string    `json:"id,omitempty"`
	UserID     uuid.UUID `json:"user_id"`
	Data       any       `json:"data,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher is what services notify after a successful write.
type Publisher interface {
	Publish(Event)
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

const defaultBuffer = 32

// Hub routes events to the subscriptions of the event's user.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*Subscription]struct{}
	buffer int
	now    func() time.Time
}

// NewHub returns an empty hub. buffer is the per-subscription queue length;
// non-positive values use a default.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[uuid.UUID]map[*Subscription]struct{}),
		buffer: buffer,
		now:    time.Now,
	}
}

var _ Publisher = (*Hub)(nil)

// Subscribe creates a subscription for userID limited to collections (all
// collections when none are given). It receives nothing until Start.
func (h *Hub) Subscribe(userID uuid.UUID, collections ...string) *Subscription {
	filter := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		if c != "" {
			filter[c] = struct{}{}
		}
	}
	return &Subscription{
		hub:    h,
		userID: userID,
		filter: filter,
		ch:     make(chan Event, h.buffer),
	}
}

// Publish delivers ev to every matching subscription without blocking. A
// subscriber whose queue is full misses the event.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = h.now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[ev.UserID] {
		if !s.wants(ev.Collection) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			s.dropped.Add(1)
		}
	}
}

// Subscribers reports the number of started subscriptions for userID.
func (h *Hub) Subscribers(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

func (h *Hub) register(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[s.userID]
	if set == nil {
		set = make(map[*Subscription]struct{})
		h.subs[s.userID] = set
	}
	set[s] = struct{}{}
}

// unregister removes s and closes its channel. Publish holds the read lock
// while sending, so closing under the write lock cannot race a send.
func (h *Hub) unregister(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.subs[s.userID]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.userID)
		}
	}
	close(s.ch)
}
