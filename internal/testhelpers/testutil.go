package testhelpers

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/daypilot/backend/internal/live"
)

// Logger returns a logger that writes nowhere and a hook holding its entries.
func Logger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

// Recorder is a live.Publisher that keeps every event for assertions.
type Recorder struct {
	mu     sync.Mutex
	events []live.Event
}

var _ live.Publisher = (*Recorder)(nil)

func (r *Recorder) Publish(e live.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of what was published so far.
func (r *Recorder) Events() []live.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]live.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent event, or the zero Event.
func (r *Recorder) Last() live.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return live.Event{}
	}
	return r.events[len(r.events)-1]
}
