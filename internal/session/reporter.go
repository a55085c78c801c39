package session

import (
	"time"

	"github.com/abhisek/mathpilot/internal/problem"
)

// Event is emitted on every state transition and every problem outcome.
type Event struct {
	SessionID     string
	State         State
	Attempted     int
	Solved        int
	CurrentDomain problem.Domain
	Timestamp     time.Time

	// Note carries the disposition for skips and retries ("submission
	// failed, skipped"). Empty on plain transitions.
	Note string
}

// ProgressReporter receives session events. Implementations must be
// safe for use from the session goroutine and must not block for long;
// the controller calls Report synchronously.
type ProgressReporter interface {
	Report(Event)
}

// MultiReporter fans one event out to several reporters in order.
type MultiReporter []ProgressReporter

func (m MultiReporter) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Report(Event) {}
