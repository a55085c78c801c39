package session

import (
	"github.com/abhisek/mathpilot/internal/problem"
)

// Snapshot is an immutable view of a session, taken under the
// controller's lock. LastProblem and LastSolution are copies; mutating
// them never touches the live session.
type Snapshot struct {
	SessionID    string
	State        State
	Stats        Stats
	LastProblem  *problem.Problem
	LastSolution *problem.Solution
}

// Active reports whether the session is still running.
func (s Snapshot) Active() bool {
	return s.State != StateIdle && !s.State.Terminal()
}
