package scripted

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/mathpilot/internal/problem"
	"github.com/abhisek/mathpilot/internal/session"
)

// ErrBadCredentials is returned by Login when the script pins an
// account and the supplied credentials do not match.
var ErrBadCredentials = errors.New("scripted account rejected credentials")

// Submission records one answer the harness accepted.
type Submission struct {
	AssignmentID string
	ProblemID    string
	Answer       string
}

// Harness plays a Script back through the session collaborator
// interfaces. One harness serves one session; Reset rewinds it.
type Harness struct {
	script *Script

	mu          sync.Mutex
	next        int
	submissions []Submission
}

var (
	_ session.Authenticator     = (*Harness)(nil)
	_ session.AssignmentLocator = (*Harness)(nil)
	_ session.ProblemSource     = (*Harness)(nil)
	_ session.AnswerSubmitter   = (*Harness)(nil)
)

// NewHarness wraps a loaded script.
func NewHarness(s *Script) *Harness {
	return &Harness{script: s}
}

// Login checks credentials against the script's account. An empty
// account section accepts anything.
func (h *Harness) Login(_ context.Context, creds session.Credentials) (session.SessionToken, error) {
	acct := h.script.Account
	if acct.Username != "" || acct.Password != "" {
		if creds.Username != acct.Username || creds.Password != acct.Password {
			return "", ErrBadCredentials
		}
	}
	return session.SessionToken("scripted:" + creds.Username), nil
}

// Detect returns the scripted assignment, or ErrNoAssignment when the
// script has none.
func (h *Harness) Detect(_ context.Context, _ session.SessionToken) (session.AssignmentRef, error) {
	if h.script.Assignment.ID == "" {
		return session.AssignmentRef{}, session.ErrNoAssignment
	}
	return session.AssignmentRef{
		ID:    h.script.Assignment.ID,
		Title: h.script.Assignment.Title,
	}, nil
}

// Fetch serves the next scripted problem, then ErrAssignmentComplete.
func (h *Harness) Fetch(_ context.Context, _ session.AssignmentRef) (problem.Problem, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.next >= len(h.script.Problems) {
		return problem.Problem{}, session.ErrAssignmentComplete
	}
	spec := h.script.Problems[h.next]
	h.next++

	p := problem.Problem{
		ID:       spec.ID,
		RawText:  spec.Text,
		ImageRef: h.script.imagePath(spec.Image),
	}
	if p.RawText != "" {
		p.OCRConfidence = 1
	}
	return p, nil
}

// Submit records the answer.
func (h *Harness) Submit(_ context.Context, ref session.AssignmentRef, problemID, answer string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.submissions = append(h.submissions, Submission{
		AssignmentID: ref.ID,
		ProblemID:    problemID,
		Answer:       answer,
	})
	return nil
}

// Submissions returns a copy of everything submitted so far.
func (h *Harness) Submissions() []Submission {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Submission, len(h.submissions))
	copy(out, h.submissions)
	return out
}

// Reset rewinds the harness for another run against the same script.
func (h *Harness) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next = 0
	h.submissions = nil
}
