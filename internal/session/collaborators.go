package session

import (
	"context"

	"github.com/abhisek/mathpilot/internal/problem"
)

// SessionToken is the opaque proof of authentication handed from the
// Authenticator to the AssignmentLocator.
type SessionToken string

// AssignmentRef identifies one assignment on the remote system.
type AssignmentRef struct {
	ID    string
	Title string
}

// Authenticator performs the credential exchange with the remote
// system. A failure is fatal for the session.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (SessionToken, error)
}

// AssignmentLocator finds the active assignment for an authenticated
// user. Returns ErrNoAssignment when there is nothing to do.
type AssignmentLocator interface {
	Detect(ctx context.Context, token SessionToken) (AssignmentRef, error)
}

// ProblemSource serves the assignment's problems one at a time.
// Returns ErrAssignmentComplete once the assignment is exhausted.
// Other failures are transient and retried by the controller.
type ProblemSource interface {
	Fetch(ctx context.Context, ref AssignmentRef) (problem.Problem, error)
}

// OCRExtractor turns a problem image into raw text with an extraction
// confidence in (0, 1]. Consulted only when a fetched problem carries
// an image and no text.
type OCRExtractor interface {
	Extract(ctx context.Context, imageRef string) (text string, confidence float64, err error)
}

// AnswerSubmitter delivers one answer for one problem.
type AnswerSubmitter interface {
	Submit(ctx context.Context, ref AssignmentRef, problemID, answer string) error
}

// Collaborators bundles the external dependencies a session drives.
// Auth, Locator, Source and Submitter are required; OCR is optional.
type Collaborators struct {
	Auth      Authenticator
	Locator   AssignmentLocator
	Source    ProblemSource
	OCR       OCRExtractor
	Submitter AnswerSubmitter
}
