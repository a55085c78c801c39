package session

import (
	"errors"
	"fmt"
)

// ErrNoAssignment is returned by AssignmentLocator.Detect when the
// account has nothing to do. The session stops cleanly; it is not an
// error outcome.
var ErrNoAssignment = errors.New("no active assignment")

// ErrAssignmentComplete is returned by ProblemSource.Fetch once every
// problem in the assignment has been served. The session stops with a
// completed outcome.
var ErrAssignmentComplete = errors.New("assignment complete")

// ConfigurationError rejects an invalid Config before a session starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// AuthenticationError is fatal: login failed and the session cannot
// proceed. Never retried.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// FetchError is fatal: problem retrieval failed after every configured
// attempt.
type FetchError struct {
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmissionError is non-fatal: an answer could not be delivered after
// the single retry. The problem is skipped and the session continues.
type SubmissionError struct {
	ProblemID string
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed for problem %s: %v", e.ProblemID, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// RepeatedFailureError is the self-triggered safety halt: too many
// consecutive problems went unsolved and the controller refuses to keep
// looping.
type RepeatedFailureError struct {
	Failures  int
	Threshold int
}

func (e *RepeatedFailureError) Error() string {
	return fmt.Sprintf("%d consecutive failures reached threshold %d, halting", e.Failures, e.Threshold)
}
