// Package session drives the unattended homework loop: authenticate,
// locate an assignment, then fetch → solve → submit → wait until the
// assignment is done or the session is stopped. One Controller owns one
// session; all collaborator calls are fallible, bounded, and sequenced
// by an explicit state machine.
package session

import (
	"time"
)

// State is the lifecycle phase of a session. STOPPED and ERROR are
// terminal; every other state can reach them.
type State string

const (
	StateIdle           State = "IDLE"
	StateAuthenticating State = "AUTHENTICATING"
	StateDetecting      State = "DETECTING"
	StateFetching       State = "FETCHING"
	StateSolving        State = "SOLVING"
	StateSubmitting     State = "SUBMITTING"
	StateWaiting        State = "WAITING"
	StateStopped        State = "STOPPED"
	StateError          State = "ERROR"
)

// Terminal reports whether the state ends the session.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateError
}

// Credentials identify the user to the Authenticator. Collaborators
// that need no login (scripted runs) ignore them.
type Credentials struct {
	Username string
	Password string
}

// Config is the session configuration surface. Invalid values are
// rejected synchronously by Start, never clamped.
type Config struct {
	// MinDelay and MaxDelay bound the randomized pause between problems.
	// MinDelay must be positive and strictly less than MaxDelay.
	MinDelay time.Duration
	MaxDelay time.Duration

	// EthicalMode materializes full step-by-step derivations in each
	// solution instead of only the final answer.
	EthicalMode bool

	// FetchAttempts bounds retries of a failing problem fetch.
	FetchAttempts int

	// FailureThreshold is the run-length safety valve: this many
	// consecutive unsolved problems halt the session.
	FailureThreshold int

	// CallTimeout bounds each collaborator call (login, detect, fetch,
	// submit, OCR).
	CallTimeout time.Duration

	// Credentials are handed to the Authenticator on start.
	Credentials Credentials
}

// DefaultConfig returns conservative defaults. Delay bounds have no
// sensible default and must be set by the caller.
func DefaultConfig() Config {
	return Config{
		MinDelay:         3 * time.Second,
		MaxDelay:         8 * time.Second,
		FetchAttempts:    3,
		FailureThreshold: 10,
		CallTimeout:      30 * time.Second,
	}
}

// Validate checks the configuration. All violations are
// ConfigurationErrors so the caller can reject before starting.
func (c Config) Validate() error {
	if c.MinDelay <= 0 {
		return &ConfigurationError{Field: "MinDelay", Reason: "must be positive"}
	}
	if c.MinDelay >= c.MaxDelay {
		return &ConfigurationError{Field: "MaxDelay", Reason: "must exceed MinDelay"}
	}
	if c.FetchAttempts < 1 {
		return &ConfigurationError{Field: "FetchAttempts", Reason: "must be at least 1"}
	}
	if c.FailureThreshold < 1 {
		return &ConfigurationError{Field: "FailureThreshold", Reason: "must be at least 1"}
	}
	if c.CallTimeout <= 0 {
		return &ConfigurationError{Field: "CallTimeout", Reason: "must be positive"}
	}
	return nil
}

// Stats are the session's progress counters. Attempted increments
// exactly once per fetched problem regardless of outcome, so
// Attempted >= Solved always holds.
type Stats struct {
	Attempted           int
	Solved              int
	ConsecutiveFailures int
	StartedAt           time.Time
}
