package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mathpilot/internal/classify"
	"github.com/abhisek/mathpilot/internal/delay"
	"github.com/abhisek/mathpilot/internal/problem"
	"github.com/abhisek/mathpilot/internal/solver"
)

// placeholderAnswer is submitted best-effort when a problem could not be
// solved, so the assignment still advances.
const placeholderAnswer = "0"

// errStopRequested signals internally that stop() fired during a
// suspension; the loop converts it to a clean STOPPED outcome.
var errStopRequested = errors.New("stop requested")

// Controller is the session state machine. It owns one Session: only
// the controller goroutine mutates State and Stats, and observers read
// immutable snapshots taken at each transition.
type Controller struct {
	id         string
	collab     Collaborators
	reporter   ProgressReporter
	classifier *classify.Classifier

	// Overridable in tests; defaults set by NewController.
	rng         *rand.Rand
	backoffBase time.Duration
	backoffCap  time.Duration

	mu           sync.Mutex
	state        State
	stats        Stats
	cfg          Config
	lastProblem  *problem.Problem
	lastSolution *problem.Solution

	pacing *delay.Policy

	stop     chan struct{}
	stopOnce sync.Once
}

// NewController wires a session around the given collaborators. The
// reporter may be nil; events are then discarded.
func NewController(collab Collaborators, reporter ProgressReporter) *Controller {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Controller{
		id:          uuid.NewString(),
		collab:      collab,
		reporter:    reporter,
		classifier:  classify.New(nil),
		backoffBase: time.Second,
		backoffCap:  30 * time.Second,
		state:       StateIdle,
		stop:        make(chan struct{}),
	}
}

// ID returns the session identity.
func (c *Controller) ID() string { return c.id }

// Snapshot returns an immutable view of the session at this instant.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		SessionID: c.id,
		State:     c.state,
		Stats:     c.stats,
	}
	if c.lastProblem != nil {
		p := *c.lastProblem
		snap.LastProblem = &p
	}
	if c.lastSolution != nil {
		s := *c.lastSolution
		snap.LastSolution = &s
	}
	return snap
}

// Stop requests a cooperative halt. It returns immediately; the session
// reaches STOPPED at its next suspension boundary, never mid-operation.
// Safe to call from any goroutine, any number of times.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Start validates cfg and runs the session loop until a terminal state.
// Valid only from IDLE: a validation failure leaves the session IDLE and
// returns a ConfigurationError. Start blocks; run it in its own
// goroutine and use Stop or ctx cancellation to end it early.
func (c *Controller) Start(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return &ConfigurationError{Reason: fmt.Sprintf("session already started (state %s)", c.state)}
	}
	pacing, err := delay.New(cfg.MinDelay, cfg.MaxDelay, c.rng)
	if err != nil {
		c.mu.Unlock()
		return &ConfigurationError{Field: "MinDelay/MaxDelay", Reason: err.Error()}
	}
	c.cfg = cfg
	c.pacing = pacing
	c.stats = Stats{StartedAt: time.Now()}
	c.mu.Unlock()

	return c.run(ctx)
}

func (c *Controller) run(ctx context.Context) error {
	c.transition(StateAuthenticating, "")

	token, err := c.login(ctx)
	if err != nil {
		ae := &AuthenticationError{Err: err}
		c.fail(ae)
		return ae
	}

	c.transition(StateDetecting, "")

	ref, err := c.detect(ctx, token)
	if errors.Is(err, ErrNoAssignment) {
		c.transition(StateStopped, "nothing to do")
		return nil
	}
	if err != nil {
		fe := &FetchError{Attempts: 1, Err: fmt.Errorf("locating assignment: %w", err)}
		c.fail(fe)
		return fe
	}

	for {
		if c.stopRequested(ctx) {
			c.transition(StateStopped, "stop requested")
			return nil
		}

		c.transition(StateFetching, "")

		p, err := c.fetchWithRetry(ctx, ref)
		switch {
		case errors.Is(err, ErrAssignmentComplete):
			c.transition(StateStopped, "assignment complete")
			return nil
		case errors.Is(err, errStopRequested):
			c.transition(StateStopped, "stop requested")
			return nil
		case err != nil:
			fe := &FetchError{Attempts: c.cfg.FetchAttempts, Err: err}
			c.fail(fe)
			return fe
		}

		// The in-flight fetch always completes before a stop is honored.
		if c.stopRequested(ctx) {
			c.transition(StateStopped, "stop requested")
			return nil
		}

		c.transition(StateSolving, "")
		sol := c.solveProblem(ctx, &p)

		// Sub-action jitter so solve→submit timing is not mechanical.
		if !c.pause(ctx, c.pacing.Jitter()) {
			c.transition(StateStopped, "stop requested")
			return nil
		}

		c.transition(StateSubmitting, "")
		c.submitAnswer(ctx, ref, &p, sol)

		if halt := c.checkFailureValve(); halt != nil {
			c.fail(halt)
			return halt
		}

		c.transition(StateWaiting, "")
		if !c.pause(ctx, c.pacing.Next()) {
			c.transition(StateStopped, "stop requested")
			return nil
		}
	}
}

// solveProblem classifies and solves one fetched problem, updating the
// stats. A failure is absorbed: the problem counts as attempted, the
// failure streak grows, and the loop moves on. Returns nil on failure.
func (c *Controller) solveProblem(ctx context.Context, p *problem.Problem) *problem.Solution {
	c.mu.Lock()
	c.stats.Attempted++
	c.lastProblem = p
	c.lastSolution = nil
	c.mu.Unlock()

	if p.RawText == "" && p.ImageRef != "" && c.collab.OCR != nil {
		text, conf, err := c.extractText(ctx, p.ImageRef)
		if err != nil {
			c.noteFailure(p.Domain, fmt.Sprintf("OCR failed, problem skipped: %v", err))
			return nil
		}
		p.RawText = text
		p.OCRConfidence = conf
	}

	domain, err := c.classifier.Classify(p.RawText)
	if err != nil {
		c.noteFailure(p.Domain, fmt.Sprintf("unclassifiable, problem skipped: %v", err))
		return nil
	}
	p.Domain = domain

	sol, err := solver.Solve(*p, c.cfg.EthicalMode)
	if err != nil {
		c.noteFailure(domain, fmt.Sprintf("unsolved, submitting placeholder: %v", err))
		return nil
	}

	c.mu.Lock()
	c.stats.Solved++
	c.stats.ConsecutiveFailures = 0
	c.lastSolution = sol
	c.mu.Unlock()
	c.report("solved")
	return sol
}

// submitAnswer delivers the answer, retrying once. A second failure is
// a non-fatal skip: reported, never escalated.
func (c *Controller) submitAnswer(ctx context.Context, ref AssignmentRef, p *problem.Problem, sol *problem.Solution) {
	answer := placeholderAnswer
	note := "submitted placeholder for unsolved problem"
	if sol != nil {
		answer = submissionValue(sol.FinalAnswer)
		note = "submitted"
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = c.submit(ctx, ref, p.ID, answer)
		if err == nil {
			c.report(note)
			return
		}
	}
	se := &SubmissionError{ProblemID: p.ID, Err: err}
	c.report(fmt.Sprintf("skipped: %v", se))
}

// fetchWithRetry pulls the next problem, retrying transient failures
// with exponential backoff. ErrAssignmentComplete passes through
// untouched; errStopRequested reports a stop during backoff.
func (c *Controller) fetchWithRetry(ctx context.Context, ref AssignmentRef) (problem.Problem, error) {
	var lastErr error
	backoff := c.backoffBase
	for attempt := 1; attempt <= c.cfg.FetchAttempts; attempt++ {
		p, err := c.fetch(ctx, ref)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, ErrAssignmentComplete) {
			return problem.Problem{}, err
		}
		lastErr = err
		if attempt == c.cfg.FetchAttempts {
			break
		}
		c.report(fmt.Sprintf("fetch attempt %d/%d failed, retrying in %s: %v",
			attempt, c.cfg.FetchAttempts, backoff, err))
		if !c.pause(ctx, backoff) {
			return problem.Problem{}, errStopRequested
		}
		backoff *= 2
		if backoff > c.backoffCap {
			backoff = c.backoffCap
		}
	}
	return problem.Problem{}, lastErr
}

// checkFailureValve halts the session once the unsolved streak reaches
// the configured threshold.
func (c *Controller) checkFailureValve() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats.ConsecutiveFailures >= c.cfg.FailureThreshold {
		return &RepeatedFailureError{
			Failures:  c.stats.ConsecutiveFailures,
			Threshold: c.cfg.FailureThreshold,
		}
	}
	return nil
}

func (c *Controller) noteFailure(domain problem.Domain, note string) {
	c.mu.Lock()
	c.stats.ConsecutiveFailures++
	c.mu.Unlock()
	c.reportDomain(domain, note)
}

// Collaborator calls, each bounded by the configured timeout.

func (c *Controller) login(ctx context.Context) (SessionToken, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	return c.collab.Auth.Login(callCtx, c.cfg.Credentials)
}

func (c *Controller) detect(ctx context.Context, token SessionToken) (AssignmentRef, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	return c.collab.Locator.Detect(callCtx, token)
}

func (c *Controller) fetch(ctx context.Context, ref AssignmentRef) (problem.Problem, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	return c.collab.Source.Fetch(callCtx, ref)
}

func (c *Controller) extractText(ctx context.Context, imageRef string) (string, float64, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	return c.collab.OCR.Extract(callCtx, imageRef)
}

func (c *Controller) submit(ctx context.Context, ref AssignmentRef, problemID, answer string) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	return c.collab.Submitter.Submit(callCtx, ref, problemID, answer)
}

func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.CallTimeout)
}

// pause sleeps for d, returning false if stop or ctx cancellation fired
// first. Every pause is a suspension boundary where stop is honored.
func (c *Controller) pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-c.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *Controller) stopRequested(ctx context.Context) bool {
	select {
	case <-c.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// transition moves the machine to next and emits the transition event.
func (c *Controller) transition(next State, note string) {
	c.mu.Lock()
	c.state = next
	c.mu.Unlock()
	c.report(note)
}

// fail moves the machine to ERROR, recording the cause in the event.
func (c *Controller) fail(cause error) {
	c.transition(StateError, cause.Error())
}

func (c *Controller) report(note string) {
	var domain problem.Domain
	c.mu.Lock()
	if c.lastProblem != nil {
		domain = c.lastProblem.Domain
	}
	c.mu.Unlock()
	c.reportDomain(domain, note)
}

func (c *Controller) reportDomain(domain problem.Domain, note string) {
	c.mu.Lock()
	e := Event{
		SessionID:     c.id,
		State:         c.state,
		Attempted:     c.stats.Attempted,
		Solved:        c.stats.Solved,
		CurrentDomain: domain,
		Timestamp:     time.Now(),
		Note:          note,
	}
	c.mu.Unlock()
	c.reporter.Report(e)
}

// submissionValue strips the "x = " prefix from a solved equation so the
// submitted answer is the bare value the remote form expects.
func submissionValue(finalAnswer string) string {
	if i := strings.Index(finalAnswer, "= "); i >= 0 && !strings.Contains(finalAnswer[i+2:], "=") {
		return strings.TrimSpace(finalAnswer[i+2:])
	}
	return finalAnswer
}
