package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/mathpilot/internal/problem"
)

// Fake collaborators. Problems are served in order; the source answers
// ErrAssignmentComplete once exhausted unless loop is set.

type fakeAuth struct {
	err   error
	creds Credentials
}

func (f *fakeAuth) Login(_ context.Context, creds Credentials) (SessionToken, error) {
	f.creds = creds
	if f.err != nil {
		return "", f.err
	}
	return "token-1", nil
}

type fakeLocator struct {
	err error
}

func (f *fakeLocator) Detect(context.Context, SessionToken) (AssignmentRef, error) {
	if f.err != nil {
		return AssignmentRef{}, f.err
	}
	return AssignmentRef{ID: "hw-1", Title: "Week 12"}, nil
}

type fakeSource struct {
	mu                    sync.Mutex
	problems              []string
	loop                  bool
	failuresBeforeSuccess int
	fetched               int
}

func (f *fakeSource) Fetch(context.Context, AssignmentRef) (problem.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failuresBeforeSuccess > 0 {
		f.failuresBeforeSuccess--
		return problem.Problem{}, fmt.Errorf("transient network failure")
	}
	if len(f.problems) == 0 || (!f.loop && f.fetched >= len(f.problems)) {
		return problem.Problem{}, ErrAssignmentComplete
	}
	idx := f.fetched
	f.fetched++
	return problem.Problem{
		ID:      fmt.Sprintf("p%d", idx+1),
		RawText: f.problems[idx%len(f.problems)],
	}, nil
}

type fakeSubmitter struct {
	mu      sync.Mutex
	answers []string
	calls   int
	failAll bool
}

func (f *fakeSubmitter) Submit(_ context.Context, _ AssignmentRef, _ string, answer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll {
		return fmt.Errorf("submit endpoint unavailable")
	}
	f.answers = append(f.answers, answer)
	return nil
}

type recordingReporter struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingReporter) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingReporter) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []State
	for _, e := range r.events {
		if len(out) == 0 || out[len(out)-1] != e.State {
			out = append(out, e.State)
		}
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MinDelay = time.Millisecond
	cfg.MaxDelay = 3 * time.Millisecond
	return cfg
}

func newTestController(source *fakeSource, submitter *fakeSubmitter, reporter ProgressReporter) *Controller {
	c := NewController(Collaborators{
		Auth:      &fakeAuth{},
		Locator:   &fakeLocator{},
		Source:    source,
		Submitter: submitter,
	}, reporter)
	c.backoffBase = time.Millisecond
	c.backoffCap = 4 * time.Millisecond
	return c
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min not positive", func(c *Config) { c.MinDelay = 0 }},
		{"min equals max", func(c *Config) { c.MinDelay = c.MaxDelay }},
		{"min above max", func(c *Config) { c.MinDelay = c.MaxDelay + time.Second }},
		{"no fetch attempts", func(c *Config) { c.FetchAttempts = 0 }},
		{"no call timeout", func(c *Config) { c.CallTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			c := newTestController(&fakeSource{}, &fakeSubmitter{}, nil)
			err := c.Start(context.Background(), cfg)
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want ConfigurationError", err)
			}
			if got := c.Snapshot().State; got != StateIdle {
				t.Errorf("state after rejected start = %s, want IDLE", got)
			}
		})
	}
}

func TestSessionRunsAssignmentToCompletion(t *testing.T) {
	source := &fakeSource{problems: []string{
		"Solve 2x + 3 = 7 for x",
		"Find sin(30 degrees)",
		"What is the sum of 12 and 30?",
	}}
	submitter := &fakeSubmitter{}
	reporter := &recordingReporter{}
	c := newTestController(source, submitter, reporter)

	if err := c.Start(context.Background(), testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	snap := c.Snapshot()
	if snap.State != StateStopped {
		t.Errorf("state = %s, want STOPPED", snap.State)
	}
	if snap.Stats.Attempted != 3 || snap.Stats.Solved != 3 {
		t.Errorf("stats = %d attempted / %d solved, want 3/3", snap.Stats.Attempted, snap.Stats.Solved)
	}

	want := []string{"2", "1/2", "42"}
	submitter.mu.Lock()
	defer submitter.mu.Unlock()
	if len(submitter.answers) != len(want) {
		t.Fatalf("submitted %d answers, want %d", len(submitter.answers), len(want))
	}
	for i, w := range want {
		if submitter.answers[i] != w {
			t.Errorf("answer[%d] = %q, want %q", i, submitter.answers[i], w)
		}
	}

	states := reporter.states()
	wantPrefix := []State{StateAuthenticating, StateDetecting, StateFetching, StateSolving, StateSubmitting, StateWaiting}
	if len(states) < len(wantPrefix) {
		t.Fatalf("state sequence too short: %v", states)
	}
	for i, s := range wantPrefix {
		if states[i] != s {
			t.Fatalf("state sequence %v, want prefix %v", states, wantPrefix)
		}
	}
	if states[len(states)-1] != StateStopped {
		t.Errorf("final state = %s, want STOPPED", states[len(states)-1])
	}
}

func TestSolveFailureDoesNotAbortSession(t *testing.T) {
	source := &fakeSource{problems: []string{
		"Solve 2x + 3 = 7 for x",
		"describe your weekend plans thoughtfully", // no numbers: unsolvable
		"5x = 20",
	}}
	submitter := &fakeSubmitter{}
	reporter := &recordingReporter{}
	c := newTestController(source, submitter, reporter)

	if err := c.Start(context.Background(), testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	snap := c.Snapshot()
	if snap.State != StateStopped {
		t.Errorf("state = %s, want STOPPED (one hard problem must not stop the run)", snap.State)
	}
	if snap.Stats.Attempted != 3 {
		t.Errorf("attempted = %d, want 3", snap.Stats.Attempted)
	}
	if snap.Stats.Solved != 2 {
		t.Errorf("solved = %d, want 2", snap.Stats.Solved)
	}
	for _, s := range reporter.states() {
		if s == StateError {
			t.Error("session passed through ERROR on a non-fatal solve failure")
		}
	}

	// The unsolved problem still produced a best-effort submission.
	submitter.mu.Lock()
	defer submitter.mu.Unlock()
	if len(submitter.answers) != 3 || submitter.answers[1] != placeholderAnswer {
		t.Errorf("answers = %v, want placeholder %q in slot 1", submitter.answers, placeholderAnswer)
	}
}

func TestConsecutiveFailuresResetOnSuccess(t *testing.T) {
	source := &fakeSource{problems: []string{
		"describe your weekend plans thoughtfully",
		"describe your weekend plans thoughtfully",
		"Solve 2x + 3 = 7 for x",
	}}
	c := newTestController(source, &fakeSubmitter{}, nil)

	if err := c.Start(context.Background(), testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := c.Snapshot().Stats.ConsecutiveFailures; got != 0 {
		t.Errorf("consecutive failures = %d, want 0 after a success", got)
	}
}

func TestRepeatedFailureSafetyValve(t *testing.T) {
	source := &fakeSource{
		problems: []string{"describe your weekend plans thoughtfully"},
		loop:     true,
	}
	c := newTestController(source, &fakeSubmitter{}, nil)
	cfg := testConfig()
	cfg.FailureThreshold = 3

	err := c.Start(context.Background(), cfg)
	var rfe *RepeatedFailureError
	if !errors.As(err, &rfe) {
		t.Fatalf("error = %v, want RepeatedFailureError", err)
	}
	snap := c.Snapshot()
	if snap.State != StateError {
		t.Errorf("state = %s, want ERROR", snap.State)
	}
	if snap.Stats.Attempted != 3 {
		t.Errorf("attempted = %d, want exactly the threshold", snap.Stats.Attempted)
	}
}

func TestAuthenticationFailureIsFatal(t *testing.T) {
	c := NewController(Collaborators{
		Auth:      &fakeAuth{err: fmt.Errorf("bad credentials")},
		Locator:   &fakeLocator{},
		Source:    &fakeSource{},
		Submitter: &fakeSubmitter{},
	}, nil)

	err := c.Start(context.Background(), testConfig())
	var ae *AuthenticationError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want AuthenticationError", err)
	}
	if got := c.Snapshot().State; got != StateError {
		t.Errorf("state = %s, want ERROR", got)
	}
}

func TestNoAssignmentStopsCleanly(t *testing.T) {
	c := NewController(Collaborators{
		Auth:      &fakeAuth{},
		Locator:   &fakeLocator{err: ErrNoAssignment},
		Source:    &fakeSource{},
		Submitter: &fakeSubmitter{},
	}, nil)

	if err := c.Start(context.Background(), testConfig()); err != nil {
		t.Fatalf("nothing to do is not an error, got %v", err)
	}
	if got := c.Snapshot().State; got != StateStopped {
		t.Errorf("state = %s, want STOPPED", got)
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	source := &fakeSource{
		problems:              []string{"Solve 2x + 3 = 7 for x"},
		failuresBeforeSuccess: 2,
	}
	c := newTestController(source, &fakeSubmitter{}, nil)

	if err := c.Start(context.Background(), testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap := c.Snapshot()
	if snap.Stats.Solved != 1 {
		t.Errorf("solved = %d, want 1 after transient fetch failures", snap.Stats.Solved)
	}
}

func TestFetchExhaustionIsFatal(t *testing.T) {
	source := &fakeSource{
		problems:              []string{"Solve 2x + 3 = 7 for x"},
		failuresBeforeSuccess: 10,
	}
	c := newTestController(source, &fakeSubmitter{}, nil)

	err := c.Start(context.Background(), testConfig())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FetchError", err)
	}
	if got := c.Snapshot().State; got != StateError {
		t.Errorf("state = %s, want ERROR", got)
	}
}

func TestSubmissionFailureIsNonFatal(t *testing.T) {
	source := &fakeSource{problems: []string{"Solve 2x + 3 = 7 for x"}}
	submitter := &fakeSubmitter{failAll: true}
	c := newTestController(source, submitter, nil)

	if err := c.Start(context.Background(), testConfig()); err != nil {
		t.Fatalf("submission failure must not end the session, got %v", err)
	}
	if got := c.Snapshot().State; got != StateStopped {
		t.Errorf("state = %s, want STOPPED", got)
	}
	submitter.mu.Lock()
	defer submitter.mu.Unlock()
	if submitter.calls != 2 {
		t.Errorf("submit calls = %d, want 2 (one retry)", submitter.calls)
	}
}

// blockingSource parks Fetch until release is closed, so a stop request
// can land while a fetch is in flight.
type blockingSource struct {
	entered   chan struct{}
	release   chan struct{}
	once      sync.Once
	mu        sync.Mutex
	completed bool
}

func (b *blockingSource) Fetch(context.Context, AssignmentRef) (problem.Problem, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	b.mu.Lock()
	b.completed = true
	b.mu.Unlock()
	return problem.Problem{ID: "p1", RawText: "Solve 2x + 3 = 7 for x"}, nil
}

func TestStopMidFetchHonoredAfterFetchResolves(t *testing.T) {
	source := &blockingSource{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := NewController(Collaborators{
		Auth:      &fakeAuth{},
		Locator:   &fakeLocator{},
		Source:    source,
		Submitter: &fakeSubmitter{},
	}, nil)

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background(), testConfig()) }()

	<-source.entered
	c.Stop()
	close(source.release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}

	source.mu.Lock()
	completed := source.completed
	source.mu.Unlock()
	if !completed {
		t.Error("stop preempted the in-flight fetch")
	}
	snap := c.Snapshot()
	if snap.State != StateStopped {
		t.Errorf("state = %s, want STOPPED", snap.State)
	}
	// The fetched problem was never dequeued into the solve phase.
	if snap.Stats.Attempted != 0 {
		t.Errorf("attempted = %d, want 0 (stop lands before the solve phase)", snap.Stats.Attempted)
	}
}

func TestStartTwiceRejected(t *testing.T) {
	source := &fakeSource{problems: []string{"Solve 2x + 3 = 7 for x"}}
	c := newTestController(source, &fakeSubmitter{}, nil)

	if err := c.Start(context.Background(), testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	err := c.Start(context.Background(), testConfig())
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("second start error = %v, want ConfigurationError", err)
	}
}

func TestAttemptedNeverBelowSolved(t *testing.T) {
	source := &fakeSource{problems: []string{
		"Solve 2x + 3 = 7 for x",
		"describe your weekend plans thoughtfully",
		"Find sin(30 degrees)",
		"describe your weekend plans thoughtfully",
	}}
	c := newTestController(source, &fakeSubmitter{}, nil)

	if err := c.Start(context.Background(), testConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	stats := c.Snapshot().Stats
	if stats.Attempted < stats.Solved {
		t.Errorf("attempted %d < solved %d", stats.Attempted, stats.Solved)
	}
	if stats.Attempted != 4 || stats.Solved != 2 {
		t.Errorf("stats = %d/%d, want 4/2", stats.Attempted, stats.Solved)
	}
}

func TestSubmissionValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x = 2", "2"},
		{"y = 7/2", "7/2"},
		{"1/2", "1/2"},
		{"2x + 3", "2x + 3"},
		{"78.5398", "78.5398"},
	}
	for _, tt := range tests {
		if got := submissionValue(tt.in); got != tt.want {
			t.Errorf("submissionValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
