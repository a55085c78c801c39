package session

import (
	"context"
	"fmt"
	"sync"
)

// Manager maps user identity to the one live session each user may
// have. It owns creation and teardown; no session state lives outside
// a Controller instance.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Controller
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Controller)}
}

// Start creates and launches a session for user. At most one active
// session per user: starting while one is still running fails. The
// controller runs in its own goroutine; done receives the terminal
// error (nil on a clean stop) exactly once.
func (m *Manager) Start(ctx context.Context, user string, cfg Config, collab Collaborators, reporter ProgressReporter) (*Controller, <-chan error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A registered controller that has not reached a terminal state
	// blocks duplicates, including one still IDLE whose goroutine has
	// not taken its first transition yet.
	if existing, ok := m.sessions[user]; ok && !existing.Snapshot().State.Terminal() {
		return nil, nil, fmt.Errorf("user %q already has an active session %s", user, existing.ID())
	}

	ctrl := NewController(collab, reporter)
	m.sessions[user] = ctrl

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Start(ctx, cfg)
	}()
	return ctrl, done, nil
}

// Get returns the user's current session, if any.
func (m *Manager) Get(user string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.sessions[user]
	return ctrl, ok
}

// Stop requests a cooperative halt of the user's session. Reports
// whether a session existed.
func (m *Manager) Stop(user string) bool {
	m.mu.Lock()
	ctrl, ok := m.sessions[user]
	m.mu.Unlock()
	if !ok {
		return false
	}
	ctrl.Stop()
	return true
}

// Remove drops a terminal session from the registry so the user can
// start another. Active sessions are left in place.
func (m *Manager) Remove(user string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.sessions[user]
	if !ok || ctrl.Snapshot().Active() {
		return false
	}
	delete(m.sessions, user)
	return true
}
