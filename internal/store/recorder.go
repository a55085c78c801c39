package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/mathpilot/internal/session"
)

// Recorder persists session events as they are reported. It implements
// session.ProgressReporter: each event appends one row to
// session_events and upserts the session summary row.
type Recorder struct {
	store    *Store
	username string
	timeout  time.Duration
}

var _ session.ProgressReporter = (*Recorder)(nil)

// NewRecorder binds a recorder to the store for one user's sessions.
func NewRecorder(s *Store, username string) *Recorder {
	return &Recorder{store: s, username: username, timeout: 5 * time.Second}
}

// Report persists one event. Report cannot return an error, so
// persistence failures are logged and dropped; the session itself is
// never affected by storage trouble.
func (r *Recorder) Report(e session.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.record(ctx, e); err != nil {
		slog.Warn("failed to persist session event",
			"session_id", e.SessionID, "state", e.State, "error", err)
	}
}

func (r *Recorder) record(ctx context.Context, e session.Event) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	const upsert = `
	INSERT INTO sessions (session_id, username, state, attempted, solved, started_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		state = excluded.state,
		attempted = excluded.attempted,
		solved = excluded.solved,
		updated_at = excluded.updated_at`

	if _, err := r.store.db.ExecContext(ctx, upsert,
		e.SessionID, r.username, string(e.State),
		e.Attempted, e.Solved, ts.Unix(), ts.Unix(),
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	const insert = `
	INSERT INTO session_events (session_id, state, attempted, solved, domain, note, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	if _, err := r.store.db.ExecContext(ctx, insert,
		e.SessionID, string(e.State), e.Attempted, e.Solved,
		string(e.CurrentDomain), e.Note, ts.Unix(),
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}
