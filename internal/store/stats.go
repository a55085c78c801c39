package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/abhisek/mathpilot/internal/problem"
	"github.com/abhisek/mathpilot/internal/session"
)

// SessionSummary is one row of recorded session history.
type SessionSummary struct {
	SessionID string
	Username  string
	State     session.State
	Attempted int
	Solved    int
	StartedAt time.Time
	UpdatedAt time.Time
}

// EventRow is one persisted progress event.
type EventRow struct {
	SessionID string
	State     session.State
	Attempted int
	Solved    int
	Domain    problem.Domain
	Note      string
	CreatedAt time.Time
}

// Totals aggregates all recorded sessions.
type Totals struct {
	Sessions  int
	Attempted int
	Solved    int
}

// Sessions returns recorded sessions, newest first, capped at limit.
func (s *Store) Sessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	const query = `
	SELECT session_id, username, state, attempted, solved, started_at, updated_at
	FROM sessions ORDER BY started_at DESC, session_id LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var state string
		var started, updated int64
		if err := rows.Scan(&sum.SessionID, &sum.Username, &state,
			&sum.Attempted, &sum.Solved, &started, &updated); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sum.State = session.State(state)
		sum.StartedAt = time.Unix(started, 0)
		sum.UpdatedAt = time.Unix(updated, 0)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// Session returns one recorded session, or nil when unknown.
func (s *Store) Session(ctx context.Context, sessionID string) (*SessionSummary, error) {
	const query = `
	SELECT session_id, username, state, attempted, solved, started_at, updated_at
	FROM sessions WHERE session_id = ?`

	var sum SessionSummary
	var state string
	var started, updated int64
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&sum.SessionID, &sum.Username, &state,
		&sum.Attempted, &sum.Solved, &started, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	sum.State = session.State(state)
	sum.StartedAt = time.Unix(started, 0)
	sum.UpdatedAt = time.Unix(updated, 0)
	return &sum, nil
}

// Events returns a session's events in emission order, capped at limit.
func (s *Store) Events(ctx context.Context, sessionID string, limit int) ([]EventRow, error) {
	const query = `
	SELECT session_id, state, attempted, solved, domain, note, created_at
	FROM session_events WHERE session_id = ? ORDER BY id LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var e EventRow
		var state, domain string
		var created int64
		if err := rows.Scan(&e.SessionID, &state, &e.Attempted, &e.Solved,
			&domain, &e.Note, &created); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		e.State = session.State(state)
		e.Domain = problem.Domain(domain)
		e.CreatedAt = time.Unix(created, 0)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// Stats aggregates across all recorded sessions.
func (s *Store) Stats(ctx context.Context) (Totals, error) {
	const query = `
	SELECT COUNT(*), COALESCE(SUM(attempted), 0), COALESCE(SUM(solved), 0) FROM sessions`

	var t Totals
	if err := s.db.QueryRowContext(ctx, query).Scan(&t.Sessions, &t.Attempted, &t.Solved); err != nil {
		return Totals{}, fmt.Errorf("aggregate sessions: %w", err)
	}
	return t, nil
}
