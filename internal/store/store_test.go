package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathpilot/internal/problem"
	"github.com/abhisek/mathpilot/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		require.NoError(t, db.QueryRow("PRAGMA "+tt.pragma).Scan(&got))
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestRecorderPersistsEvents(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s, "student")
	ctx := context.Background()

	start := time.Now().Add(-time.Minute)
	rec.Report(session.Event{
		SessionID: "s1", State: session.StateAuthenticating, Timestamp: start,
	})
	rec.Report(session.Event{
		SessionID: "s1", State: session.StateSolving,
		Attempted: 1, CurrentDomain: problem.DomainAlgebra, Timestamp: start.Add(time.Second),
	})
	rec.Report(session.Event{
		SessionID: "s1", State: session.StateStopped,
		Attempted: 1, Solved: 1, Timestamp: start.Add(2 * time.Second),
	})

	sum, err := s.Session(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, "student", sum.Username)
	assert.Equal(t, session.StateStopped, sum.State)
	assert.Equal(t, 1, sum.Attempted)
	assert.Equal(t, 1, sum.Solved)
	assert.Equal(t, start.Unix(), sum.StartedAt.Unix(), "started_at keeps the first event time")

	events, err := s.Events(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, problem.DomainAlgebra, events[1].Domain)
	assert.Equal(t, session.StateStopped, events[2].State)
}

func TestSessionUnknown(t *testing.T) {
	s := openTestStore(t)
	sum, err := s.Session(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, sum)
}

func TestSessionsOrderAndStats(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s, "student")
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	rec.Report(session.Event{SessionID: "old", State: session.StateStopped,
		Attempted: 4, Solved: 3, Timestamp: base})
	rec.Report(session.Event{SessionID: "new", State: session.StateStopped,
		Attempted: 2, Solved: 2, Timestamp: base.Add(time.Minute)})

	sessions, err := s.Sessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].SessionID, "newest first")

	totals, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Sessions: 2, Attempted: 6, Solved: 5}, totals)
}

func TestSessionsLimit(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s, "student")

	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		rec.Report(session.Event{SessionID: id, State: session.StateIdle,
			Timestamp: base.Add(time.Duration(i) * time.Second)})
	}

	sessions, err := s.Sessions(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
