package session

import (
	"context"
	"testing"
	"time"
)

func TestManagerOneSessionPerUser(t *testing.T) {
	m := NewManager()
	collab := Collaborators{
		Auth:    &fakeAuth{},
		Locator: &fakeLocator{},
		Source: &blockingSource{
			entered: make(chan struct{}),
			release: make(chan struct{}),
		},
		Submitter: &fakeSubmitter{},
	}
	source := collab.Source.(*blockingSource)

	ctrl, done, err := m.Start(context.Background(), "alice", testConfig(), collab, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-source.entered

	if _, _, err := m.Start(context.Background(), "alice", testConfig(), collab, nil); err == nil {
		t.Error("second concurrent session for the same user was allowed")
	}

	// A different user is unaffected.
	other := Collaborators{
		Auth:      &fakeAuth{},
		Locator:   &fakeLocator{err: ErrNoAssignment},
		Source:    &fakeSource{},
		Submitter: &fakeSubmitter{},
	}
	_, bobDone, err := m.Start(context.Background(), "bob", testConfig(), other, nil)
	if err != nil {
		t.Fatalf("Start for second user: %v", err)
	}
	if err := <-bobDone; err != nil {
		t.Errorf("second user's session: %v", err)
	}

	ctrl.Stop()
	close(source.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}

	// Terminal session can be removed and the user can start again.
	if !m.Remove("alice") {
		t.Fatal("Remove refused a terminal session")
	}
	_, redo, err := m.Start(context.Background(), "alice", testConfig(), other, nil)
	if err != nil {
		t.Fatalf("restart after removal: %v", err)
	}
	<-redo
}

func TestManagerRejectsImmediateSecondStart(t *testing.T) {
	m := NewManager()
	collab := Collaborators{
		Auth:    &fakeAuth{},
		Locator: &fakeLocator{},
		Source: &blockingSource{
			entered: make(chan struct{}),
			release: make(chan struct{}),
		},
		Submitter: &fakeSubmitter{},
	}
	source := collab.Source.(*blockingSource)

	// No synchronization with the session goroutine: the first
	// controller may still be IDLE when the second Start arrives.
	ctrl, done, err := m.Start(context.Background(), "alice", testConfig(), collab, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := m.Start(context.Background(), "alice", testConfig(), collab, nil); err == nil {
		t.Error("back-to-back second Start for the same user was allowed")
	}

	got, ok := m.Get("alice")
	if !ok || got.ID() != ctrl.ID() {
		t.Error("first controller was displaced from the registry")
	}

	ctrl.Stop()
	close(source.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}
}

func TestManagerStopAndGet(t *testing.T) {
	m := NewManager()
	if m.Stop("nobody") {
		t.Error("Stop reported success for an unknown user")
	}
	if _, ok := m.Get("nobody"); ok {
		t.Error("Get reported a session for an unknown user")
	}

	collab := Collaborators{
		Auth:      &fakeAuth{},
		Locator:   &fakeLocator{err: ErrNoAssignment},
		Source:    &fakeSource{},
		Submitter: &fakeSubmitter{},
	}
	ctrl, done, err := m.Start(context.Background(), "carol", testConfig(), collab, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-done

	got, ok := m.Get("carol")
	if !ok || got.ID() != ctrl.ID() {
		t.Error("Get did not return the started session")
	}
	if !m.Stop("carol") {
		t.Error("Stop reported no session for a known user")
	}
}

func TestManagerRejectsInvalidConfig(t *testing.T) {
	m := NewManager()
	cfg := testConfig()
	cfg.MinDelay = cfg.MaxDelay
	if _, _, err := m.Start(context.Background(), "dave", cfg, Collaborators{}, nil); err == nil {
		t.Error("invalid config accepted")
	}
}
