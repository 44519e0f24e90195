package web

import (
	"context"
	"testing"
	"time"
)

func TestSessionsSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(&fakeSearcher{}, 30*time.Minute, quietLogger())
	s.now = func() time.Time { return now }

	idle, _ := s.Create()
	active, _ := s.Create()

	now = now.Add(20 * time.Minute)
	if _, ok := s.Get(active); !ok {
		t.Fatal("active session missing")
	}

	now = now.Add(15 * time.Minute)
	if removed := s.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if _, ok := s.Get(idle); ok {
		t.Error("idle session survived the sweep")
	}
	if _, ok := s.Get(active); !ok {
		t.Error("active session was swept")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestSessionsZeroTTLKeepsAll(t *testing.T) {
	now := time.Now()
	s := NewSessions(&fakeSearcher{}, 0, quietLogger())
	s.now = func() time.Time { return now }
	s.Create()

	now = now.Add(365 * 24 * time.Hour)
	if removed := s.Sweep(); removed != 0 {
		t.Errorf("Sweep removed %d, want 0", removed)
	}
}

func TestSessionsRunStopsOnCancel(t *testing.T) {
	s := NewSessions(&fakeSearcher{}, time.Minute, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
