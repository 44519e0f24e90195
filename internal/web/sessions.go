package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/jobassist/internal/shell"
)

// Sessions keeps one Shell per browser session in memory.
type Sessions struct {
	searcher shell.Searcher
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*session
}

type session struct {
	shell    *shell.Shell
	lastSeen time.Time
}

// NewSessions creates an empty registry. Sessions idle for longer than ttl
// are dropped by Sweep; a ttl of zero keeps them forever.
func NewSessions(s shell.Searcher, ttl time.Duration, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		searcher: s,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		entries:  make(map[string]*session),
	}
}

// Get returns the shell for id and marks the session as used.
func (s *Sessions) Get(id string) (*shell.Shell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.shell, true
}

// Create starts a new idle session.
func (s *Sessions) Create() (string, *shell.Shell) {
	id := uuid.New().String()
	sh := shell.New(s.searcher, s.logger.With("session", id))

	s.mu.Lock()
	s.entries[id] = &session{shell: sh, lastSeen: s.now()}
	s.mu.Unlock()

	return id, sh
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions idle for longer than the ttl and returns how many
// were removed.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("swept idle sessions", "removed", n, "remaining", s.Len())
			}
		}
	}
}
