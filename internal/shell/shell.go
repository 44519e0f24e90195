package shell

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kalambet/jobassist/internal/contract"
	"github.com/kalambet/jobassist/internal/search"
)

// FailureMessage is what the user sees for any failed search.
const FailureMessage = "Failed to fetch data. Please make sure the backend is running."

// ErrSuperseded is returned by Complete when a newer submission replaced the
// ticket's one.
var ErrSuperseded = errors.New("search superseded by a newer submission")

// Searcher performs the backend search.
type Searcher interface {
	Search(ctx context.Context, q contract.SearchQuery) (contract.Result, error)
}

// Ticket identifies an accepted submission.
type Ticket struct {
	Seq   uint64
	Query contract.SearchQuery
}

// Shell owns the state of one search session.
type Shell struct {
	searcher Searcher
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	seq      uint64
	inFlight context.CancelFunc
}

// New creates an idle Shell. A nil logger falls back to slog.Default().
func New(s Searcher, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{searcher: s, logger: logger}
}

// Snapshot returns a copy of the current state.
func (sh *Shell) Snapshot() State {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.state
}

// Begin validates the submission and moves the shell to Loading. An empty
// role returns a *contract.ValidationError and changes nothing. A search
// still running for an earlier submission is cancelled.
func (sh *Shell) Begin(role, location string) (Ticket, error) {
	q := contract.NewSearchQuery(role, location)
	if err := q.Validate(); err != nil {
		return Ticket{}, err
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.seq++
	if sh.inFlight != nil {
		sh.inFlight()
		sh.inFlight = nil
	}
	sh.state = Reduce(sh.state, Submitted{Query: q, Seq: sh.seq})
	return Ticket{Seq: sh.seq, Query: q}, nil
}

// Complete runs the search for t and records the outcome. Tickets that were
// superseded before or during the search leave the state alone and return
// ErrSuperseded.
func (sh *Shell) Complete(ctx context.Context, t Ticket) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sh.mu.Lock()
	if t.Seq != sh.seq {
		sh.mu.Unlock()
		sh.logger.Debug("skipping superseded search", "seq", t.Seq)
		return ErrSuperseded
	}
	sh.inFlight = cancel
	sh.mu.Unlock()

	result, err := sh.searcher.Search(ctx, t.Query)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if t.Seq != sh.seq {
		sh.logger.Debug("discarding superseded search response", "seq", t.Seq, "latest", sh.seq)
		return ErrSuperseded
	}
	sh.inFlight = nil

	if err != nil {
		sh.logFailure(t, err)
		sh.state = Reduce(sh.state, Failed{Seq: t.Seq, Message: FailureMessage})
		return err
	}

	sh.logger.Info("search completed", "seq", t.Seq, "role", t.Query.Role, "jobs", len(result.Jobs))
	sh.state = Reduce(sh.state, Resolved{Seq: t.Seq, Result: result})
	return nil
}

// Submit is Begin followed by Complete on the caller's goroutine.
func (sh *Shell) Submit(ctx context.Context, role, location string) error {
	t, err := sh.Begin(role, location)
	if err != nil {
		return err
	}
	return sh.Complete(ctx, t)
}

func (sh *Shell) logFailure(t Ticket, err error) {
	var malformed *search.MalformedResponseError
	var failed *search.RequestFailedError
	switch {
	case errors.As(err, &malformed):
		sh.logger.Error("malformed search response",
			"seq", t.Seq,
			"role", t.Query.Role,
			"layer", malformed.Layer,
			"problems", malformed.Problems,
		)
	case errors.As(err, &failed):
		sh.logger.Warn("search request failed",
			"seq", t.Seq,
			"role", t.Query.Role,
			"status", failed.StatusCode,
			"error", err,
		)
	default:
		sh.logger.Error("search failed", "seq", t.Seq, "role", t.Query.Role, "error", err)
	}
}
