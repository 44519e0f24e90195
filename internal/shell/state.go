package shell

import "github.com/kalambet/jobassist/internal/contract"

// Phase is where the search interaction currently stands.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Failure
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// State is the UI state of one search session. It only changes through
// Reduce. Result and Err are never both set once a request has completed.
type State struct {
	Role     string
	Location string
	Phase    Phase
	Result   *contract.Result
	Err      string
	// Seq identifies the latest submission; answers to older ones are dropped.
	Seq uint64
}

// Loading reports whether a search is in flight.
func (s State) Loading() bool { return s.Phase == Loading }

// Event is a transition input for Reduce.
type Event interface {
	event()
}

// Submitted starts a search for Query.
type Submitted struct {
	Query contract.SearchQuery
	Seq   uint64
}

// Resolved delivers the result of submission Seq.
type Resolved struct {
	Seq    uint64
	Result contract.Result
}

// Failed reports that submission Seq could not produce a result.
type Failed struct {
	Seq     uint64
	Message string
}

func (Submitted) event() {}
func (Resolved) event() {}
func (Failed) event() {}

// Reduce applies e to s and returns the next state. Completion events for a
// submission other than the latest one leave s untouched.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case Submitted:
		s.Role = e.Query.Role
		s.Location = e.Query.Location
		s.Phase = Loading
		s.Err = ""
		s.Seq = e.Seq
	case Resolved:
		if s.Phase != Loading || e.Seq != s.Seq {
			return s
		}
		r := e.Result
		s.Result = &r
		s.Err = ""
		s.Phase = Success
	case Failed:
		if s.Phase != Loading || e.Seq != s.Seq {
			return s
		}
		s.Result = nil
		s.Err = e.Message
		s.Phase = Failure
	}
	return s
}
