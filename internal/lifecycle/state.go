package lifecycle

import (
	"time"

	"github.com/five82/lantern/internal/research"
	"github.com/five82/lantern/internal/sources"
)

// Phase tags the lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Pending
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the single lifecycle record owned by a Controller. Answer,
// Sources and Notice are set only in Succeeded; Message and Err only in Failed.
type State struct {
	Phase     Phase
	Options   research.QueryOptions
	Query     string
	RequestID string

	Answer  string
	Sources []string
	Notice  string

	Message string
	Err     error

	StartedAt  time.Time
	FinishedAt time.Time
}

// SourceViews normalizes the raw references for display.
func (s State) SourceViews() []sources.View {
	return sources.NormalizeAll(s.Sources)
}

// Elapsed returns how long the request ran, or has been running.
func (s State) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Settled reports whether the state is a terminal outcome.
func (s State) Settled() bool {
	return s.Phase == Succeeded || s.Phase == Failed
}

func (s State) clone() State {
	if len(s.Sources) > 0 {
		dup := make([]string, len(s.Sources))
		copy(dup, s.Sources)
		s.Sources = dup
	}
	return s
}

// StatusKind selects how a status message is styled.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusProgress
	StatusSuccess
	StatusError
)

// Status is the transient line shown under the query. A zero Expires means
// it stays until the next transition replaces it.
type Status struct {
	Text    string
	Detail  string
	Kind    StatusKind
	Expires time.Time
}

// Empty reports whether there is nothing to show.
func (s Status) Empty() bool {
	return s.Text == ""
}

// Snapshot pairs state and status read under one lock.
type Snapshot struct {
	State  State
	Status Status
}
