// Package view holds the per-page state machines that sit between the
// aggregation engine and a presentation layer. Each coordinator owns its
// fetch status, selection and edit sub-states, applies local projection
// patches after confirmed remote writes, and exposes an immutable
// snapshot plus action methods - nothing else.
package view

import "time"

// nowFunc is swapped out in tests that pin the current month.
var nowFunc = time.Now

// Status is the fetch state of a page coordinator.
type Status int

const (
	// StatusIdle means no fetch has been requested yet.
	StatusIdle Status = iota
	// StatusLoading means a fetch is in flight.
	StatusLoading
	// StatusReady means data is available.
	StatusReady
	// StatusError means the last fetch failed and no data is available.
	StatusError
)

// String returns the status name for logging and tests.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// DiaryEdit carries the editable fields of a diary. Nil pointer fields
// keep the current value; for Tags, nil keeps existing tags and an empty
// slice clears them.
type DiaryEdit struct {
	Title         *string
	Progress      *string
	Problem       *string
	Solution      *string
	Retrospective *string
	Tags          []string
}
