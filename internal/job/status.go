// Package job holds the shared state of one optimization request: its
// status machine, per-material candidate pools, progress, and strategy
// rankings. Every mutable field lives behind a single lock so concurrent
// search runs observe whole updates only.
package job

import "fmt"

// Status is the lifecycle state of a job.
type Status int

const (
	StatusIdle Status = iota
	StatusQueued
	StatusRunning
	StatusFinished
	StatusStopped
	StatusTerminated
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusQueued:
		return "Queued"
	case StatusRunning:
		return "Running"
	case StatusFinished:
		return "Finished"
	case StatusStopped:
		return "Stopped"
	case StatusTerminated:
		return "Terminated"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IsTerminal reports whether no further work happens in this state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFinished, StatusStopped, StatusTerminated, StatusError:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition is legal. Self
// transitions always are; terminal states may still degrade to Error, and
// Error may restart via Idle or Queued.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusIdle:
		return next == StatusQueued
	case StatusQueued:
		switch next {
		case StatusRunning, StatusStopped, StatusTerminated, StatusError:
			return true
		}
	case StatusRunning:
		switch next {
		case StatusFinished, StatusStopped, StatusTerminated, StatusError:
			return true
		}
	case StatusFinished, StatusStopped, StatusTerminated:
		return next == StatusError
	case StatusError:
		return next == StatusIdle || next == StatusQueued
	}
	return false
}

// InvalidTransitionError reports an illegal status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid job status transition %s -> %s", e.From, e.To)
}
