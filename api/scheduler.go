// File: api/scheduler.go
// Package api defines the deadline/guard scheduling contract the graph FSM
// arms its transition timeouts through (spec §5 "Cancellation & timeouts").
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Scheduler abstracts timer scheduling so the graph FSM does not depend
// directly on time.AfterFunc.
type Scheduler interface {
	// Schedule runs fn once, delayNanos nanoseconds from now.
	Schedule(delayNanos int64, fn func()) (Cancelable, error)

	// Cancel cancels a previously scheduled callback.
	Cancel(c Cancelable) error

	// Now returns the current time in nanoseconds, for guard comparisons.
	Now() int64
}
