// File: core/concurrency/graphloop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// GraphLoop multiplexes control-surface events (play/pause/seek/...) and
// component event callbacks (command-complete, error, port-settings-changed)
// onto the single goroutine that drives the graph FSM (spec §5). Grounded on
// the same batched-drain-with-backoff shape as the deleted eventloop.go, one
// level up: instead of dispatching to per-handler callbacks it feeds a single
// FSM-transition function, and it multiplexes two distinct producers through
// one RingBuffer instead of one channel, since components may emit events from
// different goroutines concurrently.

package concurrency

import (
	"context"
	"runtime"
	"time"

	"github.com/momentics/tizonia-go/api"
)

// GraphEvent is one of the two kinds of occurrence the graph thread reacts
// to: a user/control-surface command, or a component lifecycle event.
type GraphEvent struct {
	Control *api.ControlEvent
	Command *api.CommandCompleteEvent
	Error   *api.ErrorEvent
	PortChg *api.PortSettingsChangedEvent
	BufFlag *api.BufferFlagEvent
}

// GraphDispatch handles one multiplexed graph event.
type GraphDispatch func(GraphEvent)

// GraphLoop is the bounded event queue and drain loop backing the graph
// thread.
type GraphLoop struct {
	ring     *RingBuffer[GraphEvent]
	dispatch GraphDispatch
	done     chan struct{}
}

// NewGraphLoop allocates a graph loop with the given queue depth.
func NewGraphLoop(depth uint64, dispatch GraphDispatch) *GraphLoop {
	return &GraphLoop{
		ring:     NewRingBuffer[GraphEvent](depth),
		dispatch: dispatch,
		done:     make(chan struct{}),
	}
}

// Push enqueues an event; returns false if the loop's queue is full, in
// which case callers should treat it like backpressure (the graph thread is
// falling behind) rather than silently drop it.
func (g *GraphLoop) Push(ev GraphEvent) bool {
	return g.ring.Enqueue(ev)
}

// Run drains the queue until ctx is cancelled, backing off with a capped
// exponential sleep when the queue runs dry so the graph thread doesn't spin.
func (g *GraphLoop) Run(ctx context.Context) {
	defer close(g.done)
	const maxBackoff = 2 * time.Millisecond
	backoff := time.Microsecond
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		ev, ok := g.ring.Dequeue()
		if !ok {
			runtime.Gosched()
			time.Sleep(backoff)
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Microsecond
		g.dispatch(ev)
	}
}

// Done reports when Run has returned.
func (g *GraphLoop) Done() <-chan struct{} {
	return g.done
}
