// File: core/concurrency/worker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker is the single goroutine a processor servant runs on (spec §4.3:
// "each component drains its own mailbox in a dedicated goroutine, serially").
// Grounded on the Run-loop shape of the teacher's deleted eventloop.go, cut
// down from a multi-worker batching pool to one consumer per mailbox.

package concurrency

import (
	"context"

	"github.com/momentics/tizonia-go/api"
)

// Dispatch handles one mailbox message. Implementations live in the
// processor package; Worker only owns the drain loop.
type Dispatch func(api.MailboxMessage)

// Worker drains a Mailbox on its own goroutine until Stop is called or the
// mailbox is closed.
type Worker struct {
	mailbox  *Mailbox
	dispatch Dispatch
	done     chan struct{}
}

// NewWorker binds a dispatch function to a mailbox. Call Run to start
// draining; Run blocks, so callers invoke it with `go`.
func NewWorker(mailbox *Mailbox, dispatch Dispatch) *Worker {
	return &Worker{
		mailbox:  mailbox,
		dispatch: dispatch,
		done:     make(chan struct{}),
	}
}

// Run drains the mailbox in FIFO order until ctx is cancelled or the
// mailbox closes. Closes Done() on return.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.mailbox.Chan():
			if !ok {
				return
			}
			w.dispatch(msg)
		}
	}
}

// Done reports when Run has returned.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
