// File: core/concurrency/mailbox.go
// Package concurrency: per-component mailbox (spec §4.3, §5, §9).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Re-expresses the original's hand-rolled mutex+condvar mailbox as a bounded
// channel with clear closed-channel semantics (design note §9). Ordering
// within a mailbox is FIFO by construction (a Go channel), satisfying the
// "commands are FIFO and observed in submission order" guarantee of §5.

package concurrency

import (
	"sync"

	"github.com/momentics/tizonia-go/api"
)

// Mailbox is the bounded, ordered inbox for one component's processor.
//
// Post takes mu for reading and Close takes it for writing, so a send onto
// ch can never race a close of ch: Close cannot proceed while any Post is
// still inside its critical section, and a Post that acquires the lock
// after Close has run always observes isClosed and never touches ch.
type Mailbox struct {
	mu       sync.RWMutex
	ch       chan api.MailboxMessage
	isClosed bool
	closed   chan struct{}
}

// NewMailbox creates a mailbox with the given bound.
func NewMailbox(capacity int) *Mailbox {
	if capacity <= 0 {
		capacity = 32
	}
	return &Mailbox{
		ch:     make(chan api.MailboxMessage, capacity),
		closed: make(chan struct{}),
	}
}

// Post enqueues a message; returns ErrMailboxClosed or ErrMailboxFull.
func (m *Mailbox) Post(msg api.MailboxMessage) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.isClosed {
		return ErrMailboxClosed
	}
	select {
	case m.ch <- msg:
		return nil
	default:
		return ErrMailboxFull
	}
}

// Receive blocks for the next message, or returns ok=false once Close has
// been called and the channel has drained — the "receive-until-closed"
// shape design note §9 asks for.
func (m *Mailbox) Receive() (api.MailboxMessage, bool) {
	msg, ok := <-m.ch
	return msg, ok
}

// Closed returns a channel closed once Close has been called, for use in a
// select alongside Receive by callers that also watch other sources.
func (m *Mailbox) Closed() <-chan struct{} {
	return m.closed
}

// Chan exposes the underlying channel for select-based consumers.
func (m *Mailbox) Chan() <-chan api.MailboxMessage {
	return m.ch
}

// Close stops the mailbox; idempotent. Post fails afterwards; messages
// already queued stay receivable until the channel drains.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return
	}
	m.isClosed = true
	close(m.closed)
	close(m.ch)
}
