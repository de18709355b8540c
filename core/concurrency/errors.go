// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for the concurrency package.

package concurrency

import "errors"

var (
	// ErrMailboxClosed indicates the mailbox has been stopped.
	ErrMailboxClosed = errors.New("mailbox is closed")

	// ErrMailboxFull indicates the bounded mailbox channel rejected a message.
	ErrMailboxFull = errors.New("mailbox is full")
)
