// File: api/processor.go
// Package api defines the Processor servant contract (spec §4.3).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// MessageClass enumerates the stable mailbox message classes a processor
// dispatches, in the order spec §4.3 lists them.
type MessageClass int

const (
	MsgSendCommand MessageClass = iota
	MsgBuffersReady
	MsgConfigChange
	MsgDeferredResume
)

// MailboxMessage is one entry in a processor's mailbox.
type MailboxMessage struct {
	Class   MessageClass
	Cmd     Command   // valid when Class == MsgSendCommand
	Target  State      // requested state, valid for Cmd == CommandStateSet
	Port    int        // valid for PortDisable/PortEnable/Flush, -1 otherwise
	Config  map[string]any // valid when Class == MsgConfigChange
	Reply   chan error  // closed/sent-to once the message is fully handled
}

// Transform runs one component's actual work (decode/encode/render/demux)
// over one input and one output buffer claimed by the BuffersReady loop
// (spec §4.3). Either side may be the zero BufferHeader when the component
// has no ports of that direction.
type Transform func(in, out BufferHeader) (consumed, produced int, err error)

// ProcessorOps is the active-object contract for a component's worker.
type ProcessorOps interface {
	// Post enqueues a mailbox message; returns ErrTransportClosed if the
	// mailbox is closed and ErrResourceExhausted if it is full past its bound.
	Post(msg MailboxMessage) error

	// State returns the processor's current IL state.
	State() State

	// Run drains the mailbox until Stop is called; one worker per component.
	Run()
	Stop()
}
