// File: processor/processor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Processor is the per-component active object: one worker goroutine drains
// a bounded mailbox and runs the command state machine plus the BuffersReady
// transform loop (spec §4.3). Grounded on the façade shape of the teacher's
// client/facade.go (a thin struct wiring a kernel-equivalent and a transport
// behind one small interface) combined with the deleted eventloop.go's single
// consumer shape, now owned by core/concurrency.Worker.

package processor

import (
	"context"
	"sync"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/core/concurrency"
	"github.com/momentics/tizonia-go/logging"
)

// Forward delivers a drained or filled buffer to wherever it belongs next:
// downstream to a tunnel peer's kernel, upstream back to a supplier, or out
// to a sink. Wired through SetForward by whoever builds the graph
// (graph.BuildFileGraph), which knows how to reach each tunnel peer.
type Forward func(port int, b api.BufferHeader) error

// Processor implements api.ProcessorOps.
type Processor struct {
	mu          sync.Mutex
	componentID string
	state       api.State

	kernel    api.KernelOps
	transform api.Transform
	listener  api.EventListener
	forward   Forward

	mailbox *concurrency.Mailbox
	worker  *concurrency.Worker
	cancel  context.CancelFunc
}

// New constructs a Processor in state Loaded.
func New(componentID string, kernel api.KernelOps, transform api.Transform, listener api.EventListener) *Processor {
	p := &Processor{
		componentID: componentID,
		state:       api.StateLoaded,
		kernel:      kernel,
		transform:   transform,
		listener:    listener,
		mailbox:     concurrency.NewMailbox(64),
	}
	p.worker = concurrency.NewWorker(p.mailbox, p.dispatch)
	return p
}

// SetForward wires the buffer-forwarding callback. Must be called before Run.
func (p *Processor) SetForward(f Forward) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forward = f
}

func (p *Processor) Post(msg api.MailboxMessage) error {
	if err := p.mailbox.Post(msg); err != nil {
		if err == concurrency.ErrMailboxClosed {
			return api.ErrTransportClosed
		}
		return api.ErrResourceExhausted
	}
	return nil
}

func (p *Processor) State() api.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Processor) setState(s api.State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run drains the mailbox until Stop is called. Intended to run on its own
// goroutine, one per component (spec §4.3).
func (p *Processor) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	p.worker.Run(ctx)
}

func (p *Processor) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.mailbox.Close()
}

func (p *Processor) dispatch(msg api.MailboxMessage) {
	var err error
	switch msg.Class {
	case api.MsgSendCommand:
		err = p.handleCommand(msg)
	case api.MsgBuffersReady:
		p.runBuffersReady()
	case api.MsgConfigChange:
		// Parameter structs are owned by their port; nothing beyond
		// acknowledging is needed here since only one mailbox thread ever
		// touches them (spec §5 "Shared-resource policy").
	case api.MsgDeferredResume:
		p.runBuffersReady()
	}
	if msg.Reply != nil {
		msg.Reply <- err
		close(msg.Reply)
	}
}

func (p *Processor) handleCommand(msg api.MailboxMessage) error {
	switch msg.Cmd {
	case api.CommandStateSet:
		return p.handleStateSet(msg.Target)
	case api.CommandFlush:
		return p.handlePortOp(msg.Port, api.CommandFlush, p.kernel.FlushPort)
	case api.CommandPortDisable:
		return p.handlePortOp(msg.Port, api.CommandPortDisable, p.kernel.DisablePort)
	case api.CommandPortEnable:
		return p.handlePortOp(msg.Port, api.CommandPortEnable, p.kernel.EnablePort)
	}
	return nil
}

func (p *Processor) handlePortOp(port int, cmd api.Command, op func(int) error) error {
	if err := op(port); err != nil {
		p.emitError(port, err)
		return err
	}
	p.emitCommandComplete(api.CommandCompleteEvent{Cmd: cmd, Port: port})
	return nil
}

func (p *Processor) handleStateSet(target api.State) error {
	from := p.State()
	switch lookup(from, target) {
	case reject:
		err := api.NewError(api.ErrCodeIncorrectStateTransition, "transition not permitted").
			WithContext("from", from.String()).WithContext("to", target.String())
		p.emitError(-1, err)
		return err
	case noop:
		p.emitCommandComplete(api.CommandCompleteEvent{Cmd: api.CommandStateSet, Port: -1, State: target, HasState: true})
		return nil
	case run:
		if err := p.runTransition(from, target); err != nil {
			p.emitError(-1, err)
			return err
		}
		p.setState(target)
		logging.Default().WithFields(map[string]any{
			"component": p.componentID,
			"from":      from.String(),
			"to":        target.String(),
		}).Debug("processor state transition")
		p.emitCommandComplete(api.CommandCompleteEvent{Cmd: api.CommandStateSet, Port: -1, State: target, HasState: true})
		if target == api.StateExecuting {
			// Kick the buffer-flow loop immediately: a supplier port already
			// holds its populated buffers and has no upstream to nudge it
			// with a BuffersReady message of its own.
			p.runBuffersReady()
		}
		return nil
	}
	return nil
}

// runTransition performs the resource work associated with one (from, to)
// lattice cell. Cells without special resource work still set the new
// state through the caller.
func (p *Processor) runTransition(from, to api.State) error {
	switch {
	case from == api.StateLoaded && to == api.StateIdle:
		return p.populateAll()
	case from == api.StateIdle && to == api.StateLoaded:
		return p.depopulateAll()
	case to == api.StateIdle: // Exe->Idle, Paused->Idle: quiesce, keep allocation
		p.flushAll()
		return nil
	case from == api.StateIdle && (to == api.StateExecuting || to == api.StatePaused):
		if !p.allPopulated() {
			return api.NewError(api.ErrCodePortUnpopulated, "not all ports populated")
		}
		return nil
	default:
		return nil
	}
}

func (p *Processor) populateAll() error {
	for _, port := range p.kernel.Ports() {
		if err := p.kernel.PopulatePort(port.Index()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) depopulateAll() error {
	for _, port := range p.kernel.Ports() {
		idx := port.Index()
		if !p.kernel.IsPortFullyDepopulated(idx) {
			if err := p.kernel.FlushPort(idx); err != nil {
				return err
			}
			if err := p.kernel.DepopulatePort(idx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Processor) flushAll() {
	for _, port := range p.kernel.Ports() {
		_ = p.kernel.FlushPort(port.Index())
	}
}

func (p *Processor) allPopulated() bool {
	for _, port := range p.kernel.Ports() {
		if !p.kernel.IsPortFullyPopulated(port.Index()) {
			return false
		}
	}
	return true
}

func (p *Processor) findPorts() (in, out api.PortOps) {
	for _, port := range p.kernel.Ports() {
		if port.Direction() == api.DirInput && in == nil {
			in = port
		}
		if port.Direction() == api.DirOutput && out == nil {
			out = port
		}
	}
	return in, out
}

// runBuffersReady claims at most one input and one output buffer, runs the
// transform, and forwards both sides on, looping until either side runs dry
// (spec §4.3). Active in Executing, and in Paused for components that
// deliberately pre-buffer ahead of resume.
func (p *Processor) runBuffersReady() {
	st := p.State()
	if st != api.StateExecuting && st != api.StatePaused {
		return
	}
	inPort, outPort := p.findPorts()
	if p.transform == nil {
		return
	}

	for {
		var inBuf, outBuf api.BufferHeader
		haveIn, haveOut := true, true
		if inPort != nil {
			inBuf, haveIn = inPort.ClaimBuffer()
		}
		if outPort != nil {
			outBuf, haveOut = outPort.ClaimBuffer()
		}
		if (inPort != nil && !haveIn) || (outPort != nil && !haveOut) {
			if inPort != nil && haveIn {
				inPort.ReleaseBuffer(inBuf)
			}
			if outPort != nil && haveOut {
				outPort.ReleaseBuffer(outBuf)
			}
			return
		}

		consumed, produced, err := p.transform(inBuf, outBuf)
		if err != nil {
			if apiErr, ok := err.(*api.Error); ok && apiErr.IsRetriable() {
				return
			}
			p.emitError(inBuf.PortID, err)
			return
		}

		if inPort != nil {
			inPort.ReleaseBuffer(inBuf)
			if inBuf.Flags.Has(api.FlagEOS) {
				p.listener.OnBufferFlag(p.componentID, api.BufferFlagEvent{Port: inPort.Index(), Flags: inBuf.Flags})
			}
			p.returnBuffer(inPort, inBuf, consumed)
		}
		if outPort != nil {
			outBuf.Filled = produced
			outPort.ReleaseBuffer(outBuf)
			if outBuf.Flags.Has(api.FlagEOS) {
				p.listener.OnBufferFlag(p.componentID, api.BufferFlagEvent{Port: outPort.Index(), Flags: outBuf.Flags})
			}
			p.forwardBuffer(outPort, outBuf)
		}
	}
}

func (p *Processor) returnBuffer(port api.PortOps, b api.BufferHeader, consumed int) {
	if port.IsSupplier() {
		b.Release()
		return
	}
	p.forwardBuffer(port, b)
}

func (p *Processor) forwardBuffer(port api.PortOps, b api.BufferHeader) {
	if p.forward == nil {
		b.Release()
		return
	}
	if err := p.forward(port.Index(), b); err != nil {
		p.emitError(port.Index(), err)
	}
}

func (p *Processor) emitCommandComplete(ev api.CommandCompleteEvent) {
	if p.listener != nil {
		p.listener.OnCommandComplete(p.componentID, ev)
	}
}

func (p *Processor) emitError(port int, err error) {
	if p.listener == nil {
		return
	}
	code := api.ErrCodeInternal
	if apiErr, ok := err.(*api.Error); ok {
		code = apiErr.Code
	}
	p.listener.OnError(p.componentID, api.ErrorEvent{Code: code, Port: port, Err: err})
}

var _ api.ProcessorOps = (*Processor)(nil)
