// File: port/port.go
// Package port implements api.PortOps (spec §3, §4.1).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Grounded on the connection/framing bookkeeping in the teacher's
// protocol/connection.go (one mutex-guarded struct owning a queue of
// in-flight frames plus negotiated parameters) and on pool/buffer_ring.go
// for the choice to back the FIFO with a real queue type rather than a
// slice-with-append. Here the queue is github.com/eapache/queue: buffers are
// delivered and claimed one at a time by a single kernel goroutine per port,
// so a growable ring without the lock-free ring's CAS overhead is the right
// fit; the lock-free RingBuffer stays reserved for the multi-producer graph
// event queue in core/concurrency.

package port

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/tizonia-go/api"
)

// Port implements api.PortOps.
type Port struct {
	mu sync.Mutex

	index     int
	direction api.PortDirection
	params    api.PortParams

	enabled  bool
	flushing bool

	pending *queue.Queue // queued api.BufferHeader values, FIFO
	owned   int          // buffers currently parked or claimed (I-4)

	peer     api.TunnelPeer
	supplier bool
}

// New constructs a disabled port with the given index, direction and initial
// parameters. Ports start disabled; a component enables them during
// Loaded->Idle port population (spec §4.1 invariant b).
func New(index int, dir api.PortDirection, params api.PortParams) *Port {
	return &Port{
		index:     index,
		direction: dir,
		params:    params,
		pending:   queue.New(),
	}
}

func (p *Port) Index() int                  { return p.index }
func (p *Port) Direction() api.PortDirection { return p.direction }

func (p *Port) Params() api.PortParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

// SetParams mutates the port's negotiated parameters. Callers must ensure
// the port is disabled or mid port-settings-changed (spec §3 invariant c);
// Port itself does not gate this, since only the kernel knows the component
// state that licenses it.
func (p *Port) SetParams(params api.PortParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = params
	return nil
}

// ClaimBuffer dequeues the head buffer header for the processor.
func (p *Port) ClaimBuffer() (api.BufferHeader, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || p.flushing || p.pending.Length() == 0 {
		return api.BufferHeader{}, false
	}
	b := p.pending.Remove().(api.BufferHeader)
	return b, true
}

// ReleaseBuffer hands a processed buffer back to the port. Port itself
// only tracks ownership; forwarding to a tunnel peer is done by the
// processor's Forward callback, which the graph builder wires.
func (p *Port) ReleaseBuffer(b api.BufferHeader) {
	p.mu.Lock()
	p.owned--
	if p.owned < 0 {
		p.owned = 0
	}
	p.mu.Unlock()
}

// Deliver appends an arriving buffer to the tail of the queue.
func (p *Port) Deliver(b api.BufferHeader) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return api.NewError(api.ErrCodePortError, "port disabled")
	}
	p.pending.Add(b)
	p.owned++
	return nil
}

// Flush drops every queued buffer, releasing each to its pool, and marks
// the port flushing so ClaimBuffer hands out nothing until Enable is called
// again (I-5). Deliver still accepts buffers while the port is enabled.
func (p *Port) Flush() {
	p.mu.Lock()
	p.flushing = true
	for p.pending.Length() > 0 {
		b := p.pending.Remove().(api.BufferHeader)
		b.Release()
		p.owned--
	}
	if p.owned < 0 {
		p.owned = 0
	}
	p.mu.Unlock()
}

func (p *Port) Enable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = true
	p.flushing = false
	return nil
}

func (p *Port) Disable() error {
	p.mu.Lock()
	p.enabled = false
	p.mu.Unlock()
	p.Flush()
	p.mu.Lock()
	p.flushing = false
	p.mu.Unlock()
	return nil
}

func (p *Port) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *Port) Flushing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushing
}

func (p *Port) SetTunnel(peer api.TunnelPeer, supplier bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.peer = peer
	p.supplier = supplier
}

func (p *Port) Tunnel() (api.TunnelPeer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peer, p.peer.Valid
}

func (p *Port) IsSupplier() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.supplier
}

func (p *Port) OwnedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.owned
}

func (p *Port) Stats() api.PortStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return api.PortStats{
		Index:     p.index,
		Direction: p.direction,
		Enabled:   p.enabled,
		Flushing:  p.flushing,
		Supplier:  p.supplier,
		Queued:    p.pending.Length(),
		Peer:      p.peer,
		Params:    p.params,
	}
}

var _ api.PortOps = (*Port)(nil)
