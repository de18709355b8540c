// File: kernel/kernel.go
// Package kernel implements api.KernelOps (spec §4.2).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The Kernel is the per-component custodian that owns every port and the
// buffer pool that backs supplier ports. Grounded on the ownership-registry
// shape of internal/session/session.go and store.go (an id-keyed map behind
// one RWMutex, with Cancel/Done-style lifecycle per entry) scaled down from a
// sharded multi-thousand-entry store to the handful of ports one component
// declares.

package kernel

import (
	"sync"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/logging"
)

const defaultBufferCount = 4
const defaultBufferSize = 8192

// Kernel owns every port of one component and the pool backing its
// supplier ports.
type Kernel struct {
	mu    sync.RWMutex
	ports map[int]api.PortOps
	pool  api.BufferPool

	// bufferCounts and bufferSizes record the negotiated populate
	// parameters per port index, set via SetPortAllocation.
	bufferCounts map[int]int
	bufferSizes  map[int]int
}

// New constructs a Kernel over the given pool, used to allocate buffers for
// any port this component supplies.
func New(pool api.BufferPool) *Kernel {
	return &Kernel{
		ports:        make(map[int]api.PortOps),
		pool:         pool,
		bufferCounts: make(map[int]int),
		bufferSizes:  make(map[int]int),
	}
}

// AddPort registers a port under the kernel's custody. Called once at
// component construction, before any state transition.
func (k *Kernel) AddPort(p api.PortOps) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ports[p.Index()] = p
}

// SetPortAllocation records the negotiated buffer count/size for a port,
// used the next time PopulatePort runs (OMX SetParameter semantics, spec §3).
func (k *Kernel) SetPortAllocation(port, count, size int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.bufferCounts[port] = count
	k.bufferSizes[port] = size
}

// Pool returns the buffer pool this kernel allocates supplier buffers from,
// used by the component shell's UseBuffer/AllocateBuffer/FreeBuffer (§4.4).
func (k *Kernel) Pool() api.BufferPool {
	return k.pool
}

func (k *Kernel) Port(index int) (api.PortOps, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	p, ok := k.ports[index]
	return p, ok
}

func (k *Kernel) Ports() []api.PortOps {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]api.PortOps, 0, len(k.ports))
	for _, p := range k.ports {
		out = append(out, p)
	}
	return out
}

// PopulatePort allocates buffers for a supplier port, or simply enables a
// non-supplier port to await delivery from its tunnel peer.
func (k *Kernel) PopulatePort(port int) error {
	p, ok := k.Port(port)
	if !ok {
		return api.NewError(api.ErrCodeBadParameter, "unknown port").WithContext("port", port)
	}
	if err := p.Enable(); err != nil {
		return err
	}
	if !p.IsSupplier() {
		return nil
	}

	k.mu.RLock()
	count := k.bufferCounts[port]
	size := k.bufferSizes[port]
	k.mu.RUnlock()
	if count <= 0 {
		count = defaultBufferCount
	}
	if size <= 0 {
		size = defaultBufferSize
	}

	for i := 0; i < count; i++ {
		if k.pool == nil {
			return api.NewError(api.ErrCodeInsufficientResources, "no buffer pool configured").WithContext("port", port)
		}
		b := k.pool.Get(size)
		b.PortID = port
		if err := p.Deliver(b); err != nil {
			return api.NewError(api.ErrCodeInsufficientResources, "populate failed").WithContext("port", port).WithContext("cause", err.Error())
		}
	}
	logging.Default().WithFields(map[string]any{"port": port, "count": count, "size": size}).Debug("port populated")
	return nil
}

// DepopulatePort deallocates everything the port owns; must only be called
// once OwnedCount is zero (caller's responsibility, per spec §4.2).
func (k *Kernel) DepopulatePort(port int) error {
	p, ok := k.Port(port)
	if !ok {
		return api.NewError(api.ErrCodeBadParameter, "unknown port").WithContext("port", port)
	}
	if p.OwnedCount() != 0 {
		return api.NewError(api.ErrCodePortUnpopulated, "port still owns buffers").WithContext("port", port)
	}
	logging.Default().WithField("port", port).Debug("port depopulated")
	return p.Disable()
}

func (k *Kernel) DeliverBuffer(port int, b api.BufferHeader) error {
	p, ok := k.Port(port)
	if !ok {
		return api.NewError(api.ErrCodeBadParameter, "unknown port").WithContext("port", port)
	}
	return p.Deliver(b)
}

func (k *Kernel) FlushPort(port int) error {
	p, ok := k.Port(port)
	if !ok {
		return api.NewError(api.ErrCodeBadParameter, "unknown port").WithContext("port", port)
	}
	p.Flush()
	return nil
}

func (k *Kernel) DisablePort(port int) error {
	p, ok := k.Port(port)
	if !ok {
		return api.NewError(api.ErrCodeBadParameter, "unknown port").WithContext("port", port)
	}
	return p.Disable()
}

func (k *Kernel) EnablePort(port int) error {
	return k.PopulatePort(port)
}

func (k *Kernel) IsPortFullyPopulated(port int) bool {
	p, ok := k.Port(port)
	if !ok {
		return false
	}
	if !p.Enabled() {
		return false
	}
	if !p.IsSupplier() {
		return true
	}
	k.mu.RLock()
	want := k.bufferCounts[port]
	k.mu.RUnlock()
	if want <= 0 {
		want = defaultBufferCount
	}
	return p.OwnedCount() >= want
}

func (k *Kernel) IsPortFullyDepopulated(port int) bool {
	p, ok := k.Port(port)
	if !ok {
		return true
	}
	return p.OwnedCount() == 0 && !p.Enabled()
}

var _ api.KernelOps = (*Kernel)(nil)
