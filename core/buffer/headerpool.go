// File: core/buffer/headerpool.go
// Package buffer implements size-classed buffer header pooling (spec §3
// "Data Model", §9 ambient "buffer pool" concern).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Grounded on pool/bufferpool.go + pool/slab_pool.go's size-class subpool
// design: requests are rounded up to the nearest power-of-two size class and
// served from a class-specific free list, backed here by
// core/concurrency.RingBuffer instead of the teacher's LockFreeQueue, since
// this module defines its own lock-free ring rather than importing the
// teacher's (now-dropped) core/concurrency.LockFreeQueue.

package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/core/concurrency"
)

// sizeClasses mirrors the teacher's power-of-two table; buffer headers in
// this runtime range from small control packets to full video frames.
var sizeClasses = [...]int{
	1 * 1024,
	2 * 1024,
	4 * 1024,
	8 * 1024,
	16 * 1024,
	32 * 1024,
	64 * 1024,
	128 * 1024,
	256 * 1024,
	512 * 1024,
	1 * 1024 * 1024,
	2 * 1024 * 1024,
}

func sizeClassUpperBound(size int) int {
	for _, c := range sizeClasses {
		if size <= c {
			return c
		}
	}
	return sizeClasses[len(sizeClasses)-1]
}

const defaultClassCapacity = 256

// classPool is a fixed-capacity free list for one size class.
type classPool struct {
	size       int
	ring       *concurrency.RingBuffer[[]byte]
	totalAlloc atomic.Int64
	totalFree  atomic.Int64
	inUse      atomic.Int64
}

func newClassPool(size int) *classPool {
	return &classPool{size: size, ring: concurrency.NewRingBuffer[[]byte](defaultClassCapacity)}
}

func (cp *classPool) get() []byte {
	if data, ok := cp.ring.Dequeue(); ok {
		cp.totalAlloc.Add(1)
		cp.inUse.Add(1)
		return data
	}
	cp.totalAlloc.Add(1)
	cp.inUse.Add(1)
	return make([]byte, cp.size)
}

func (cp *classPool) put(data []byte) {
	cp.totalFree.Add(1)
	cp.inUse.Add(-1)
	if !cp.ring.Enqueue(data) {
		// ring full: let the GC reclaim this header's backing array.
		return
	}
}

func (cp *classPool) stats() api.BufferPoolStats {
	return api.BufferPoolStats{
		TotalAlloc: cp.totalAlloc.Load(),
		TotalFree:  cp.totalFree.Load(),
		InUse:      cp.inUse.Load(),
	}
}

// HeaderPool is a api.BufferPool backed by size-classed free lists, one per
// component (a supplier port owns exactly one HeaderPool, spec §3 "a
// supplier port's kernel calls Get during populate").
type HeaderPool struct {
	allocator int
	mu        sync.RWMutex
	classes   map[int]*classPool
}

// NewHeaderPool constructs an empty pool tagged with an opaque allocator id,
// used to detect foreign headers on Put (defensive against cross-component
// buffer leaks, spec §3 invariant "exactly one owner").
func NewHeaderPool(allocator int) *HeaderPool {
	return &HeaderPool{allocator: allocator, classes: make(map[int]*classPool)}
}

func (p *HeaderPool) classFor(size int) *classPool {
	class := sizeClassUpperBound(size)
	p.mu.RLock()
	cp, ok := p.classes[class]
	p.mu.RUnlock()
	if ok {
		return cp
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if cp, ok = p.classes[class]; ok {
		return cp
	}
	cp = newClassPool(class)
	p.classes[class] = cp
	return cp
}

// Get returns a header of at least size bytes, tagged with this pool as its
// Releaser. A freshly allocated array is zero-filled; a reused one keeps
// whatever bytes its previous holder left in it.
func (p *HeaderPool) Get(size int) api.BufferHeader {
	cp := p.classFor(size)
	data := cp.get()
	if len(data) < size {
		data = make([]byte, size)
	}
	return api.BufferHeader{
		Data:      data,
		Allocator: p.allocator,
		Pool:      p,
	}
}

// Put returns a header's backing storage to its size class, a no-op if the
// header was not allocated by this pool.
func (p *HeaderPool) Put(b api.BufferHeader) {
	if b.Allocator != p.allocator || b.Data == nil {
		return
	}
	cp := p.classFor(cap(b.Data))
	cp.put(b.Data[:cap(b.Data)])
}

// Stats aggregates usage across every size class currently in use.
func (p *HeaderPool) Stats() api.BufferPoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var total api.BufferPoolStats
	for _, cp := range p.classes {
		s := cp.stats()
		total.TotalAlloc += s.TotalAlloc
		total.TotalFree += s.TotalFree
		total.InUse += s.InUse
	}
	return total
}

var _ api.BufferPool = (*HeaderPool)(nil)
