package kernel

import (
	"testing"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/port"
)

type fakePool struct {
	allocs int64
	frees  int64
}

func (f *fakePool) Get(size int) api.BufferHeader {
	f.allocs++
	return api.BufferHeader{Data: make([]byte, size), Pool: f}
}

func (f *fakePool) Put(b api.BufferHeader) {
	f.frees++
}

func (f *fakePool) Stats() api.BufferPoolStats {
	return api.BufferPoolStats{TotalAlloc: f.allocs, TotalFree: f.frees}
}

func newTestKernel(supplier bool) (*Kernel, *fakePool, *port.Port) {
	pool := &fakePool{}
	k := New(pool)
	p := port.New(0, api.DirOutput, api.PortParams{Domain: api.DomainAudio})
	p.SetTunnel(api.TunnelPeer{ComponentID: "sink", Port: 0, Valid: true}, supplier)
	k.AddPort(p)
	return k, pool, p
}

func TestPopulateSupplierPort(t *testing.T) {
	k, pool, p := newTestKernel(true)
	k.SetPortAllocation(0, 3, 256)

	if err := k.PopulatePort(0); err != nil {
		t.Fatalf("PopulatePort: %v", err)
	}
	if pool.allocs != 3 {
		t.Fatalf("allocs = %d, want 3", pool.allocs)
	}
	if !k.IsPortFullyPopulated(0) {
		t.Fatalf("expected port fully populated")
	}
	if p.OwnedCount() != 3 {
		t.Fatalf("OwnedCount = %d, want 3", p.OwnedCount())
	}
}

func TestPopulateNonSupplierPortSkipsAlloc(t *testing.T) {
	k, pool, _ := newTestKernel(false)

	if err := k.PopulatePort(0); err != nil {
		t.Fatalf("PopulatePort: %v", err)
	}
	if pool.allocs != 0 {
		t.Fatalf("non-supplier port should not allocate, got %d allocs", pool.allocs)
	}
	if !k.IsPortFullyPopulated(0) {
		t.Fatalf("non-supplier port is fully populated once merely enabled")
	}
}

func TestDepopulateRequiresEmptyPort(t *testing.T) {
	k, _, _ := newTestKernel(true)
	k.SetPortAllocation(0, 1, 64)
	if err := k.PopulatePort(0); err != nil {
		t.Fatalf("PopulatePort: %v", err)
	}

	if err := k.DepopulatePort(0); err == nil {
		t.Fatalf("DepopulatePort should fail while port owns buffers")
	}

	if err := k.FlushPort(0); err != nil {
		t.Fatalf("FlushPort: %v", err)
	}
	if err := k.DepopulatePort(0); err != nil {
		t.Fatalf("DepopulatePort after flush: %v", err)
	}
	if !k.IsPortFullyDepopulated(0) {
		t.Fatalf("expected port fully depopulated")
	}
}

func TestDeliverBufferUnknownPort(t *testing.T) {
	k, _, _ := newTestKernel(true)
	if err := k.DeliverBuffer(99, api.BufferHeader{}); err == nil {
		t.Fatalf("DeliverBuffer on unknown port should fail")
	}
}
