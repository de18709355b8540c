package buffer

import "testing"

func TestGetRoundsUpToSizeClass(t *testing.T) {
	p := NewHeaderPool(7)
	b := p.Get(100)
	if cap(b.Data) != 1024 {
		t.Fatalf("cap = %d, want 1024", cap(b.Data))
	}
	if b.Allocator != 7 {
		t.Fatalf("Allocator = %d, want 7", b.Allocator)
	}
}

func TestPutReusesBackingArray(t *testing.T) {
	p := NewHeaderPool(1)
	b1 := p.Get(512)
	b1.Data[0] = 0xAB
	p.Put(b1)

	b2 := p.Get(512)
	if b2.Data[0] != 0xAB {
		t.Fatalf("expected reused backing array, got fresh allocation")
	}
	stats := p.Stats()
	if stats.TotalAlloc != 2 || stats.TotalFree != 1 {
		t.Fatalf("stats = %+v, want alloc=2 free=1", stats)
	}
}

func TestPutIgnoresForeignHeader(t *testing.T) {
	p := NewHeaderPool(1)
	foreign := NewHeaderPool(2).Get(512)
	p.Put(foreign) // must not panic or corrupt this pool's stats

	if stats := p.Stats(); stats.TotalFree != 0 {
		t.Fatalf("TotalFree = %d, want 0 for a foreign header", stats.TotalFree)
	}
}

func TestReleaseRoundTripsThroughPool(t *testing.T) {
	p := NewHeaderPool(3)
	b := p.Get(2048)
	b.Release()

	stats := p.Stats()
	if stats.InUse != 0 {
		t.Fatalf("InUse = %d, want 0 after Release", stats.InUse)
	}
}
