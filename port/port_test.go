package port

import (
	"testing"

	"github.com/momentics/tizonia-go/api"
)

func TestPortDeliverAndClaim(t *testing.T) {
	p := New(0, api.DirInput, api.PortParams{Domain: api.DomainAudio})
	if err := p.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	if err := p.Deliver(api.BufferHeader{Data: []byte("abc"), Filled: 3}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if got := p.OwnedCount(); got != 1 {
		t.Fatalf("OwnedCount = %d, want 1", got)
	}

	b, ok := p.ClaimBuffer()
	if !ok {
		t.Fatalf("ClaimBuffer: expected a buffer")
	}
	if string(b.Bytes()) != "abc" {
		t.Fatalf("claimed buffer = %q, want %q", b.Bytes(), "abc")
	}

	if _, ok := p.ClaimBuffer(); ok {
		t.Fatalf("ClaimBuffer on empty queue should fail")
	}
}

func TestPortDeliverWhileDisabledFails(t *testing.T) {
	p := New(1, api.DirOutput, api.PortParams{})
	if err := p.Deliver(api.BufferHeader{Data: []byte("x"), Filled: 1}); err == nil {
		t.Fatalf("Deliver on disabled port should fail")
	}
}

func TestPortFlushReleasesOwnership(t *testing.T) {
	p := New(2, api.DirInput, api.PortParams{})
	_ = p.Enable()
	_ = p.Deliver(api.BufferHeader{Data: []byte("y"), Filled: 1})
	_ = p.Deliver(api.BufferHeader{Data: []byte("z"), Filled: 1})

	p.Flush()

	if got := p.OwnedCount(); got != 0 {
		t.Fatalf("OwnedCount after Flush = %d, want 0", got)
	}
	if _, ok := p.ClaimBuffer(); ok {
		t.Fatalf("ClaimBuffer after Flush should find nothing")
	}
}

func TestPortDisableFlushesQueuedBuffers(t *testing.T) {
	p := New(3, api.DirInput, api.PortParams{})
	_ = p.Enable()
	_ = p.Deliver(api.BufferHeader{Data: []byte("w"), Filled: 1})

	if err := p.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if p.Enabled() {
		t.Fatalf("port should be disabled")
	}
	if p.Flushing() {
		t.Fatalf("Flushing should settle back to false once Disable completes")
	}
	if got := p.OwnedCount(); got != 0 {
		t.Fatalf("OwnedCount after Disable = %d, want 0", got)
	}
}

func TestPortTunnel(t *testing.T) {
	p := New(4, api.DirOutput, api.PortParams{})
	peer := api.TunnelPeer{ComponentID: "decoder", Port: 0, Valid: true}
	p.SetTunnel(peer, true)

	got, ok := p.Tunnel()
	if !ok || got != peer {
		t.Fatalf("Tunnel() = %+v, %v; want %+v, true", got, ok, peer)
	}
	if !p.IsSupplier() {
		t.Fatalf("IsSupplier should be true")
	}
}
