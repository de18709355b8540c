// File: api/port.go
// Package api defines the Port contract (spec §3, §4.1).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// PortDirection is the data direction of a port.
type PortDirection int

const (
	DirInput PortDirection = iota
	DirOutput
)

// PortDomain is the media domain a port carries.
type PortDomain int

const (
	DomainAudio PortDomain = iota
	DomainVideo
	DomainImage
	DomainOther
)

// PortParams holds the negotiable format parameters of a port. Only the
// fields relevant to the domain in use are meaningful; a port may only
// mutate these while disabled or mid port-settings-changed (spec §3
// invariant c).
type PortParams struct {
	Domain     PortDomain
	Encoding   string
	SampleRate int
	Channels   int
	BitDepth   int
}

// TunnelPeer identifies the other end of a port's tunnel.
type TunnelPeer struct {
	ComponentID string
	Port        int
	Valid       bool
}

// PortStats is a read-only snapshot used by tests and introspection.
type PortStats struct {
	Index         int
	Direction     PortDirection
	Enabled       bool
	Flushing      bool
	Supplier      bool
	Queued        int
	OutAtProcessor int
	Peer          TunnelPeer
	Params        PortParams
}

// PortOps is the contract a Port exposes to its own Kernel (spec §4.1).
type PortOps interface {
	Index() int
	Direction() PortDirection
	Params() PortParams
	SetParams(p PortParams) error

	// ClaimBuffer dequeues the head buffer for the processor, nil/false if
	// none ready, disabled, or flushing.
	ClaimBuffer() (BufferHeader, bool)

	// ReleaseBuffer returns a processed buffer and drops it from the port's
	// owned count; the port does not forward it anywhere itself.
	ReleaseBuffer(b BufferHeader)

	// Deliver appends an arriving buffer to the queue (from tunnel or client).
	Deliver(b BufferHeader) error

	// Flush returns every parked/claimed buffer to its origin (I-5).
	Flush()

	Enable() error
	Disable() error
	Enabled() bool
	Flushing() bool

	SetTunnel(peer TunnelPeer, supplier bool)
	Tunnel() (TunnelPeer, bool)
	IsSupplier() bool

	OwnedCount() int
	Stats() PortStats
}
