// File: api/kernel.go
// Package api defines the Kernel contract (spec §4.2).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// KernelOps is the per-component buffer custodian exposed to the component
// shell. It is the single entity that moves buffer headers between "parked
// in port" and "claimed by processor" (spec §4.2).
type KernelOps interface {
	// PopulatePort allocates or solicits buffers for one enabled port during
	// Loaded→Idle. Returns ErrCodeInsufficientResources on allocation
	// failure. A non-supplier port is only enabled and the call returns at
	// once; a peer supplier that never delivers is not detected here.
	PopulatePort(port int) error

	// DepopulatePort deallocates everything owned by a port during
	// Idle→Loaded; must only run once the port owns zero buffers.
	DepopulatePort(port int) error

	// DeliverBuffer appends a buffer arriving from the tunnel peer or the
	// client to the target port's queue and nudges the processor mailbox.
	DeliverBuffer(port int, b BufferHeader) error

	// FlushPort synchronously flushes one port; returns once the port has
	// reported zero owned buffers (I-5).
	FlushPort(port int) error

	// DisablePort blocks new deliveries, flushes, deallocates if supplier.
	DisablePort(port int) error

	// EnablePort re-negotiates buffer count/size and reallocates if supplier.
	EnablePort(port int) error

	// IsPortFullyPopulated / IsPortFullyDepopulated answer the populate-check
	// hooks used by the Idle<->Executing transition handlers.
	IsPortFullyPopulated(port int) bool
	IsPortFullyDepopulated(port int) bool

	Port(index int) (PortOps, bool)
	Ports() []PortOps
}
