// File: api/component.go
// Package api defines the Component shell contract (spec §4.4).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// ComponentOps is the IL-style public façade every component exposes.
type ComponentOps interface {
	Name() string
	Role() string
	State() State

	GetParameter(index PortIndexType, port int) (PortParams, error)
	SetParameter(index PortIndexType, port int, p PortParams) error
	GetConfig(key string) (any, error)
	SetConfig(key string, value any) error

	// SendCommand is asynchronous: it validates inline then forwards onto
	// the processor's mailbox, returning once accepted (not once complete).
	SendCommand(cmd Command, target State, port int) error

	EmptyThisBuffer(port int, b BufferHeader) error
	FillThisBuffer(port int, b BufferHeader) error

	UseBuffer(port int, size int) (BufferHeader, error)
	AllocateBuffer(port int, size int) (BufferHeader, error)
	FreeBuffer(port int, b BufferHeader) error

	AddEventListener(l EventListener)

	Kernel() KernelOps
}
