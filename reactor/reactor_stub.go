//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for platforms without an epoll-style readiness API.
// New fails on these platforms; no timer-based polling fallback exists.

package reactor

import (
	"errors"

	"github.com/momentics/tizonia-go/api"
)

// New returns an error for unsupported platforms.
func New() (api.Reactor, error) {
	return nil, errors.New("reactor: this platform is not supported")
}
