// File: sink/memory.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// MemorySink is a non-FD-backed api.SinkWriter for tests and for
// single-track-to-buffer walkthroughs (spec §8 walkthrough 1).

package sink

import (
	"sync"

	"github.com/momentics/tizonia-go/api"
)

// MemorySink accumulates every write in memory. Writable always reports no
// FD, matching the "has no FD-based readiness signal" case of
// api.SinkWriter.Writable.
type MemorySink struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(pcm []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, api.ErrTransportClosed
	}
	s.data = append(s.data, pcm...)
	return len(pcm), nil
}

func (s *MemorySink) Writable() (uintptr, bool) { return 0, false }

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Bytes returns a copy of everything written so far.
func (s *MemorySink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

var _ api.SinkWriter = (*MemorySink)(nil)
