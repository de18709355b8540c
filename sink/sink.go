// File: sink/sink.go
// Package sink implements api.SinkWriter for terminal (sink-role) components
// (spec §1 Scope, §5 Backpressure).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FileSink adapts an *os.File to api.SinkWriter; grounded on the teacher's
// pattern of a thin adapter struct around one OS handle (client/facade.go)
// rather than anything codec/ALSA-specific, which is out of scope (§1).

package sink

import (
	"os"

	"github.com/momentics/tizonia-go/api"
)

// FileSink writes PCM bytes to an *os.File (a FIFO, a device node, or a
// regular file for test capture) and exposes its descriptor to a reactor.
type FileSink struct {
	f *os.File
}

// NewFileSink wraps an already-open file.
func NewFileSink(f *os.File) *FileSink {
	return &FileSink{f: f}
}

func (s *FileSink) Write(pcm []byte) (int, error) {
	n, err := s.f.Write(pcm)
	if err != nil {
		return n, api.NewError(api.ErrCodePortError, "sink write failed").WithContext("cause", err.Error())
	}
	return n, nil
}

func (s *FileSink) Writable() (uintptr, bool) {
	return s.f.Fd(), true
}

func (s *FileSink) Close() error {
	return s.f.Close()
}

var _ api.SinkWriter = (*FileSink)(nil)
