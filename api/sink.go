// File: api/sink.go
// Package api defines the external audio-sink contract (spec §1, §2, §5).
// Codec internals, ALSA/PulseAudio backends: out of scope; this is the
// interface-to-core only.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// SinkWriter is a blocking write sink plus a writable-readiness signal, the
// interface-to-core contract for PulseAudio/ALSA backends (spec §1 Scope).
type SinkWriter interface {
	// Write blocks until the bytes are accepted or returns an error
	// (spec §5 Suspension points). sink.FileSink reports every write failure
	// as ErrCodePortError, and no caller in this module registers Writable()
	// with a reactor after a failed write.
	Write(pcm []byte) (n int, err error)

	// Writable returns a file descriptor suitable for a poll-style reactor,
	// and false if the backend has no FD-based readiness signal.
	Writable() (fd uintptr, ok bool)

	Close() error
}
