// File: wire/framecodec.go
// Package wire implements the control-frame codec for the CLI/MPRIS control
// surface's wire protocol (spec §6).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Grounded on the teacher's core/protocol/frame_codec.go length-prefixed
// framing, simplified from WebSocket's variable-width length encoding (since
// control frames are small and fixed-format) to one fixed 4-byte length
// prefix. Read uses io.ReadFull rather than a single Read call: the original
// implementation's Pipe::read issued one read() per frame and trusted it to
// return the whole payload, which desyncs the stream the moment a read
// returns short (design note §9) — io.ReadFull loops until either the full
// length is read or the connection errors.

package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxFramePayload bounds a single control frame, well beyond any realistic
// MPRIS property map or CLI command.
const MaxFramePayload = 1 << 20 // 1 MiB

const lengthPrefixSize = 4

var (
	ErrFrameTooLarge = errors.New("wire: frame payload exceeds maximum allowed size")
	ErrFrameEmpty    = errors.New("wire: frame payload must be non-empty")
)

// WriteFrame writes a length-prefixed frame: a 4-byte big-endian payload
// length followed by the payload itself.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return ErrFrameEmpty
	}
	if len(payload) > MaxFramePayload {
		return ErrFrameTooLarge
	}
	var hdr [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame, looping on short reads via
// io.ReadFull so a partial read on either the header or the payload can
// never desync the stream.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(hdr[:])
	if length == 0 {
		return nil, ErrFrameEmpty
	}
	if length > MaxFramePayload {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
