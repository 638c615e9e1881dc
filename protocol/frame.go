package protocol

import (
	"fmt"

	"laconia/primitives"
)

// DefaultMaxFrameBytes is the cap applied when a Decoder is constructed
// with a non-positive maxFrameBytes.
const DefaultMaxFrameBytes = 100 * 1024 * 1024

// Decoder turns a stream of bytes into a sequence of length-prefixed
// frames. It owns a growing receive buffer and walks through three
// states: Need-length (fewer than 4 bytes buffered), Need-body (length
// read, body not yet fully buffered), and Ready (a full frame is
// available). Callers feed bytes with Write and drain frames with Next.
type Decoder struct {
	maxFrameBytes int32
	buf           []byte
	haveLength    bool
	bodyLength    int32
}

// NewDecoder constructs a Decoder. maxFrameBytes <= 0 selects
// DefaultMaxFrameBytes.
func NewDecoder(maxFrameBytes int32) *Decoder {
	if maxFrameBytes <= 0 {
		maxFrameBytes = DefaultMaxFrameBytes
	}
	return &Decoder{maxFrameBytes: maxFrameBytes}
}

// Write appends newly read bytes to the receive buffer.
func (d *Decoder) Write(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next attempts to yield one frame's payload (the bytes after the length
// prefix). It returns ok == false when more input is needed. A declared
// length exceeding the configured cap is returned as a FrameTooLargeError
// and a negative declared length as a primitives.ErrMalformedPrimitive;
// the caller must close the connection in either case.
func (d *Decoder) Next() (frame []byte, ok bool, err error) {
	if !d.haveLength {
		if len(d.buf) < 4 {
			return nil, false, nil
		}
		length, _, decErr := primitives.DecodeInt32(d.buf)
		if decErr != nil {
			return nil, false, decErr
		}
		if length < 0 {
			return nil, false, fmt.Errorf("%w: negative frame length %d", primitives.ErrMalformedPrimitive, length)
		}
		if length > d.maxFrameBytes {
			return nil, false, &FrameTooLargeError{Declared: length, Max: d.maxFrameBytes}
		}
		d.buf = d.buf[4:]
		d.bodyLength = length
		d.haveLength = true
	}

	if int32(len(d.buf)) < d.bodyLength {
		return nil, false, nil
	}

	frame = make([]byte, d.bodyLength)
	copy(frame, d.buf[:d.bodyLength])
	d.buf = d.buf[d.bodyLength:]
	d.haveLength = false
	d.bodyLength = 0
	return frame, true, nil
}

// EncodeFrame prepends payload's length as a big-endian i32 and returns
// the complete wire-ready frame.
func EncodeFrame(payload []byte) []byte {
	out := make([]byte, 0, 4+len(payload))
	out = primitives.EncodeInt32(out, int32(len(payload)))
	out = append(out, payload...)
	return out
}
