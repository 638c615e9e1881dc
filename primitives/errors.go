// Package primitives implements the scalar and compact wire encodings shared
// by every request and response schema: booleans, fixed-width integers,
// UUIDs, unsigned varints, the four string flavors (legacy, nullable,
// compact, compact-nullable), legacy and compact arrays, and the
// tagged-fields trailer.
package primitives

import "errors"

// ErrInsufficientData is returned when a decoder needs more bytes than the
// buffer currently holds.
var ErrInsufficientData = errors.New("primitives: insufficient data")

// ErrMalformedPrimitive is returned when the bytes present are structurally
// invalid for the primitive being decoded: a bool byte outside {0,1},
// invalid UTF-8, a negative array length, an overlong varint, an
// out-of-order tagged-fields key, or a duplicate tagged-fields key.
var ErrMalformedPrimitive = errors.New("primitives: malformed primitive")
