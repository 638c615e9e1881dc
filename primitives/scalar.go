package primitives

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// DecodeBool reads a single-byte boolean: 0 = false, 1 = true.
func DecodeBool(buf []byte) (bool, []byte, error) {
	if len(buf) < 1 {
		return false, buf, ErrInsufficientData
	}
	switch buf[0] {
	case 0:
		return false, buf[1:], nil
	case 1:
		return true, buf[1:], nil
	default:
		return false, buf, fmt.Errorf("%w: invalid bool byte 0x%02x", ErrMalformedPrimitive, buf[0])
	}
}

// EncodeBool appends a single-byte boolean to out.
func EncodeBool(out []byte, v bool) []byte {
	if v {
		return append(out, 1)
	}
	return append(out, 0)
}

// DecodeInt16 reads a big-endian two's-complement i16.
func DecodeInt16(buf []byte) (int16, []byte, error) {
	if len(buf) < 2 {
		return 0, buf, ErrInsufficientData
	}
	return int16(binary.BigEndian.Uint16(buf)), buf[2:], nil
}

// EncodeInt16 appends a big-endian i16 to out.
func EncodeInt16(out []byte, v int16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	return append(out, b[:]...)
}

// DecodeInt32 reads a big-endian two's-complement i32.
func DecodeInt32(buf []byte) (int32, []byte, error) {
	if len(buf) < 4 {
		return 0, buf, ErrInsufficientData
	}
	return int32(binary.BigEndian.Uint32(buf)), buf[4:], nil
}

// EncodeInt32 appends a big-endian i32 to out.
func EncodeInt32(out []byte, v int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return append(out, b[:]...)
}

// DecodeInt64 reads a big-endian two's-complement i64.
func DecodeInt64(buf []byte) (int64, []byte, error) {
	if len(buf) < 8 {
		return 0, buf, ErrInsufficientData
	}
	return int64(binary.BigEndian.Uint64(buf)), buf[8:], nil
}

// EncodeInt64 appends a big-endian i64 to out.
func EncodeInt64(out []byte, v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return append(out, b[:]...)
}

// DecodeUUID reads 16 big-endian bytes into a uuid.UUID. The byte order of
// uuid.UUID already matches the wire's big-endian layout, so no reordering
// is needed.
func DecodeUUID(buf []byte) (uuid.UUID, []byte, error) {
	if len(buf) < 16 {
		return uuid.Nil, buf, ErrInsufficientData
	}
	var id uuid.UUID
	copy(id[:], buf[:16])
	return id, buf[16:], nil
}

// EncodeUUID appends the 16 raw bytes of id to out.
func EncodeUUID(out []byte, id uuid.UUID) []byte {
	return append(out, id[:]...)
}
