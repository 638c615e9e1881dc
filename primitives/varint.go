package primitives

import "fmt"

const (
	maxVarintLenU32 = 5
	maxVarintLenU64 = 10
)

// decodeUvarint reads an LEB128-style unsigned varint (7 bits per byte, high
// bit set to signal continuation). maxBytes bounds how many bytes may be
// consumed before the encoding is declared overlong; callers pass
// maxVarintLenU32 or maxVarintLenU64 depending on the target width.
func decodeUvarint(buf []byte, maxBytes int) (uint64, []byte, error) {
	var value uint64
	var shift uint
	for i := 0; i < maxBytes; i++ {
		if len(buf) == 0 {
			return 0, buf, ErrInsufficientData
		}
		b := buf[0]
		buf = buf[1:]
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, buf, nil
		}
		shift += 7
	}
	return 0, buf, fmt.Errorf("%w: varint exceeds %d bytes", ErrMalformedPrimitive, maxBytes)
}

func encodeUvarint(out []byte, v uint64) []byte {
	for v >= 0x80 {
		out = append(out, byte(v)|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}

// DecodeUvarint32 decodes an unsigned varint bounded to 5 bytes and returns
// it as a uint32.
func DecodeUvarint32(buf []byte) (uint32, []byte, error) {
	v, rest, err := decodeUvarint(buf, maxVarintLenU32)
	if err != nil {
		return 0, rest, err
	}
	if v > 0xffffffff {
		return 0, rest, fmt.Errorf("%w: varint overflows u32", ErrMalformedPrimitive)
	}
	return uint32(v), rest, nil
}

// EncodeUvarint32 appends v as an unsigned varint.
func EncodeUvarint32(out []byte, v uint32) []byte {
	return encodeUvarint(out, uint64(v))
}

// DecodeUvarint64 decodes an unsigned varint bounded to 10 bytes.
func DecodeUvarint64(buf []byte) (uint64, []byte, error) {
	return decodeUvarint(buf, maxVarintLenU64)
}

// EncodeUvarint64 appends v as an unsigned varint.
func EncodeUvarint64(out []byte, v uint64) []byte {
	return encodeUvarint(out, v)
}
