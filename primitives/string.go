package primitives

import (
	"fmt"
	"unicode/utf8"
)

// DecodeString reads a legacy length-prefixed (i16) UTF-8 string. A length
// of -1 is reserved for nullable strings and is a protocol error here.
func DecodeString(buf []byte) (string, []byte, error) {
	n, rest, err := DecodeInt16(buf)
	if err != nil {
		return "", buf, err
	}
	if n < 0 {
		return "", buf, fmt.Errorf("%w: non-nullable string has negative length %d", ErrMalformedPrimitive, n)
	}
	return decodeStringBody(rest, buf, int(n))
}

// EncodeString appends a legacy length-prefixed string.
func EncodeString(out []byte, s string) []byte {
	out = EncodeInt16(out, int16(len(s)))
	return append(out, s...)
}

// DecodeNullableString reads a legacy length-prefixed string whose length
// may be -1 to denote null. isNull reports whether the wire value was null;
// when true, s is the empty string.
func DecodeNullableString(buf []byte) (s string, isNull bool, rest []byte, err error) {
	n, rest, err := DecodeInt16(buf)
	if err != nil {
		return "", false, buf, err
	}
	if n == -1 {
		return "", true, rest, nil
	}
	if n < -1 {
		return "", false, buf, fmt.Errorf("%w: negative nullable string length", ErrMalformedPrimitive)
	}
	s, rest, err = decodeStringBody(rest, buf, int(n))
	return s, false, rest, err
}

// EncodeNullableString appends a legacy nullable string, writing length -1
// when isNull is true (the source was null), regardless of s's contents.
func EncodeNullableString(out []byte, s string, isNull bool) []byte {
	if isNull {
		return EncodeInt16(out, -1)
	}
	out = EncodeInt16(out, int16(len(s)))
	return append(out, s...)
}

// DecodeCompactString reads an unsigned-varint-prefixed compact string.
// n == 0 is a protocol error in this non-nullable context.
func DecodeCompactString(buf []byte) (string, []byte, error) {
	n, rest, err := DecodeUvarint32(buf)
	if err != nil {
		return "", buf, err
	}
	if n == 0 {
		return "", buf, fmt.Errorf("%w: null marker in non-nullable compact string", ErrMalformedPrimitive)
	}
	return decodeStringBody(rest, buf, int(n-1))
}

// EncodeCompactString appends uvarint(len(s)+1) followed by s's bytes.
func EncodeCompactString(out []byte, s string) []byte {
	out = EncodeUvarint32(out, uint32(len(s))+1)
	return append(out, s...)
}

// DecodeCompactNullableString reads an unsigned-varint-prefixed compact
// string where n == 0 denotes null.
func DecodeCompactNullableString(buf []byte) (s string, isNull bool, rest []byte, err error) {
	n, rest, err := DecodeUvarint32(buf)
	if err != nil {
		return "", false, buf, err
	}
	if n == 0 {
		return "", true, rest, nil
	}
	s, rest, err = decodeStringBody(rest, buf, int(n-1))
	return s, false, rest, err
}

// EncodeCompactNullableString appends the compact nullable encoding: the
// single byte 0x00 for null, else uvarint(len(s)+1) followed by s's bytes.
func EncodeCompactNullableString(out []byte, s string, isNull bool) []byte {
	if isNull {
		return EncodeUvarint32(out, 0)
	}
	out = EncodeUvarint32(out, uint32(len(s))+1)
	return append(out, s...)
}

func decodeStringBody(buf, original []byte, n int) (string, []byte, error) {
	if len(buf) < n {
		return "", original, ErrInsufficientData
	}
	body := buf[:n]
	if !utf8.Valid(body) {
		return "", original, fmt.Errorf("%w: invalid UTF-8", ErrMalformedPrimitive)
	}
	return string(body), buf[n:], nil
}
