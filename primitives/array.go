package primitives

import "fmt"

// DecodeElemFunc decodes one array element at the given message version.
type DecodeElemFunc[T any] func(buf []byte, version int16) (T, []byte, error)

// EncodeElemFunc encodes one array element at the given message version.
type EncodeElemFunc[T any] func(out []byte, v T, version int16) []byte

// DecodeArray reads a legacy i32-length-prefixed array. A negative length
// is a protocol error.
func DecodeArray[T any](buf []byte, version int16, decodeElem DecodeElemFunc[T]) ([]T, []byte, error) {
	n, rest, err := DecodeInt32(buf)
	if err != nil {
		return nil, buf, err
	}
	if n < 0 {
		return nil, buf, fmt.Errorf("%w: negative array length", ErrMalformedPrimitive)
	}
	items := make([]T, 0, n)
	for i := int32(0); i < n; i++ {
		var elem T
		elem, rest, err = decodeElem(rest, version)
		if err != nil {
			return nil, buf, err
		}
		items = append(items, elem)
	}
	return items, rest, nil
}

// EncodeArray appends an i32 length followed by each encoded element.
func EncodeArray[T any](out []byte, items []T, version int16, encodeElem EncodeElemFunc[T]) []byte {
	out = EncodeInt32(out, int32(len(items)))
	for _, item := range items {
		out = encodeElem(out, item, version)
	}
	return out
}

// DecodeCompactArray reads an unsigned-varint-prefixed compact array. n == 0
// denotes null; the caller decides whether null is acceptable for its field.
func DecodeCompactArray[T any](buf []byte, version int16, decodeElem DecodeElemFunc[T]) (items []T, isNull bool, rest []byte, err error) {
	n, rest, err := DecodeUvarint32(buf)
	if err != nil {
		return nil, false, buf, err
	}
	if n == 0 {
		return nil, true, rest, nil
	}
	count := n - 1
	items = make([]T, 0, count)
	for i := uint32(0); i < count; i++ {
		var elem T
		elem, rest, err = decodeElem(rest, version)
		if err != nil {
			return nil, false, buf, err
		}
		items = append(items, elem)
	}
	return items, false, rest, nil
}

// EncodeCompactArray appends the compact array encoding: uvarint(0) for
// null, else uvarint(len+1) followed by each encoded element.
func EncodeCompactArray[T any](out []byte, items []T, isNull bool, version int16, encodeElem EncodeElemFunc[T]) []byte {
	if isNull {
		return EncodeUvarint32(out, 0)
	}
	out = EncodeUvarint32(out, uint32(len(items))+1)
	for _, item := range items {
		out = encodeElem(out, item, version)
	}
	return out
}
