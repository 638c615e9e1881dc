package primitives

import "fmt"

// TaggedField is one entry of a tagged-fields block: an opaque byte slice
// keyed by an unsigned tag. Unknown tags are preserved verbatim so a
// handler can inspect or re-emit them unchanged.
type TaggedField struct {
	Tag   uint32
	Value []byte
}

// TaggedFields is the trailing extensible section that flexible (compact)
// versions append to every struct. Entries are kept in strictly increasing
// tag order, mirroring the wire requirement.
type TaggedFields struct {
	entries []TaggedField
}

// Len reports the number of entries.
func (t TaggedFields) Len() int { return len(t.entries) }

// Entries returns the entries in ascending tag order. The returned slice
// must not be mutated by the caller.
func (t TaggedFields) Entries() []TaggedField { return t.entries }

// Get returns the value for tag and whether it was present.
func (t TaggedFields) Get(tag uint32) ([]byte, bool) {
	for _, e := range t.entries {
		if e.Tag == tag {
			return e.Value, true
		}
	}
	return nil, false
}

// DecodeTaggedFields reads the varint-prefixed count followed by that many
// (tag, size, bytes) triples. Tags must be strictly increasing on the wire;
// anything else (duplicate or out-of-order) is a protocol error.
func DecodeTaggedFields(buf []byte) (TaggedFields, []byte, error) {
	count, rest, err := DecodeUvarint32(buf)
	if err != nil {
		return TaggedFields{}, buf, err
	}
	if count == 0 {
		return TaggedFields{}, rest, nil
	}
	entries := make([]TaggedField, 0, count)
	var lastTag uint32
	for i := uint32(0); i < count; i++ {
		var tag, size uint32
		tag, rest, err = DecodeUvarint32(rest)
		if err != nil {
			return TaggedFields{}, buf, err
		}
		if i > 0 && tag <= lastTag {
			return TaggedFields{}, buf, fmt.Errorf("%w: tagged field keys out of order (tag %d after %d)", ErrMalformedPrimitive, tag, lastTag)
		}
		lastTag = tag
		size, rest, err = DecodeUvarint32(rest)
		if err != nil {
			return TaggedFields{}, buf, err
		}
		if uint32(len(rest)) < size {
			return TaggedFields{}, buf, ErrInsufficientData
		}
		value := make([]byte, size)
		copy(value, rest[:size])
		rest = rest[size:]
		entries = append(entries, TaggedField{Tag: tag, Value: value})
	}
	return TaggedFields{entries: entries}, rest, nil
}

// EncodeTaggedFields appends the varint count followed by every entry's
// (tag, size, bytes) triple, in the ascending order already held by t. An
// empty block encodes as the single byte 0x00.
func EncodeTaggedFields(out []byte, t TaggedFields) []byte {
	out = EncodeUvarint32(out, uint32(len(t.entries)))
	for _, e := range t.entries {
		out = EncodeUvarint32(out, e.Tag)
		out = EncodeUvarint32(out, uint32(len(e.Value)))
		out = append(out, e.Value...)
	}
	return out
}
