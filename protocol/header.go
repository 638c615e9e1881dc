package protocol

import "laconia/primitives"

// SchemaInfo is the subset of a registered message schema the header codec
// needs: the version-dependent header width and the supported version
// range. Package dispatch's Registry implements SchemaLookup against this
// interface so header decoding never depends on dispatch directly.
type SchemaInfo interface {
	HeaderVersion(apiVersion int16) int16
	MinVersion() int16
	MaxVersion() int16
}

// SchemaLookup resolves an api_key to its schema. Lookup fails when no
// handler is registered for the key.
type SchemaLookup interface {
	Lookup(apiKey int16) (SchemaInfo, bool)
}

// RequestHeader is the decoded request header. Fields are filled in the
// order they are read off the wire, so a caller can recover CorrelationID
// even when a later step fails.
type RequestHeader struct {
	APIKey        int16
	APIVersion    int16
	CorrelationID int32
	ClientID      string
	ClientIDNull  bool
	TaggedFields  primitives.TaggedFields
	HeaderVersion int16
}

// DecodeRequestHeader implements the five-step request header decode:
// require 8 bytes, read api_key/api_version/correlation_id, resolve the
// schema (unsupported key or version is an error), read client_id, and
// read a tagged-fields block when the schema's header is flexible.
//
// On error the returned header still carries every field read before the
// failure, so the caller can emit an error response carrying the
// correlation id when one was recovered.
func DecodeRequestHeader(buf []byte, lookup SchemaLookup) (RequestHeader, []byte, error) {
	var h RequestHeader
	if len(buf) < 8 {
		return h, buf, primitives.ErrInsufficientData
	}

	rest := buf
	var err error
	h.APIKey, rest, err = primitives.DecodeInt16(rest)
	if err != nil {
		return h, buf, err
	}
	h.APIVersion, rest, err = primitives.DecodeInt16(rest)
	if err != nil {
		return h, buf, err
	}
	h.CorrelationID, rest, err = primitives.DecodeInt32(rest)
	if err != nil {
		return h, buf, err
	}

	schema, ok := lookup.Lookup(h.APIKey)
	if !ok {
		return h, buf, &UnsupportedAPIKeyError{APIKey: h.APIKey}
	}
	if h.APIVersion < schema.MinVersion() || h.APIVersion > schema.MaxVersion() {
		return h, buf, &UnsupportedVersionError{
			APIKey:     h.APIKey,
			APIVersion: h.APIVersion,
			MinVersion: schema.MinVersion(),
			MaxVersion: schema.MaxVersion(),
		}
	}
	h.HeaderVersion = schema.HeaderVersion(h.APIVersion)

	h.ClientID, h.ClientIDNull, rest, err = primitives.DecodeNullableString(rest)
	if err != nil {
		return h, buf, err
	}

	if h.HeaderVersion >= 2 {
		h.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
		if err != nil {
			return h, buf, err
		}
	}

	return h, rest, nil
}

// EncodeResponseHeader appends the response header: the correlation id,
// followed by an empty tagged-fields block when headerVersion (the
// *response* schema's header version, not the request's) is flexible.
func EncodeResponseHeader(out []byte, correlationID int32, headerVersion int16) []byte {
	out = primitives.EncodeInt32(out, correlationID)
	if headerVersion >= 1 {
		out = primitives.EncodeTaggedFields(out, primitives.TaggedFields{})
	}
	return out
}
