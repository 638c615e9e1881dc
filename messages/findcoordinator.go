package messages

import "laconia/primitives"

// FindCoordinatorMinVersion and FindCoordinatorMaxVersion bound the
// supported api_version range for FindCoordinator (api_key 10). The
// original source left this schema as an unimplemented stub; the version
// gating below follows the well-known wire layout for this request type.
const (
	FindCoordinatorMinVersion = 0
	FindCoordinatorMaxVersion = 6
	FindCoordinatorAPIKey     = 10
)

// FindCoordinatorHeaderVersion returns 2 from v >= 3, else 1.
func FindCoordinatorHeaderVersion(version int16) int16 {
	if version < 3 {
		return 1
	}
	return 2
}

// FindCoordinatorRequest is the FindCoordinator request body. Below v8 a
// single key/key_type pair is carried; from v8 a batch of coordinator_keys
// replaces it.
type FindCoordinatorRequest struct {
	Key             string
	KeyType         int8
	CoordinatorKeys []string
	TaggedFields    primitives.TaggedFields
}

func decodeCompactStringElem(buf []byte, version int16) (string, []byte, error) {
	return primitives.DecodeCompactString(buf)
}

func encodeCompactStringElem(out []byte, v string, version int16) []byte {
	return primitives.EncodeCompactString(out, v)
}

// DecodeFindCoordinatorRequest decodes a FindCoordinatorRequest body at
// version.
func DecodeFindCoordinatorRequest(buf []byte, version int16) (FindCoordinatorRequest, []byte, error) {
	var req FindCoordinatorRequest
	var err error
	rest := buf
	flexible := version >= 3

	if version < 8 {
		if flexible {
			req.Key, rest, err = primitives.DecodeCompactString(rest)
		} else {
			req.Key, rest, err = primitives.DecodeString(rest)
		}
		if err != nil {
			return FindCoordinatorRequest{}, buf, err
		}
		if version >= 1 {
			var keyType byte
			if len(rest) < 1 {
				return FindCoordinatorRequest{}, buf, primitives.ErrInsufficientData
			}
			keyType = rest[0]
			rest = rest[1:]
			req.KeyType = int8(keyType)
		}
	} else {
		req.CoordinatorKeys, _, rest, err = primitives.DecodeCompactArray(rest, version, decodeCompactStringElem)
		if err != nil {
			return FindCoordinatorRequest{}, buf, err
		}
		if len(rest) < 1 {
			return FindCoordinatorRequest{}, buf, primitives.ErrInsufficientData
		}
		req.KeyType = int8(rest[0])
		rest = rest[1:]
	}

	if flexible {
		req.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
		if err != nil {
			return FindCoordinatorRequest{}, buf, err
		}
	}

	return req, rest, nil
}

// EncodeFindCoordinatorRequest encodes req at version, mirroring the
// decoder's gating. Provided for round-trip tests.
func EncodeFindCoordinatorRequest(out []byte, req FindCoordinatorRequest, version int16) []byte {
	flexible := version >= 3

	if version < 8 {
		if flexible {
			out = primitives.EncodeCompactString(out, req.Key)
		} else {
			out = primitives.EncodeString(out, req.Key)
		}
		if version >= 1 {
			out = append(out, byte(req.KeyType))
		}
	} else {
		out = primitives.EncodeCompactArray(out, req.CoordinatorKeys, false, version, encodeCompactStringElem)
		out = append(out, byte(req.KeyType))
	}

	if flexible {
		out = primitives.EncodeTaggedFields(out, req.TaggedFields)
	}
	return out
}

// FindCoordinatorResponse is the FindCoordinator response body.
type FindCoordinatorResponse struct {
	ThrottleTimeMs   int32
	ErrorCode        int16
	ErrorMessage     string
	ErrorMessageNull bool
	NodeID           int32
	Host             string
	Port             int32
	TaggedFields     primitives.TaggedFields
}

// EncodeFindCoordinatorResponse encodes resp at version. Below v3 legacy
// strings are used and no tagged-fields block is written; error_message is
// absent below v1.
func EncodeFindCoordinatorResponse(out []byte, resp FindCoordinatorResponse, version int16) []byte {
	flexible := version >= 3

	out = primitives.EncodeInt32(out, resp.ThrottleTimeMs)
	out = primitives.EncodeInt16(out, resp.ErrorCode)
	if version >= 1 {
		if flexible {
			out = primitives.EncodeCompactNullableString(out, resp.ErrorMessage, resp.ErrorMessageNull)
		} else {
			out = primitives.EncodeNullableString(out, resp.ErrorMessage, resp.ErrorMessageNull)
		}
	}
	out = primitives.EncodeInt32(out, resp.NodeID)
	if flexible {
		out = primitives.EncodeCompactString(out, resp.Host)
	} else {
		out = primitives.EncodeString(out, resp.Host)
	}
	out = primitives.EncodeInt32(out, resp.Port)
	if flexible {
		out = primitives.EncodeTaggedFields(out, resp.TaggedFields)
	}
	return out
}

// DecodeFindCoordinatorResponse decodes resp at version. Provided for
// round-trip tests.
func DecodeFindCoordinatorResponse(buf []byte, version int16) (FindCoordinatorResponse, []byte, error) {
	var resp FindCoordinatorResponse
	var err error
	rest := buf
	flexible := version >= 3

	resp.ThrottleTimeMs, rest, err = primitives.DecodeInt32(rest)
	if err != nil {
		return FindCoordinatorResponse{}, buf, err
	}
	resp.ErrorCode, rest, err = primitives.DecodeInt16(rest)
	if err != nil {
		return FindCoordinatorResponse{}, buf, err
	}
	if version >= 1 {
		if flexible {
			resp.ErrorMessage, resp.ErrorMessageNull, rest, err = primitives.DecodeCompactNullableString(rest)
		} else {
			resp.ErrorMessage, resp.ErrorMessageNull, rest, err = primitives.DecodeNullableString(rest)
		}
		if err != nil {
			return FindCoordinatorResponse{}, buf, err
		}
	}
	resp.NodeID, rest, err = primitives.DecodeInt32(rest)
	if err != nil {
		return FindCoordinatorResponse{}, buf, err
	}
	if flexible {
		resp.Host, rest, err = primitives.DecodeCompactString(rest)
	} else {
		resp.Host, rest, err = primitives.DecodeString(rest)
	}
	if err != nil {
		return FindCoordinatorResponse{}, buf, err
	}
	resp.Port, rest, err = primitives.DecodeInt32(rest)
	if err != nil {
		return FindCoordinatorResponse{}, buf, err
	}
	if flexible {
		resp.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
		if err != nil {
			return FindCoordinatorResponse{}, buf, err
		}
	}
	return resp, rest, nil
}
