// Package messages implements the versioned request/response schemas this
// agent understands: field layout, version gating, and the header-version
// selector for each type. Dispatch and wire framing live in packages
// dispatch and protocol respectively.
package messages

import "laconia/primitives"

// ApiVersionsMinVersion and ApiVersionsMaxVersion bound the supported
// api_version range for ApiVersions (api_key 18).
const (
	ApiVersionsMinVersion = 0
	ApiVersionsMaxVersion = 4
	ApiVersionsAPIKey     = 18
)

// ApiVersionsHeaderVersion returns 2 from v >= 3, else 1.
func ApiVersionsHeaderVersion(version int16) int16 {
	if version < 3 {
		return 1
	}
	return 2
}

// ApiVersionsRequest is the ApiVersions request body. Below v3 it carries
// no fields.
type ApiVersionsRequest struct {
	ClientSoftwareName    string
	ClientSoftwareVersion string
	TaggedFields          primitives.TaggedFields
}

// DecodeApiVersionsRequest decodes an ApiVersionsRequest body at version.
func DecodeApiVersionsRequest(buf []byte, version int16) (ApiVersionsRequest, []byte, error) {
	var req ApiVersionsRequest
	rest := buf
	if version < 3 {
		return req, rest, nil
	}
	var err error
	req.ClientSoftwareName, rest, err = primitives.DecodeCompactString(rest)
	if err != nil {
		return ApiVersionsRequest{}, buf, err
	}
	req.ClientSoftwareVersion, rest, err = primitives.DecodeCompactString(rest)
	if err != nil {
		return ApiVersionsRequest{}, buf, err
	}
	req.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
	if err != nil {
		return ApiVersionsRequest{}, buf, err
	}
	return req, rest, nil
}

// EncodeApiVersionsRequest encodes req at version, mirroring the decoder's
// gating. Provided for symmetry and test fixtures; the server only decodes
// requests and encodes responses.
func EncodeApiVersionsRequest(out []byte, req ApiVersionsRequest, version int16) []byte {
	if version < 3 {
		return out
	}
	out = primitives.EncodeCompactString(out, req.ClientSoftwareName)
	out = primitives.EncodeCompactString(out, req.ClientSoftwareVersion)
	out = primitives.EncodeTaggedFields(out, req.TaggedFields)
	return out
}

// ApiVersionsKey is one entry of ApiVersionsResponse.ApiKeys: the supported
// range for a single registered api_key.
type ApiVersionsKey struct {
	APIKey       int16
	MinVersion   int16
	MaxVersion   int16
	TaggedFields primitives.TaggedFields
}

func decodeApiVersionsKey(buf []byte, version int16) (ApiVersionsKey, []byte, error) {
	var k ApiVersionsKey
	var err error
	k.APIKey, buf, err = primitives.DecodeInt16(buf)
	if err != nil {
		return ApiVersionsKey{}, buf, err
	}
	k.MinVersion, buf, err = primitives.DecodeInt16(buf)
	if err != nil {
		return ApiVersionsKey{}, buf, err
	}
	k.MaxVersion, buf, err = primitives.DecodeInt16(buf)
	if err != nil {
		return ApiVersionsKey{}, buf, err
	}
	if version < 3 {
		return k, buf, nil
	}
	k.TaggedFields, buf, err = primitives.DecodeTaggedFields(buf)
	if err != nil {
		return ApiVersionsKey{}, buf, err
	}
	return k, buf, nil
}

func encodeApiVersionsKey(out []byte, k ApiVersionsKey, version int16) []byte {
	out = primitives.EncodeInt16(out, k.APIKey)
	out = primitives.EncodeInt16(out, k.MinVersion)
	out = primitives.EncodeInt16(out, k.MaxVersion)
	if version < 3 {
		return out
	}
	out = primitives.EncodeTaggedFields(out, k.TaggedFields)
	return out
}

// ApiVersionsResponse is the ApiVersions response body.
type ApiVersionsResponse struct {
	ErrorCode      int16
	APIKeys        []ApiVersionsKey
	ThrottleTimeMs int32
	TaggedFields   primitives.TaggedFields
}

// EncodeApiVersionsResponse encodes resp at version: a legacy i32-length
// array with no trailing tagged fields below v3, a compact array plus a
// tagged-fields block from v3 on.
func EncodeApiVersionsResponse(out []byte, resp ApiVersionsResponse, version int16) []byte {
	out = primitives.EncodeInt16(out, resp.ErrorCode)
	if version < 3 {
		out = primitives.EncodeArray(out, resp.APIKeys, version, encodeApiVersionsKey)
		out = primitives.EncodeInt32(out, resp.ThrottleTimeMs)
		return out
	}
	out = primitives.EncodeCompactArray(out, resp.APIKeys, false, version, encodeApiVersionsKey)
	out = primitives.EncodeInt32(out, resp.ThrottleTimeMs)
	out = primitives.EncodeTaggedFields(out, resp.TaggedFields)
	return out
}

// DecodeApiVersionsResponse decodes resp at version, mirroring the
// encoder's gating. Provided for round-trip tests and for a future
// client-side consumer.
func DecodeApiVersionsResponse(buf []byte, version int16) (ApiVersionsResponse, []byte, error) {
	var resp ApiVersionsResponse
	var err error
	resp.ErrorCode, buf, err = primitives.DecodeInt16(buf)
	if err != nil {
		return ApiVersionsResponse{}, buf, err
	}

	if version < 3 {
		resp.APIKeys, buf, err = primitives.DecodeArray(buf, version, decodeApiVersionsKey)
		if err != nil {
			return ApiVersionsResponse{}, buf, err
		}
		resp.ThrottleTimeMs, buf, err = primitives.DecodeInt32(buf)
		if err != nil {
			return ApiVersionsResponse{}, buf, err
		}
		return resp, buf, nil
	}

	var isNull bool
	resp.APIKeys, isNull, buf, err = primitives.DecodeCompactArray(buf, version, decodeApiVersionsKey)
	if err != nil {
		return ApiVersionsResponse{}, buf, err
	}
	if isNull {
		resp.APIKeys = nil
	}
	resp.ThrottleTimeMs, buf, err = primitives.DecodeInt32(buf)
	if err != nil {
		return ApiVersionsResponse{}, buf, err
	}
	resp.TaggedFields, buf, err = primitives.DecodeTaggedFields(buf)
	if err != nil {
		return ApiVersionsResponse{}, buf, err
	}
	return resp, buf, nil
}
