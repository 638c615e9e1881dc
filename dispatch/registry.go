// Package dispatch implements the construction-time, write-once handler
// registry that bridges strongly typed request/response schemas to the
// connection loop's uniform "decode body, invoke handler, encode response"
// call. The type erasure mirrors the original Rust source's TypedRequestHandler /
// AnyRequestHandler split, using Go generics instead of a boxed trait
// object.
package dispatch

import (
	"fmt"
	"sort"

	"laconia/protocol"
)

// DecodeFunc decodes a request body at the given api_version.
type DecodeFunc[Req any] func(buf []byte, version int16) (Req, []byte, error)

// EncodeFunc encodes a response body at the given api_version.
type EncodeFunc[Resp any] func(out []byte, resp Resp, version int16) []byte

// HandleFunc produces a response for a decoded request.
type HandleFunc[Req any, Resp any] func(req Req, version int16) (Resp, error)

// entry is the type-erased record stored per api_key. It closes over the
// concrete Req/Resp types at registration time so the registry itself
// never needs to know them.
type entry struct {
	minVersion    int16
	maxVersion    int16
	headerVersion func(version int16) int16
	invoke        func(body []byte, apiVersion int16) ([]byte, error)
}

func (e *entry) HeaderVersion(apiVersion int16) int16 { return e.headerVersion(apiVersion) }
func (e *entry) MinVersion() int16                    { return e.minVersion }
func (e *entry) MaxVersion() int16                    { return e.maxVersion }

// Registry is the construction-time, write-once map from api_key to a
// type-erased handler record. It is safe for concurrent read-only use once
// construction (all Register calls) has completed; it must not be mutated
// after the server starts accepting connections.
type Registry struct {
	entries map[int16]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int16]*entry)}
}

// Register adds a handler for apiKey. Registering the same apiKey twice is
// a programming error and panics, per the "idempotent insertions ... are a
// programming error" requirement.
func Register[Req any, Resp any](
	r *Registry,
	apiKey int16,
	minVersion, maxVersion int16,
	headerVersion func(version int16) int16,
	decode DecodeFunc[Req],
	encode EncodeFunc[Resp],
	handle HandleFunc[Req, Resp],
) {
	if _, exists := r.entries[apiKey]; exists {
		panic(fmt.Sprintf("dispatch: api_key %d is already registered", apiKey))
	}
	r.entries[apiKey] = &entry{
		minVersion:    minVersion,
		maxVersion:    maxVersion,
		headerVersion: headerVersion,
		invoke: func(body []byte, apiVersion int16) ([]byte, error) {
			req, rest, err := decode(body, apiVersion)
			if err != nil {
				return nil, err
			}
			if len(rest) != 0 {
				return nil, fmt.Errorf("dispatch: %d trailing bytes after decoding api_key %d body", len(rest), apiKey)
			}
			resp, err := handle(req, apiVersion)
			if err != nil {
				return nil, err
			}
			return encode(nil, resp, apiVersion), nil
		},
	}
}

// Lookup implements protocol.SchemaLookup.
func (r *Registry) Lookup(apiKey int16) (protocol.SchemaInfo, bool) {
	e, ok := r.entries[apiKey]
	if !ok {
		return nil, false
	}
	return e, true
}

// DecodeAndInvoke decodes body at apiVersion, invokes the registered
// handler, and returns the encoded response body. apiKey must already be
// known to be registered (the caller typically establishes this via a
// prior header decode through the same registry).
func (r *Registry) DecodeAndInvoke(apiKey int16, body []byte, apiVersion int16) ([]byte, error) {
	e, ok := r.entries[apiKey]
	if !ok {
		return nil, &protocol.UnsupportedAPIKeyError{APIKey: apiKey}
	}
	return e.invoke(body, apiVersion)
}

// VersionRange reports the registered [min,max] for apiKey.
func (r *Registry) VersionRange(apiKey int16) (min, max int16, ok bool) {
	e, ok := r.entries[apiKey]
	if !ok {
		return 0, 0, false
	}
	return e.minVersion, e.maxVersion, true
}

// ApiKeys returns every registered api_key in ascending order, consumed by
// the ApiVersions handler to self-describe the registry.
func (r *Registry) ApiKeys() []int16 {
	keys := make([]int16, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
