// Package handlers implements the built-in request handlers this agent
// registers at startup: ApiVersions (self-description), and the Metadata /
// FindCoordinator bootstrap stubs.
package handlers

import (
	"laconia/dispatch"
	"laconia/messages"
)

// ApiVersionsHandler answers ApiVersions by enumerating the registry it was
// constructed against. It must be registered into that same registry;
// enumeration happens per-request, by which time every other handler has
// already been registered.
type ApiVersionsHandler struct {
	registry *dispatch.Registry
}

// NewApiVersionsHandler returns a handler that self-describes registry.
func NewApiVersionsHandler(registry *dispatch.Registry) *ApiVersionsHandler {
	return &ApiVersionsHandler{registry: registry}
}

// Handle produces an ApiVersionsResponse advertising every api_key
// currently registered, including ApiVersions itself.
func (h *ApiVersionsHandler) Handle(req messages.ApiVersionsRequest, version int16) (messages.ApiVersionsResponse, error) {
	apiKeys := h.registry.ApiKeys()
	keys := make([]messages.ApiVersionsKey, 0, len(apiKeys))
	for _, apiKey := range apiKeys {
		min, max, ok := h.registry.VersionRange(apiKey)
		if !ok {
			continue
		}
		keys = append(keys, messages.ApiVersionsKey{
			APIKey:     apiKey,
			MinVersion: min,
			MaxVersion: max,
		})
	}
	return messages.ApiVersionsResponse{
		ErrorCode:      0,
		APIKeys:        keys,
		ThrottleTimeMs: 0,
	}, nil
}

// Register adds h to registry under the ApiVersions api_key.
func (h *ApiVersionsHandler) Register(registry *dispatch.Registry) {
	dispatch.Register[messages.ApiVersionsRequest, messages.ApiVersionsResponse](
		registry,
		messages.ApiVersionsAPIKey,
		messages.ApiVersionsMinVersion,
		messages.ApiVersionsMaxVersion,
		messages.ApiVersionsHeaderVersion,
		messages.DecodeApiVersionsRequest,
		messages.EncodeApiVersionsResponse,
		h.Handle,
	)
}
