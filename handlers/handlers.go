package handlers

import "laconia/dispatch"

// RegisterAll registers every built-in handler into registry: ApiVersions,
// Metadata, FindCoordinator. ApiVersions must always be registered so a
// client can negotiate; the other two exist so a conformant client can
// complete its bootstrap handshake.
func RegisterAll(registry *dispatch.Registry) {
	NewApiVersionsHandler(registry).Register(registry)
	MetadataHandler{}.Register(registry)
	FindCoordinatorHandler{}.Register(registry)
}
