package handlers

import (
	"laconia/dispatch"
	"laconia/messages"
)

// MetadataHandler is a bootstrap stub: it returns a structurally valid,
// empty response so a conformant client can complete its handshake.
// Brokers and topics are populated by nothing yet, since cluster state is
// outside this component's scope.
type MetadataHandler struct{}

// Handle implements the Metadata bootstrap stub.
func (MetadataHandler) Handle(req messages.MetadataRequest, version int16) (messages.MetadataResponse, error) {
	return messages.MetadataResponse{
		ThrottleTimeMs: 0,
		Brokers:        nil,
		ClusterID:      "",
		ClusterIDNull:  true,
		ControllerID:   -1,
		Topics:         nil,
	}, nil
}

// Register adds the Metadata handler to registry.
func (h MetadataHandler) Register(registry *dispatch.Registry) {
	dispatch.Register[messages.MetadataRequest, messages.MetadataResponse](
		registry,
		messages.MetadataAPIKey,
		messages.MetadataMinVersion,
		messages.MetadataMaxVersion,
		messages.MetadataHeaderVersion,
		messages.DecodeMetadataRequest,
		messages.EncodeMetadataResponse,
		h.Handle,
	)
}
