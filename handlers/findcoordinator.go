package handlers

import (
	"laconia/dispatch"
	"laconia/messages"
)

// FindCoordinatorHandler is a bootstrap stub, completing the schema the
// original source left as unimplemented!(). It reports no coordinator
// found (node_id = -1) with error_code = 0, matching the "structurally
// valid response with empty collections and zero error codes" contract
// the other bootstrap stubs follow.
type FindCoordinatorHandler struct{}

// Handle implements the FindCoordinator bootstrap stub.
func (FindCoordinatorHandler) Handle(req messages.FindCoordinatorRequest, version int16) (messages.FindCoordinatorResponse, error) {
	return messages.FindCoordinatorResponse{
		ThrottleTimeMs:   0,
		ErrorCode:        0,
		ErrorMessageNull: true,
		NodeID:           -1,
		Host:             "",
		Port:             -1,
	}, nil
}

// Register adds the FindCoordinator handler to registry.
func (h FindCoordinatorHandler) Register(registry *dispatch.Registry) {
	dispatch.Register[messages.FindCoordinatorRequest, messages.FindCoordinatorResponse](
		registry,
		messages.FindCoordinatorAPIKey,
		messages.FindCoordinatorMinVersion,
		messages.FindCoordinatorMaxVersion,
		messages.FindCoordinatorHeaderVersion,
		messages.DecodeFindCoordinatorRequest,
		messages.EncodeFindCoordinatorResponse,
		h.Handle,
	)
}
