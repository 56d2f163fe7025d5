package domain

import "encoding/json"

// RequestType is the lifecycle event kind delivered by the orchestrator.
type RequestType string

// Lifecycle event kinds.
const (
	RequestCreate RequestType = "Create"
	RequestUpdate RequestType = "Update"
	RequestDelete RequestType = "Delete"
)

// Event is the inbound envelope for one lifecycle invocation.
// OldResourceProperties is only present on Update.
type Event struct {
	RequestType           RequestType     `json:"RequestType"`
	RequestID             string          `json:"RequestId"`
	PhysicalResourceID    string          `json:"PhysicalResourceId,omitempty"`
	ResourceProperties    json.RawMessage `json:"ResourceProperties"`
	OldResourceProperties json.RawMessage `json:"OldResourceProperties,omitempty"`
}

// Validate checks the envelope fields required by its request type.
func (e *Event) Validate() error {
	switch e.RequestType {
	case RequestCreate:
	case RequestUpdate:
		if e.PhysicalResourceID == "" {
			return ErrValidation("PhysicalResourceId is required for Update")
		}
		if len(e.OldResourceProperties) == 0 {
			return ErrValidation("OldResourceProperties is required for Update")
		}
	case RequestDelete:
		if e.PhysicalResourceID == "" {
			return ErrValidation("PhysicalResourceId is required for Delete")
		}
	default:
		return ErrValidation("Unrecognized event type: %s", e.RequestType)
	}
	if e.RequestID == "" {
		return ErrValidation("RequestId is required")
	}
	return nil
}

// Response is the outbound envelope. It is nil for a successful Delete.
type Response struct {
	PhysicalResourceID string            `json:"PhysicalResourceId"`
	Data               map[string]string `json:"Data,omitempty"`
}
