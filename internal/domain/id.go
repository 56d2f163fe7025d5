package domain

import (
	"strings"

	"github.com/google/uuid"
)

// tableSuffixLen is how much of the request id is appended to generated table names.
const tableSuffixLen = 8

// NewRequestID generates a request id for events assembled locally (CLI, tests).
func NewRequestID() string {
	return uuid.NewString()
}

// MakePhysicalID derives the physical identifier of a managed object from its
// semantic key, its target, and the request id of the event that created the
// incarnation. It is deterministic within one event and differs across events.
func MakePhysicalID(semanticKey string, target ExecutionTarget, requestID string) string {
	return strings.Join([]string{target.Identity(), target.DatabaseName, semanticKey, requestID}, ":")
}

// PhysicalTableName derives the physical table name from its prefix and naming policy.
func PhysicalTableName(prefix string, policy NameSuffixPolicy, requestID string) string {
	if policy != SuffixFromRequestID {
		return prefix
	}
	suffix := requestID
	if len(suffix) > tableSuffixLen {
		suffix = suffix[:tableSuffixLen]
	}
	return prefix + suffix
}
