package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError reports a malformed action payload. It is raised before
// any side effect, so a payload that fails validation never reaches the
// audit trail or a downstream provider.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// ProviderError wraps a downstream provider failure surfaced by the gateway.
// The gateway performs no retries on the caller's behalf.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WorkflowConfigurationError reports a malformed graph topology (unknown
// edge target, unreachable terminal) or an exceeded step budget at run time.
type WorkflowConfigurationError struct {
	Reason string
}

func (e *WorkflowConfigurationError) Error() string {
	return "workflow configuration: " + e.Reason
}
