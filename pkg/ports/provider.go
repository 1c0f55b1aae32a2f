package ports

import (
	"context"

	"github.com/dunehq/dune/pkg/domain"
)

// Receipt is the downstream acknowledgement of an accepted message.
type Receipt struct {
	MessageID string
	Provider  string
}

// Provider delivers an outbound message to the external messaging service.
// Implementations own their retry policy; the gateway never retries.
type Provider interface {
	// Name identifies the provider (e.g., "mock", "twilio").
	Name() string

	// Send dispatches the already-validated payload downstream.
	Send(ctx context.Context, payload domain.SMSPayload) (Receipt, error)
}

// KillSwitch exposes the process-wide emergency stop. Reads must be safe
// under concurrent access and must observe writes promptly; the gateway
// consults it on every call.
type KillSwitch interface {
	Enabled() bool
}
