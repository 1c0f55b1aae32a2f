// Package gateway is the single choke point for externally-effecting calls.
//
// Every outbound action passes through here: payloads are validated, the
// process-wide kill switch is consulted, the call is audited with the
// free-text body redacted, and only then is the downstream provider
// invoked.
package gateway

import (
	"context"
	"log/slog"

	"github.com/dunehq/dune/internal/logging"
	"github.com/dunehq/dune/pkg/audit"
	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/ports"
)

// Result statuses.
const (
	StatusBlocked = "blocked"
	StatusQueued  = "queued"
)

// ReasonKillSwitch is the reason attached to a kill-switch block.
const ReasonKillSwitch = "kill_switch_enabled"

// EventSMSSend is the audit event type for an outbound SMS dispatch.
const EventSMSSend = "tool_call.sms.send"

// Result is the structured outcome of a gateway call. A kill-switch block
// is a normal result, not an error, so callers can branch on it without
// special-casing failures.
type Result struct {
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

// Gateway validates, audits and dispatches outbound actions.
type Gateway struct {
	kill     ports.KillSwitch
	sink     audit.Sink
	provider ports.Provider
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithProvider injects the downstream integration. Defaults to the mock
// provider.
func WithProvider(p ports.Provider) Option {
	return func(g *Gateway) {
		g.provider = p
	}
}

// WithLifecycleHooks registers observability hooks for tool dispatches.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Gateway) {
		g.hooks = hooks
	}
}

// WithLogger configures a logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a Gateway. The kill switch and audit sink are mandatory
// collaborators; the provider defaults to the mock integration.
func New(kill ports.KillSwitch, sink audit.Sink, opts ...Option) *Gateway {
	g := &Gateway{
		kill:     kill,
		sink:     sink,
		provider: NewMockProvider(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SendSMS dispatches one outbound message on a tenant's behalf.
//
// Order of enforcement: payload validation fails fast with a
// *domain.ValidationError before any side effect; the kill switch then
// short-circuits with a blocked Result, emitting nothing; only a clean
// call is audited (content redacted) and handed to the provider. Provider
// failures surface as *domain.ProviderError with no retry.
func (g *Gateway) SendSMS(ctx context.Context, payload domain.SMSPayload) (Result, error) {
	if err := payload.Validate(); err != nil {
		return Result{}, err
	}

	if g.kill.Enabled() {
		g.logger.Warn("gateway call blocked", "reason", ReasonKillSwitch, "tenant_id", payload.TenantID)
		return Result{Status: StatusBlocked, Reason: ReasonKillSwitch}, nil
	}

	g.sink.Emit(EventSMSSend, map[string]any{
		"tenantId": payload.TenantID,
		"userId":   payload.UserID,
		"content":  payload.Content,
	}, []string{"content"})

	if g.hooks.OnToolCall != nil {
		g.hooks.OnToolCall(ctx, &domain.ToolEvent{Tool: "sms", Verb: "send"})
	}

	receipt, err := g.provider.Send(ctx, payload)
	if err != nil {
		if g.hooks.OnToolReturn != nil {
			g.hooks.OnToolReturn(ctx, &domain.ToolEvent{Tool: "sms", Verb: "send", IsError: true})
		}
		return Result{}, &domain.ProviderError{Provider: g.provider.Name(), Err: err}
	}

	if g.hooks.OnToolReturn != nil {
		g.hooks.OnToolReturn(ctx, &domain.ToolEvent{Tool: "sms", Verb: "send"})
	}

	return Result{
		Status:    StatusQueued,
		MessageID: receipt.MessageID,
		Provider:  receipt.Provider,
	}, nil
}
