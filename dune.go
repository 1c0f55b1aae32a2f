package dune

import (
	"context"
	"log/slog"

	"github.com/dunehq/dune/internal/logging"
	"github.com/dunehq/dune/internal/runtime"
	"github.com/dunehq/dune/pkg/audit"
	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/gateway"
	"github.com/dunehq/dune/pkg/policy"
	"github.com/dunehq/dune/pkg/ports"
)

// Engine is the high-level entry point for the Dune library.
// It wraps the internal runtime and the action gateway behind a simplified
// API for hosts (CLI, HTTP, MCP).
type Engine struct {
	runtime *runtime.Engine
	gateway *gateway.Gateway
	kill    *gateway.Switch
	sink    audit.Sink

	graph      []domain.Node
	loader     ports.GraphLoader
	classifier policy.Classifier
	provider   ports.Provider
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	entryNodeID   string
	defaultTenant string
	killEnabled   bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithGraph declares the conversation graph explicitly, bypassing loaders.
func WithGraph(nodes []domain.Node) Option {
	return func(e *Engine) {
		e.graph = nodes
	}
}

// WithLoader injects a GraphLoader (e.g., the YAML file adapter).
func WithLoader(l ports.GraphLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithClassifier swaps the output content classifier. Defaults to the
// built-in denylist.
func WithClassifier(c policy.Classifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithAuditSink injects the audit transport. Defaults to a slog-backed
// sink on the engine logger.
func WithAuditSink(s audit.Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithProvider injects the downstream messaging integration.
func WithProvider(p ports.Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithLifecycleHooks registers observability hooks for both the state
// machine and the gateway.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEntryNode configures the initial node ID (default: "probe").
func WithEntryNode(nodeID string) Option {
	return func(e *Engine) {
		e.entryNodeID = nodeID
	}
}

// WithDefaultTenant sets the tenant used when a conversation is started
// without an explicit tenant ID.
func WithDefaultTenant(tenantID string) Option {
	return func(e *Engine) {
		e.defaultTenant = tenantID
	}
}

// WithKillSwitchEnabled sets the initial kill switch position.
func WithKillSwitchEnabled(enabled bool) Option {
	return func(e *Engine) {
		e.killEnabled = enabled
	}
}

// New initializes a Dune Engine. Without options it runs the built-in
// probe -> persuade -> decision flow with the default denylist, a no-op
// logger and the mock provider.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		entryNodeID:   domain.NodeProbe,
		defaultTenant: "local-tenant",
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.classifier == nil {
		e.classifier = policy.NewDenylist(policy.DefaultDenylist)
	}
	if e.sink == nil {
		e.sink = audit.NewLogger(e.logger)
	}
	if e.graph == nil {
		if e.loader != nil {
			graph, err := e.loader.Load()
			if err != nil {
				return nil, err
			}
			e.graph = graph
		} else {
			e.graph = domain.DefaultGraph()
		}
	}

	rt, err := runtime.NewEngine(e.graph, e.classifier, e.sink,
		runtime.WithEntryNode(e.entryNodeID),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
	)
	if err != nil {
		return nil, err
	}
	e.runtime = rt

	e.kill = gateway.NewSwitch(e.killEnabled)
	gwOpts := []gateway.Option{
		gateway.WithLifecycleHooks(e.hooks),
		gateway.WithLogger(e.logger),
	}
	if e.provider != nil {
		gwOpts = append(gwOpts, gateway.WithProvider(e.provider))
	}
	e.gateway = gateway.New(e.kill, e.sink, gwOpts...)

	return e, nil
}

// NewSession creates a session at the entry node. An empty tenant ID falls
// back to the configured default tenant.
func (e *Engine) NewSession(tenantID, rawInput string) (domain.Session, error) {
	if tenantID == "" {
		tenantID = e.defaultTenant
	}
	return e.runtime.NewSession(tenantID, rawInput)
}

// Step advances the session by exactly one stage. Terminal sessions are
// returned unchanged.
func (e *Engine) Step(ctx context.Context, sess domain.Session) (domain.Session, error) {
	return e.runtime.Step(ctx, sess)
}

// Run steps the session to the terminal state, bounded by the node count.
func (e *Engine) Run(ctx context.Context, sess domain.Session) (domain.Session, error) {
	return e.runtime.Run(ctx, sess)
}

// RunConversation is the conversation entry point: it creates a session
// for the tenant and drives it to completion, returning the final session
// with the last vetted output.
func (e *Engine) RunConversation(ctx context.Context, tenantID, userInput string) (domain.Session, error) {
	sess, err := e.NewSession(tenantID, userInput)
	if err != nil {
		return domain.Session{}, err
	}
	return e.Run(ctx, sess)
}

// SendSMS dispatches one outbound message through the action gateway.
func (e *Engine) SendSMS(ctx context.Context, payload domain.SMSPayload) (gateway.Result, error) {
	return e.gateway.SendSMS(ctx, payload)
}

// Gateway returns the action gateway for hosts that expose it directly.
func (e *Engine) Gateway() *gateway.Gateway {
	return e.gateway
}

// KillSwitch returns the process-wide kill switch so hosts and tests can
// toggle it deterministically.
func (e *Engine) KillSwitch() *gateway.Switch {
	return e.kill
}

// Inspect returns the graph definition for introspection surfaces.
func (e *Engine) Inspect() []domain.Node {
	return e.runtime.Inspect()
}

// EntryNode returns the configured entry node ID.
func (e *Engine) EntryNode() string {
	return e.entryNodeID
}
