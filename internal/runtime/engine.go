// Package runtime is the core conversation state machine.
//
// The graph topology (edges) is declared on the nodes, independently of
// handler logic; the engine validates it at construction and drives a
// Session through it one stage at a time, vetting every candidate reply
// against policy and auditing every transition.
package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dunehq/dune/internal/logging"
	"github.com/dunehq/dune/pkg/audit"
	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/policy"
)

// Engine drives sessions through the conversation graph. It holds no
// per-session state: sessions are confined to their callers, so one Engine
// serves arbitrarily many concurrent conversations without locking.
type Engine struct {
	nodes      map[string]domain.Node
	order      []string
	entry      string
	handlers   map[string]Handler
	classifier policy.Classifier
	sink       audit.Sink
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithEntryNode configures the initial node ID (default: "probe").
func WithEntryNode(nodeID string) Option {
	return func(e *Engine) {
		e.entry = nodeID
	}
}

// WithHandler overrides the reply synthesis for one node. This is the seam
// where a model-generation collaborator plugs in; the engine still owns
// sanitization, policy vetting and auditing around it.
func WithHandler(nodeID string, h Handler) Option {
	return func(e *Engine) {
		e.handlers[nodeID] = h
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine over the given graph and validates the
// topology: node IDs must be unique, every edge must target a declared
// node or the terminal marker, and the terminal must be reachable from
// the entry node. A malformed topology is a *domain.WorkflowConfigurationError.
func NewEngine(graph []domain.Node, classifier policy.Classifier, sink audit.Sink, opts ...Option) (*Engine, error) {
	e := &Engine{
		nodes:      make(map[string]domain.Node, len(graph)),
		entry:      domain.NodeProbe,
		handlers:   make(map[string]Handler),
		classifier: classifier,
		sink:       sink,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if len(graph) == 0 {
		return nil, &domain.WorkflowConfigurationError{Reason: "graph has no nodes"}
	}
	for _, node := range graph {
		if node.ID == "" {
			return nil, &domain.WorkflowConfigurationError{Reason: "node missing ID"}
		}
		if node.ID == domain.StateDone {
			return nil, &domain.WorkflowConfigurationError{Reason: fmt.Sprintf("node ID %q collides with the terminal marker", domain.StateDone)}
		}
		if _, dup := e.nodes[node.ID]; dup {
			return nil, &domain.WorkflowConfigurationError{Reason: "duplicate node ID: " + node.ID}
		}
		e.nodes[node.ID] = node
		e.order = append(e.order, node.ID)
	}

	if _, ok := e.nodes[e.entry]; !ok {
		return nil, &domain.WorkflowConfigurationError{Reason: "entry node not declared: " + e.entry}
	}
	if err := e.validateTopology(); err != nil {
		return nil, err
	}
	return e, nil
}

// validateTopology checks every edge target and that the terminal marker
// is reachable from the entry node.
func (e *Engine) validateTopology() error {
	for _, node := range e.nodes {
		for _, t := range node.Transitions {
			if t.ToNodeID == domain.StateDone {
				continue
			}
			if _, ok := e.nodes[t.ToNodeID]; !ok {
				return &domain.WorkflowConfigurationError{
					Reason: fmt.Sprintf("node %q has edge to undeclared node %q", node.ID, t.ToNodeID),
				}
			}
		}
	}

	// BFS over all edges. A sink node (no transitions) also terminates.
	seen := map[string]bool{e.entry: true}
	queue := []string{e.entry}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node := e.nodes[id]
		if len(node.Transitions) == 0 {
			return nil
		}
		for _, t := range node.Transitions {
			if t.ToNodeID == domain.StateDone {
				return nil
			}
			if !seen[t.ToNodeID] {
				seen[t.ToNodeID] = true
				queue = append(queue, t.ToNodeID)
			}
		}
	}
	return &domain.WorkflowConfigurationError{Reason: "terminal state unreachable from entry node " + e.entry}
}

// NewSession creates a session positioned at the engine's entry node.
func (e *Engine) NewSession(tenantID, rawInput string) (domain.Session, error) {
	return domain.NewSession(e.entry, tenantID, rawInput)
}

// Step executes exactly one stage handler and returns the updated session.
// A terminal session is returned unchanged (idempotent no-op). Policy
// denials never surface as errors: the stage's blocked message is
// substituted and the conversation proceeds.
func (e *Engine) Step(ctx context.Context, sess domain.Session) (domain.Session, error) {
	if sess.Terminal() {
		return sess, nil
	}

	node, ok := e.nodes[sess.Current]
	if !ok {
		return sess, &domain.WorkflowConfigurationError{Reason: "session at undeclared node: " + sess.Current}
	}

	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: node.ID, TenantID: sess.TenantID})
	}

	handler := e.handlers[node.ID]
	if handler == nil {
		handler = templateHandler(node)
	}
	candidate := handler(ctx, sess)

	reply := candidate
	if verdict := e.classifier.Evaluate(candidate); !verdict.Allowed {
		reply = blockedMessage(node)
		if e.hooks.OnPolicyBlock != nil {
			e.hooks.OnPolicyBlock(ctx, &domain.PolicyEvent{NodeID: node.ID, Reason: verdict.Reason})
		}
		e.logger.Info("stage reply blocked by policy", "node_id", node.ID, "reason", verdict.Reason)
	}

	e.emit("node."+node.ID, map[string]any{
		"reply":     reply,
		"tenant_id": sess.TenantID,
	}, nil)

	next := sess
	next.LastOutput = reply
	next.Current = domain.StateDone
	if len(node.Transitions) > 0 {
		next.Current = node.Transitions[0].ToNodeID
	}

	if e.hooks.OnNodeLeave != nil {
		e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{NodeID: node.ID, TenantID: sess.TenantID})
	}
	return next, nil
}

// Run steps the session until terminal, bounded by the number of declared
// nodes. Exceeding the budget means the topology loops and is reported as
// a *domain.WorkflowConfigurationError rather than spinning forever.
func (e *Engine) Run(ctx context.Context, sess domain.Session) (domain.Session, error) {
	budget := len(e.order)
	for i := 0; i < budget; i++ {
		if sess.Terminal() {
			return sess, nil
		}
		var err error
		sess, err = e.Step(ctx, sess)
		if err != nil {
			return sess, err
		}
	}
	if sess.Terminal() {
		return sess, nil
	}
	return sess, &domain.WorkflowConfigurationError{
		Reason: fmt.Sprintf("step budget of %d exceeded without reaching terminal state", budget),
	}
}

// Inspect returns the graph definition in declaration order, for
// introspection and visualization surfaces.
func (e *Engine) Inspect() []domain.Node {
	nodes := make([]domain.Node, 0, len(e.order))
	for _, id := range e.order {
		nodes = append(nodes, e.nodes[id])
	}
	return nodes
}

// emit forwards an audit event, absorbing any sink failure: a broken audit
// transport must not stall the conversation.
func (e *Engine) emit(eventType string, payload map[string]any, redactions []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("audit emission failed", "event_type", eventType, "cause", r)
		}
	}()
	e.sink.Emit(eventType, payload, redactions)
}
