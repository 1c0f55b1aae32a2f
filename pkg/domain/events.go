package domain

import "context"

// NodeEvent represents entry into or exit from a conversation stage.
type NodeEvent struct {
	NodeID   string `json:"node_id"`
	TenantID string `json:"tenant_id"`
}

// PolicyEvent represents a policy denial absorbed by a stage handler.
type PolicyEvent struct {
	NodeID string `json:"node_id"`
	Reason string `json:"reason"`
}

// ToolEvent represents a gateway dispatch.
type ToolEvent struct {
	Tool    string `json:"tool"`
	Verb    string `json:"verb"`
	IsError bool   `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine and gateway observability.
// All fields are optional; nil hooks are skipped.
type LifecycleHooks struct {
	OnNodeEnter   func(context.Context, *NodeEvent)
	OnNodeLeave   func(context.Context, *NodeEvent)
	OnPolicyBlock func(context.Context, *PolicyEvent)
	OnToolCall    func(context.Context, *ToolEvent)
	OnToolReturn  func(context.Context, *ToolEvent)
}
