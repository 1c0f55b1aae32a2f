package domain

// Node IDs of the built-in conversation flow.
const (
	NodeProbe    = "probe"
	NodePersuade = "persuade"
	NodeDecision = "decision"

	// StateDone is the terminal marker. It is not a node: a session whose
	// current state equals StateDone has no further stages.
	StateDone = "done"
)

// Node represents one dialogue stage in the conversation graph.
type Node struct {
	ID string `json:"id" yaml:"id"`

	// Template is the candidate reply for this stage. The placeholder
	// "{{input}}" is replaced with a bounded prefix of the sanitized
	// user input before the reply is submitted to policy evaluation.
	Template string `json:"template" yaml:"template"`

	// Blocked overrides the reply when policy rejects the candidate.
	// Empty selects the default blocked message for this node.
	Blocked string `json:"blocked,omitempty" yaml:"blocked,omitempty"`

	// Transitions defines the possible paths from this node. A node with
	// no transitions is a sink: stepping past it terminates the session.
	Transitions []Transition `json:"transitions" yaml:"transitions"`
}

// Transition defines a rule to move from one node to another. Edges live
// here, not in handler code, so richer topologies can be declared without
// changing stage implementations.
type Transition struct {
	ToNodeID string `json:"to_node_id" yaml:"to"`
}

// DefaultGraph returns the built-in probe -> persuade -> decision flow.
func DefaultGraph() []Node {
	return []Node{
		{
			ID:          NodeProbe,
			Template:    "[probe] Hi, quick question about your preferences: {{input}}",
			Transitions: []Transition{{ToNodeID: NodePersuade}},
		},
		{
			ID:          NodePersuade,
			Template:    "[persuade] Here is a short approved elaboration.",
			Transitions: []Transition{{ToNodeID: NodeDecision}},
		},
		{
			ID:          NodeDecision,
			Template:    "[decision] Thanks. We'll follow up.",
			Transitions: []Transition{{ToNodeID: StateDone}},
		},
	}
}
