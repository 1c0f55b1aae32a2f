/*
Package domain contains the core domain models for the Dune engine.

It defines the fundamental entities of the conversation state machine, such as
Nodes, Transitions, the per-conversation Session, policy Verdicts and the
outbound action payloads. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Node: Represents one dialogue stage in the conversation graph.
  - Transition: Defines the outgoing edges of a node, declared independently
    of the node's handler logic.
  - Session: Captures the runtime snapshot of one conversation (tenant,
    untrusted input, current stage, last vetted output).
  - SMSPayload: The validated input to the outbound message gateway.
  - Verdict: The allow/deny decision produced by the policy engine.
*/
package domain
