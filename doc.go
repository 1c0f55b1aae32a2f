/*
Package dune is a policy-gated conversation workflow engine.

It mediates a multi-turn, untrusted-input conversation through a small
graph of dialogue stages, enforcing an output content policy at every
stage, emitting a tamper-evident audit trail, and gating every
side-effecting external action behind a validated, centrally-killable
gateway.

# Concept

Dune treats a conversation as a graph of nodes. Each step sanitizes the
untrusted input, synthesizes a candidate reply, submits it to the policy
engine, substitutes a fixed blocked message on denial, audits the
transition, and advances along the declared edges. The Hexagonal
Architecture keeps the core decoupled from its hosts: the same engine is
embedded in the CLI, the HTTP server and the MCP tool server.

# Key Features

  - Deterministic Execution: Given the same session and input, every
    transition is reproducible; full runs are bounded by a step budget.
  - Policy Enforcement: Every generated reply is vetted; denials are
    absorbed, never retried, and never abort the conversation.
  - Audited Side Effects: The action gateway is the sole path for
    external effects, with per-call validation, field redaction and a
    process-wide atomic kill switch.

# Usage

	eng, err := dune.New()
	if err != nil {
		log.Fatal(err)
	}

	final, err := eng.RunConversation(context.Background(), "tenant-1", "hello")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(final.LastOutput) // "[decision] Thanks. We'll follow up."
*/
package dune
