/*
Package ports defines the driven ports (interfaces) for the Dune engine.

These interfaces decouple the core logic from external implementations,
allowing the engine and gateway to work with different graph sources,
session stores, message providers and kill-switch backends.

# Key Interfaces

  - GraphLoader: Responsible for loading the conversation graph (e.g., from
    a YAML file or memory).
  - SessionStore: Responsible for persisting and loading conversation
    Sessions for stepwise external drives.
  - Provider: Responsible for delivering an outbound message downstream.
  - KillSwitch: The process-wide emergency stop consulted by the gateway.
*/
package ports
