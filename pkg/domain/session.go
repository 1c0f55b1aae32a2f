package domain

// Session represents one in-progress conversation.
//
// Sessions are passed by value and updated copy-on-write: the engine returns
// a new Session per step instead of mutating shared state, so arbitrarily
// many sessions can run concurrently without locking.
type Session struct {
	// TenantID identifies the tenant on whose behalf the conversation
	// runs. Required, immutable for the lifetime of the session.
	TenantID string `json:"tenant_id"`

	// RawInput is the untrusted text supplied by the end user. It is
	// sanitized by stage handlers before use, never trusted directly.
	RawInput string `json:"raw_input,omitempty"`

	// Current is the ID of the active node, or StateDone once terminal.
	Current string `json:"current"`

	// LastOutput is the most recent policy-vetted reply. Mutated only by
	// the state machine.
	LastOutput string `json:"last_output,omitempty"`
}

// NewSession creates a session positioned at the given entry node.
// The tenant ID is required.
func NewSession(entryNodeID, tenantID, rawInput string) (Session, error) {
	if tenantID == "" {
		return Session{}, &ValidationError{Field: "tenantId", Reason: "must not be empty"}
	}
	return Session{
		TenantID: tenantID,
		RawInput: rawInput,
		Current:  entryNodeID,
	}, nil
}

// Terminal reports whether the session has reached the terminal marker.
func (s Session) Terminal() bool {
	return s.Current == StateDone
}
