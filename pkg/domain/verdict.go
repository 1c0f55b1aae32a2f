package domain

// Verdict is the outcome of evaluating a candidate output against policy.
type Verdict struct {
	// Allowed is true when the candidate may be emitted as-is.
	Allowed bool `json:"allowed"`

	// Reason explains the denial when Allowed is false. It intentionally
	// never echoes the matched policy term back to the caller.
	Reason string `json:"reason,omitempty"`
}
