package gateway

import "sync/atomic"

// Switch is an atomic process-wide kill switch. It implements
// ports.KillSwitch and may be toggled concurrently with gateway calls:
// a Set(true) deterministically blocks every call that checks the flag
// afterwards, with no grace period.
type Switch struct {
	flag atomic.Bool
}

// NewSwitch creates a Switch in the given initial position.
func NewSwitch(enabled bool) *Switch {
	s := &Switch{}
	s.flag.Store(enabled)
	return s
}

// Set flips the switch.
func (s *Switch) Set(enabled bool) {
	s.flag.Store(enabled)
}

// Enabled reports the current position.
func (s *Switch) Enabled() bool {
	return s.flag.Load()
}
