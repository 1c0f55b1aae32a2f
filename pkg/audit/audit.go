// Package audit provides the append-only, selectively-redacted audit trail.
//
// Events are scrubbed at emission time: fields named in the redaction set
// are replaced by a fixed marker before the event reaches the underlying
// transport, and never mutated afterwards.
package audit

import (
	"log/slog"
	"sort"
	"sync"
)

// RedactedMarker replaces the value of every redacted field.
const RedactedMarker = "[REDACTED]"

// Event is one immutable audit record as it left the sink.
type Event struct {
	Type    string
	Payload map[string]any
}

// Sink receives audit events. Implementations must preserve per-caller
// emission order and must not fail: payloads come from trusted internal
// callers and need no validation here, only redaction and forwarding.
type Sink interface {
	Emit(eventType string, payload map[string]any, redactions []string)
}

// scrub returns a copy of payload with redacted fields replaced. The input
// map is never modified.
func scrub(payload map[string]any, redactions []string) map[string]any {
	scrubbed := make(map[string]any, len(payload))
	for k, v := range payload {
		scrubbed[k] = v
	}
	for _, field := range redactions {
		if _, ok := scrubbed[field]; ok {
			scrubbed[field] = RedactedMarker
		}
	}
	return scrubbed
}

// Logger forwards scrubbed events to a structured logger. A mutex
// serializes the transport write so causally related events are never
// interleaved out of order in the trail.
type Logger struct {
	mu  sync.Mutex
	log *slog.Logger
}

// NewLogger creates a Sink backed by the given slog logger.
func NewLogger(log *slog.Logger) *Logger {
	return &Logger{log: log}
}

// Emit scrubs the payload and writes one structured log record. Payload
// keys are emitted in sorted order for a stable trail.
func (l *Logger) Emit(eventType string, payload map[string]any, redactions []string) {
	scrubbed := scrub(payload, redactions)

	keys := make([]string, 0, len(scrubbed))
	for k := range scrubbed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, 2+2*len(keys))
	attrs = append(attrs, "event_type", eventType)
	for _, k := range keys {
		attrs = append(attrs, k, scrubbed[k])
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Info("audit_event", attrs...)
}

// Recorder keeps scrubbed events in memory, in emission order. It is used
// by tests and by hosts that want to inspect the trail directly.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit scrubs the payload and appends the event.
func (r *Recorder) Emit(eventType string, payload map[string]any, redactions []string) {
	scrubbed := scrub(payload, redactions)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Type: eventType, Payload: scrubbed})
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
