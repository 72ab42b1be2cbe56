// Package sink provides the in-memory capture buffer used by tests to
// observe exactly what a handler would have written to its destination.
package sink

import "sync"

// Sink is an append-only, thread-safe buffer of rendered payloads. When
// attached to a handler, the handler appends the post-render payload to
// the sink in addition to (or, for the null handler, in place of)
// writing to its real destination.
type Sink struct {
	mu     sync.Mutex
	events []string
}

// New returns an empty Sink.
func New() *Sink {
	return &Sink{}
}

// Append adds a payload to the sink. Safe for concurrent use.
func (s *Sink) Append(payload string) {
	s.mu.Lock()
	s.events = append(s.events, payload)
	s.mu.Unlock()
}

// Events returns a snapshot copy of the captured payloads, in append
// order.
func (s *Sink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

// Clear empties the sink.
func (s *Sink) Clear() {
	s.mu.Lock()
	s.events = s.events[:0]
	s.mu.Unlock()
}

// Len reports the number of captured payloads.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
