// Package core defines the shared value types that flow through ko-log:
// the Level severity scale, the mutable EventData map assembled before a
// record is built, and the immutable Record that the queue manager
// dispatches to handlers.
//
// A Record is built once per log call and never mutated afterwards; any
// mutation needed downstream (handler processors, defensive copies for
// fan-out) operates on a clone of its EventData, never the original.
package core
