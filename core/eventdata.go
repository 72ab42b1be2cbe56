package core

// EventData is the mutable mapping assembled by the logger and consumed
// by processors and renderers. It is frozen by convention once a Record
// wraps it: nothing downstream of NewRecord mutates the original map,
// only clones of it (see Clone).
//
// Required keys after logger-level assembly: "event" (string), "level"
// (core.Level), "name" (logger name, string), "timestamp" (time.Time),
// "context" (nested map[string]any). Optional callsite keys: "filename",
// "lineno", "funcName", "module", "pathname". Optional: "exc_info".
type EventData map[string]any

// Clone returns a shallow copy of d. Handlers call this before running
// their own processors so that one handler's mutation can never leak
// into a sibling handler's view of the same record.
func (d EventData) Clone() EventData {
	if d == nil {
		return nil
	}
	cp := make(EventData, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}

// String returns the string value stored at key, or "" if absent or of
// the wrong type.
func (d EventData) String(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// Level returns the core.Level stored at "level", defaulting to
// InfoLevel if absent or of the wrong type.
func (d EventData) Level() Level {
	if v, ok := d["level"].(Level); ok {
		return v
	}
	return InfoLevel
}
