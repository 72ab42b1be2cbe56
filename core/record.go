package core

import (
	"time"

	"github.com/Amjko2234/ko-log/errs"
)

// Record is the immutable envelope dispatched through the queue:
// (logger_name, level, timestamp, event_data). It is built once per log
// call by NewRecord and never mutated after that; the dispatch level is
// already resolved by logger-level filtering, though handler-level
// processors (such as processor.MinLevel) may still drop the record for
// their own handler.
type Record struct {
	loggerName string
	level      Level
	timestamp  time.Time
	data       EventData
}

// NewRecord builds a Record from assembled EventData. It requires
// "event", "level", "name", "timestamp", and "context" to already be
// present — assembling them is the logger's job, out of scope for this
// package — and returns a *errs.Error (LoggerCreationError) if any
// are missing.
func NewRecord(data EventData) (*Record, error) {
	name, ok := data["name"].(string)
	if !ok || name == "" {
		return nil, errs.NewLoggerCreationError("core.NewRecord", "event data missing required \"name\" key", nil)
	}
	ts, ok := data["timestamp"].(time.Time)
	if !ok {
		return nil, errs.NewLoggerCreationError("core.NewRecord", "event data missing required \"timestamp\" key", nil)
	}
	if _, ok := data["event"].(string); !ok {
		return nil, errs.NewLoggerCreationError("core.NewRecord", "event data missing required \"event\" key", nil)
	}
	if _, ok := data["context"].(map[string]any); !ok {
		return nil, errs.NewLoggerCreationError("core.NewRecord", "event data missing required \"context\" key", nil)
	}
	lvl, ok := data["level"].(Level)
	if !ok {
		return nil, errs.NewLoggerCreationError("core.NewRecord", "event data missing required \"level\" key", nil)
	}

	return &Record{
		loggerName: name,
		level:      lvl,
		timestamp:  ts,
		data:       data,
	}, nil
}

// LoggerName is the routing key used by the queue manager.
func (r *Record) LoggerName() string {
	return r.loggerName
}

// Level is the already-resolved dispatch level.
func (r *Record) Level() Level {
	return r.level
}

// Timestamp is the monotonic wall-clock time the record was created.
func (r *Record) Timestamp() time.Time {
	return r.timestamp
}

// Data returns the record's event data. Callers must treat it as
// read-only; handlers clone it before running their pipeline.
func (r *Record) Data() EventData {
	return r.data
}
