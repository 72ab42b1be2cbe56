package handler

import (
	"context"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/sink"
)

// Handler is the abstract contract every destination implements.
type Handler interface {
	// ID returns a stable identity for this handler, used to tag
	// per-handler outcomes in composite errors and the fallback error
	// channel.
	ID() string

	// EmitSync runs the handler pipeline and writes synchronously,
	// holding the handler's write lock for the duration of the write.
	// Returns nil on a drop signal (no write occurred).
	EmitSync(rec *core.Record) error

	// EmitAsync is the same pipeline, invoked by the queue manager's
	// background worker. The worker passes context.Background(), so no
	// shutdown or drain deadline reaches the handler through ctx; a
	// write already in flight is always allowed to finish.
	EmitAsync(ctx context.Context, rec *core.Record) error

	// Flush forces a durable write of any buffered output. Idempotent.
	Flush() error

	// Close transitions the handler to closed and releases its
	// resources. Safe to call more than once; the second call is a
	// no-op.
	Close() error
}

// Sinkable is implemented by every built-in handler so the queue
// manager's AddSink/RemoveSink can attach or detach a capture buffer
// without knowing the concrete handler type.
type Sinkable interface {
	SetSink(s *sink.Sink)
	ClearSink()
}

// StatsProvider is implemented by every built-in handler to expose its
// processed/dropped/error counters.
type StatsProvider interface {
	Stats() Snapshot
}
