package handler

import (
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/processor"
	"github.com/Amjko2234/ko-log/renderer"
	"github.com/Amjko2234/ko-log/sink"
)

// Base implements the pipeline steps shared by every handler variant:
// defensive copy, processors in order, render, line framing, sink
// append. It is embedded by each concrete handler, which supplies only
// the destination-specific write.
type Base struct {
	id           string
	renderer     renderer.Renderer
	processors   []processor.Processor
	lineOriented bool

	sinkPtr atomic.Pointer[sink.Sink]
	closed  atomic.Bool

	stats Stats
}

// NewBase constructs a Base. If name is empty, a random short identity
// ("handler-xxxxxxxx") is generated, grounded on the id-generation
// pattern used throughout jingkaihe-matchlock.
func NewBase(name string, r renderer.Renderer, procs []processor.Processor, lineOriented bool) Base {
	if name == "" {
		name = "handler-" + uuid.New().String()[:8]
	}
	return Base{
		id:           name,
		renderer:     r,
		processors:   procs,
		lineOriented: lineOriented,
	}
}

// ID returns the handler's identity.
func (b *Base) ID() string { return b.id }

// SetSink attaches a capture buffer. Idempotent: attaching the same or
// a different sink simply replaces the pointer.
func (b *Base) SetSink(s *sink.Sink) { b.sinkPtr.Store(s) }

// ClearSink detaches any attached sink, restoring the handler to its
// pre-attachment state.
func (b *Base) ClearSink() { b.sinkPtr.Store(nil) }

// IsClosed reports whether the handler has been marked closed
// (MarkClosed has run), which Close does before any draining it does.
func (b *Base) IsClosed() bool { return b.closed.Load() }

// MarkClosed transitions to closed and reports whether this call was
// the one that did it (false means a prior call already closed it).
func (b *Base) MarkClosed() bool { return b.closed.CompareAndSwap(false, true) }

// Stats implements StatsProvider.
func (b *Base) Stats() Snapshot { return b.stats.Get() }

// RunPipeline executes the processor -> renderer -> line-framing ->
// sink pipeline for rec. drop is true when a processor or renderer
// signaled a drop; in that case payload is empty and err is nil.
func (b *Base) RunPipeline(rec *core.Record) (payload string, drop bool, err error) {
	data := rec.Data().Clone()

	data, drop, err = processor.Run(b.id, b.processors, data)
	if drop || err != nil {
		return "", drop, err
	}

	payload, drop, err = renderer.Run(b.id, b.renderer, data)
	if drop || err != nil {
		return "", drop, err
	}

	if b.lineOriented && !strings.HasSuffix(payload, "\n") {
		payload += "\n"
	}

	if s := b.sinkPtr.Load(); s != nil {
		s.Append(payload)
	}

	return payload, false, nil
}
