package handler

import (
	"context"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/errs"
	"github.com/Amjko2234/ko-log/processor"
	"github.com/Amjko2234/ko-log/renderer"
)

// Null is the no-op destination: it still runs the full pipeline (so
// processors and an attached sink observe every event) but never writes
// anywhere.
type Null struct {
	Base
}

// NewNull creates a Null handler. name may be empty to auto-generate an
// identity.
func NewNull(name string, r renderer.Renderer, procs []processor.Processor) *Null {
	return &Null{Base: NewBase(name, r, procs, true)}
}

// EmitSync runs the pipeline and discards the result.
func (h *Null) EmitSync(rec *core.Record) error {
	return h.emit(rec)
}

// EmitAsync runs the pipeline and discards the result.
func (h *Null) EmitAsync(_ context.Context, rec *core.Record) error {
	return h.emit(rec)
}

func (h *Null) emit(rec *core.Record) error {
	if h.IsClosed() {
		return errs.NewHandlerIOError(h.ID(), "handler is closed", nil, false)
	}
	_, drop, err := h.RunPipeline(rec)
	if err != nil {
		h.stats.IncErrors()
		return err
	}
	if drop {
		h.stats.IncDropped()
		return nil
	}
	h.stats.IncProcessed()
	return nil
}

// Flush is a no-op; Null has nothing to flush.
func (h *Null) Flush() error { return nil }

// Close marks the handler closed. Safe to call twice.
func (h *Null) Close() error {
	h.MarkClosed()
	return nil
}
