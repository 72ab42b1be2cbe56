package handler

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/errs"
	"github.com/Amjko2234/ko-log/processor"
	"github.com/Amjko2234/ko-log/renderer"
)

// StreamConfig configures a Stream handler.
type StreamConfig struct {
	// Name is the handler's identity; auto-generated when empty.
	Name string
	// UseStderr selects os.Stderr as the destination when Writer is
	// nil; otherwise the default is os.Stdout.
	UseStderr bool
	// Writer overrides the destination (tests pass a bytes.Buffer).
	Writer     io.Writer
	Renderer   renderer.Renderer
	Processors []processor.Processor
	// AsyncQueueSize bounds the write queue used only when the
	// destination is a real terminal. Default 64.
	AsyncQueueSize int
}

// streamMsg is what flows through Stream's write queue: either a
// payload to write, or a flush barrier (done set, payload empty) that
// drain closes once every message enqueued ahead of it has been
// written, letting Flush wait for its turn in queue order instead of
// racing drain for writeMu.
type streamMsg struct {
	payload string
	done    chan struct{}
}

// Stream writes to standard output or standard error. Sync writes go
// straight to the underlying writer. Async writes go through a bounded
// queue, drained in order by a single background goroutine, ONLY when
// the destination is detected (via go-isatty) to be a real terminal;
// otherwise — the common case, and the only path exercised by tests,
// since bytes.Buffer is never a terminal — async writes are a direct
// blocking write under the same lock sync writes use, which is what
// keeps write order well-defined across both paths.
type Stream struct {
	Base

	w        io.Writer
	writeMu  sync.Mutex
	nonBlock bool
	queue    chan streamMsg
	wg       sync.WaitGroup
}

// NewStream creates a Stream handler per cfg.
func NewStream(cfg StreamConfig) *Stream {
	w := cfg.Writer
	if w == nil {
		if cfg.UseStderr {
			w = os.Stderr
		} else {
			w = os.Stdout
		}
	}

	size := cfg.AsyncQueueSize
	if size <= 0 {
		size = 64
	}

	h := &Stream{
		Base: NewBase(cfg.Name, cfg.Renderer, cfg.Processors, true),
		w:    w,
	}

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		h.nonBlock = true
		h.queue = make(chan streamMsg, size)
		h.wg.Add(1)
		go h.drain()
	}

	return h
}

func (h *Stream) drain() {
	defer h.wg.Done()
	for msg := range h.queue {
		if msg.done != nil {
			close(msg.done)
			continue
		}
		h.writeMu.Lock()
		if _, err := io.WriteString(h.w, msg.payload); err == nil {
			h.stats.IncProcessed()
		} else {
			h.stats.IncErrors()
		}
		h.writeMu.Unlock()
	}
}

// EmitSync runs the pipeline and writes directly, under the write lock.
func (h *Stream) EmitSync(rec *core.Record) error {
	if h.IsClosed() {
		return errs.NewHandlerIOError(h.ID(), "handler is closed", nil, false)
	}
	payload, drop, err := h.RunPipeline(rec)
	if err != nil {
		h.stats.IncErrors()
		return err
	}
	if drop {
		h.stats.IncDropped()
		return nil
	}
	return h.writeSync(payload)
}

func (h *Stream) writeSync(payload string) error {
	h.writeMu.Lock()
	_, err := io.WriteString(h.w, payload)
	h.writeMu.Unlock()
	if err != nil {
		h.stats.IncErrors()
		return errs.NewHandlerIOError(h.ID(), "stream write failed", err, true)
	}
	h.stats.IncProcessed()
	return nil
}

// EmitAsync runs the pipeline, then either enqueues the payload onto
// the write queue (terminal destinations) or writes directly (every
// other destination, including every test double). The enqueue blocks
// once the queue is full rather than writing the payload out of turn,
// so write order always matches enqueue order even under a backed-up
// terminal.
func (h *Stream) EmitAsync(_ context.Context, rec *core.Record) error {
	if h.IsClosed() {
		return errs.NewHandlerIOError(h.ID(), "handler is closed", nil, false)
	}
	payload, drop, err := h.RunPipeline(rec)
	if err != nil {
		h.stats.IncErrors()
		return err
	}
	if drop {
		h.stats.IncDropped()
		return nil
	}

	if h.nonBlock {
		h.queue <- streamMsg{payload: payload}
		return nil
	}
	return h.writeSync(payload)
}

// Flush waits for every payload enqueued before this call to be
// written out. For the direct-write path it is a no-op, since there is
// nothing buffered outside of writeMu's critical section.
func (h *Stream) Flush() error {
	if !h.nonBlock || h.IsClosed() {
		return nil
	}
	done := make(chan struct{})
	h.queue <- streamMsg{done: done}
	<-done
	return nil
}

// Close drains the write queue (if any) and marks the handler closed.
// Safe to call twice.
func (h *Stream) Close() error {
	if !h.MarkClosed() {
		return nil
	}
	if h.nonBlock {
		close(h.queue)
		h.wg.Wait()
	}
	return nil
}
