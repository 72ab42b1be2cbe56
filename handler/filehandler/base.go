package filehandler

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/errs"
	"github.com/Amjko2234/ko-log/handler"
	"github.com/Amjko2234/ko-log/processor"
	"github.com/Amjko2234/ko-log/renderer"
	"github.com/Amjko2234/ko-log/sink"
)

// OpenMode selects how the destination file is opened on first write.
type OpenMode int

const (
	// AppendMode opens (or creates) the file and appends ("ab").
	AppendMode OpenMode = iota
	// TruncateMode opens (or creates) the file and truncates it on
	// first write ("wb").
	TruncateMode
)

// lifecycle mirrors the unopened -> open -> closing -> closed state
// machine. There is no transition back to open from closed.
type lifecycle int32

const (
	unopened lifecycle = iota
	open
	closing
	closed
)

// fileBase is the shared resource owner for File and Rotating. Mirrors
// handler.Base's id/renderer/processors/sink/stats fields and runs its
// own copy of the pipeline rather than embedding Base itself; File and
// Rotating each embed fileBase.
type fileBase struct {
	id         string
	renderer   renderer.Renderer
	processors []processor.Processor

	sinkPtr atomic.Pointer[sink.Sink]
	stats   handler.Stats

	filename         string
	mode             OpenMode
	overrideExisting bool

	writeMu sync.Mutex
	state   lifecycle
	file    *os.File
	bufw    *bufio.Writer

	currentSize      int64
	lastRotationTime time.Time

	// Rotation parameters; zero values disable the corresponding
	// trigger.
	maxBytes         int64
	backupCount      int
	rotationInterval time.Duration
}

func newFileBase(name, filename string, mode OpenMode, override bool, r renderer.Renderer, procs []processor.Processor, maxBytes int64, backupCount int, rotationInterval time.Duration) *fileBase {
	if name == "" {
		name = "handler-" + uuid.New().String()[:8]
	}
	return &fileBase{
		id:               name,
		renderer:         r,
		processors:       procs,
		filename:         filename,
		mode:             mode,
		overrideExisting: override,
		state:            unopened,
		maxBytes:         maxBytes,
		backupCount:      backupCount,
		rotationInterval: rotationInterval,
	}
}

// ID implements handler.Handler.
func (b *fileBase) ID() string { return b.id }

// SetSink implements handler.Sinkable.
func (b *fileBase) SetSink(s *sink.Sink) { b.sinkPtr.Store(s) }

// ClearSink implements handler.Sinkable.
func (b *fileBase) ClearSink() { b.sinkPtr.Store(nil) }

// Stats implements handler.StatsProvider.
func (b *fileBase) Stats() handler.Snapshot { return b.stats.Get() }

func (b *fileBase) hasRotation() bool {
	return b.maxBytes > 0 || b.rotationInterval > 0
}

// runPipeline runs the processor -> renderer -> line-framing -> sink
// steps, identical in shape to handler.Base.RunPipeline.
func (b *fileBase) runPipeline(rec *core.Record) (payload string, drop bool, err error) {
	data := rec.Data().Clone()

	data, drop, err = processor.Run(b.id, b.processors, data)
	if drop || err != nil {
		return "", drop, err
	}

	payload, drop, err = renderer.Run(b.id, b.renderer, data)
	if drop || err != nil {
		return "", drop, err
	}

	if !strings.HasSuffix(payload, "\n") {
		payload += "\n"
	}

	if s := b.sinkPtr.Load(); s != nil {
		s.Append(payload)
	}

	return payload, false, nil
}

// ensureOpen lazily opens the destination file on the first successful
// pipeline run. Must be called with writeMu held.
func (b *fileBase) ensureOpen() error {
	if b.file != nil {
		return nil
	}

	if dir := filepath.Dir(b.filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.NewHandlerIOError(b.id, "failed to create log directory", err, false)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	switch b.mode {
	case TruncateMode:
		if !b.overrideExisting {
			if _, statErr := os.Stat(b.filename); statErr == nil {
				return errs.NewHandlerIOError(b.id, fmt.Sprintf("file %q already exists and override_existing is false", b.filename), nil, false)
			}
		}
		flags |= os.O_TRUNC
	case AppendMode:
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(b.filename, flags, 0o644)
	if err != nil {
		return errs.NewHandlerIOError(b.id, "failed to open log file", err, true)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return errs.NewHandlerIOError(b.id, "failed to stat log file", err, true)
	}

	b.file = f
	b.bufw = bufio.NewWriter(f)
	b.currentSize = info.Size()
	b.lastRotationTime = time.Now()
	b.state = open
	return nil
}

// write runs the shared rotate-then-write sequence under the single
// write lock shared by both EmitSync and EmitAsync.
func (b *fileBase) write(payload string) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if b.state == closed {
		return errs.NewHandlerIOError(b.id, "handler is closed", nil, false)
	}

	if err := b.ensureOpen(); err != nil {
		return err
	}

	if b.hasRotation() {
		if rotErr := b.rotateIfNeeded(len(payload)); rotErr != nil {
			// Rotation failed; rotateIfNeeded may have restored a usable
			// handle on a best-effort basis, or may have left none at
			// all if the recovery reopen also failed. Only attempt the
			// pending write if a handle actually exists, but surface the
			// rotation failure to the caller either way.
			if b.bufw != nil {
				_ = b.rawWrite(payload)
			}
			return rotErr
		}
	}

	return b.rawWrite(payload)
}

func (b *fileBase) rawWrite(payload string) error {
	n, err := b.bufw.WriteString(payload)
	if err == nil {
		err = b.bufw.Flush()
	}
	if err != nil {
		b.stats.IncErrors()
		return errs.NewHandlerIOError(b.id, "write to log file failed", err, true)
	}
	b.currentSize += int64(n)
	b.stats.IncProcessed()
	return nil
}

// emit runs the pipeline and, on success, writes the payload. Shared
// by EmitSync and EmitAsync; the pipeline itself holds no lock, only
// the destination write does.
func (b *fileBase) emit(rec *core.Record) error {
	payload, drop, err := b.runPipeline(rec)
	if err != nil {
		b.stats.IncErrors()
		return err
	}
	if drop {
		b.stats.IncDropped()
		return nil
	}
	return b.write(payload)
}

// EmitSync implements handler.Handler.
func (b *fileBase) EmitSync(rec *core.Record) error {
	return b.emit(rec)
}

// EmitAsync implements handler.Handler. ctx is accepted for interface
// symmetry; a file write already in flight always runs to completion.
func (b *fileBase) EmitAsync(_ context.Context, rec *core.Record) error {
	return b.emit(rec)
}

// Flush forces the buffered writer out to the OS. Idempotent.
func (b *fileBase) Flush() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if b.bufw == nil {
		return nil
	}
	if err := b.bufw.Flush(); err != nil {
		return errs.NewHandlerIOError(b.id, "flush failed", err, true)
	}
	return nil
}

// Close flushes and closes the file handle. Safe to call more than
// once.
func (b *fileBase) Close() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if b.state == closed {
		return nil
	}
	b.state = closing
	defer func() { b.state = closed }()

	if b.file == nil {
		return nil
	}

	var flushErr error
	if b.bufw != nil {
		flushErr = b.bufw.Flush()
	}
	closeErr := b.file.Close()
	b.file = nil
	b.bufw = nil

	if flushErr != nil {
		return errs.NewHandlerIOError(b.id, "flush on close failed", flushErr, false)
	}
	if closeErr != nil {
		return errs.NewHandlerIOError(b.id, "close failed", closeErr, false)
	}
	return nil
}
