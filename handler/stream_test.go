package handler

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/renderer"
)

func TestStreamEmitSyncWritesToBuffer(t *testing.T) {
	var buf bytes.Buffer
	h := NewStream(StreamConfig{Writer: &buf, Renderer: renderer.Line()})

	if err := h.EmitSync(testRecord(t, "hello", core.InfoLevel)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "[INFO] app: hello\n" {
		t.Fatalf("got %q", buf.String())
	}
	if st := h.Stats(); st.Processed != 1 {
		t.Errorf("Processed = %d, want 1", st.Processed)
	}
}

func TestStreamEmitAsyncWritesDirectlyForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	h := NewStream(StreamConfig{Writer: &buf, Renderer: renderer.Line()})

	if err := h.EmitAsync(context.Background(), testRecord(t, "hello", core.InfoLevel)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "[INFO] app: hello\n" {
		t.Fatalf("got %q", buf.String())
	}
	if h.nonBlock {
		t.Fatal("a bytes.Buffer destination must never be treated as a terminal")
	}
}

func TestStreamEmitAfterCloseErrors(t *testing.T) {
	var buf bytes.Buffer
	h := NewStream(StreamConfig{Writer: &buf, Renderer: renderer.Line()})
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.EmitSync(testRecord(t, "hello", core.InfoLevel)); err == nil {
		t.Fatal("expected error emitting to a closed handler")
	}
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	h := NewStream(StreamConfig{Writer: &buf, Renderer: renderer.Line()})
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close must also succeed: %v", err)
	}
}

func TestStreamFlushIsNoop(t *testing.T) {
	var buf bytes.Buffer
	h := NewStream(StreamConfig{Writer: &buf, Renderer: renderer.Line()})
	if err := h.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStreamDefaultsToStdoutWhenNoWriter(t *testing.T) {
	h := NewStream(StreamConfig{Renderer: renderer.Line()})
	if h.w != os.Stdout {
		t.Fatal("expected os.Stdout as the default writer")
	}
}

func TestStreamUsesStderrWhenConfigured(t *testing.T) {
	h := NewStream(StreamConfig{UseStderr: true, Renderer: renderer.Line()})
	if h.w != os.Stderr {
		t.Fatal("expected os.Stderr as the writer when UseStderr is set")
	}
}
