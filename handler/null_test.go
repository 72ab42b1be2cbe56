package handler

import (
	"context"
	"testing"
	"time"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/processor"
	"github.com/Amjko2234/ko-log/renderer"
	"github.com/Amjko2234/ko-log/sink"
)

func testRecord(t *testing.T, event string, level core.Level) *core.Record {
	t.Helper()
	rec, err := core.NewRecord(core.EventData{
		"name":      "app",
		"event":     event,
		"level":     level,
		"timestamp": time.Now(),
		"context":   map[string]any{},
	})
	if err != nil {
		t.Fatalf("failed to build test record: %v", err)
	}
	return rec
}

func TestNullEmitSyncRunsPipelineButWritesNothing(t *testing.T) {
	s := sink.New()
	h := NewNull("", renderer.Line(), nil)
	h.SetSink(s)

	if err := h.EmitSync(testRecord(t, "hello", core.InfoLevel)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Events(); len(got) != 1 || got[0] != "[INFO] app: hello\n" {
		t.Fatalf("unexpected sink contents: %v", got)
	}
	if st := h.Stats(); st.Processed != 1 {
		t.Errorf("Processed = %d, want 1", st.Processed)
	}
}

func TestNullEmitAsyncHonorsDrop(t *testing.T) {
	h := NewNull("", renderer.Line(), []processor.Processor{processor.MinLevel(core.WarningLevel)})
	if err := h.EmitAsync(context.Background(), testRecord(t, "debug event", core.DebugLevel)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st := h.Stats(); st.Dropped != 1 || st.Processed != 0 {
		t.Errorf("got %+v, want Dropped=1 Processed=0", st)
	}
}

func TestNullEmitAfterCloseErrors(t *testing.T) {
	h := NewNull("", renderer.Line(), nil)
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error from Close: %v", err)
	}
	if err := h.EmitSync(testRecord(t, "hello", core.InfoLevel)); err == nil {
		t.Fatal("expected error emitting to a closed handler")
	}
}

func TestNullCloseIsIdempotent(t *testing.T) {
	h := NewNull("", renderer.Line(), nil)
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close must also succeed: %v", err)
	}
}

func TestNullAutoGeneratesID(t *testing.T) {
	h := NewNull("", renderer.Line(), nil)
	if h.ID() == "" {
		t.Fatal("expected a generated id")
	}
}

func TestClearSinkDetaches(t *testing.T) {
	s := sink.New()
	h := NewNull("", renderer.Line(), nil)
	h.SetSink(s)
	h.ClearSink()
	_ = h.EmitSync(testRecord(t, "hello", core.InfoLevel))
	if s.Len() != 0 {
		t.Fatal("expected no events after ClearSink")
	}
}
