package handler

import (
	"testing"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/processor"
	"github.com/Amjko2234/ko-log/renderer"
)

func TestNewBaseGeneratesIDWhenEmpty(t *testing.T) {
	b := NewBase("", renderer.Line(), nil, true)
	if b.ID() == "" {
		t.Fatal("expected a generated id")
	}
}

func TestNewBaseKeepsGivenName(t *testing.T) {
	b := NewBase("my-handler", renderer.Line(), nil, true)
	if b.ID() != "my-handler" {
		t.Errorf("ID() = %q, want %q", b.ID(), "my-handler")
	}
}

func TestMarkClosedOnlyFirstCallReportsTrue(t *testing.T) {
	b := NewBase("h", renderer.Line(), nil, true)
	if !b.MarkClosed() {
		t.Fatal("first MarkClosed should report true")
	}
	if b.MarkClosed() {
		t.Fatal("second MarkClosed should report false")
	}
	if !b.IsClosed() {
		t.Fatal("IsClosed should be true after MarkClosed")
	}
}

func TestRunPipelineAppliesLineFraming(t *testing.T) {
	b := NewBase("h", renderer.Line(), nil, true)
	rec := testRecord(t, "hello", core.InfoLevel)
	payload, drop, err := b.RunPipeline(rec)
	if err != nil || drop {
		t.Fatalf("unexpected drop/error: drop=%v err=%v", drop, err)
	}
	if payload[len(payload)-1] != '\n' {
		t.Fatalf("expected a trailing newline, got %q", payload)
	}
}

func TestRunPipelineDropViaProcessor(t *testing.T) {
	b := NewBase("h", renderer.Line(), []processor.Processor{processor.MinLevel(core.CriticalLevel + 1)}, true)
	rec := testRecord(t, "hello", core.InfoLevel)
	_, drop, err := b.RunPipeline(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !drop {
		t.Fatal("expected drop=true")
	}
}
