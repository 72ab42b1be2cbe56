package renderer

import (
	"errors"
	"testing"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/errs"
)

func TestLineFormatsWithoutContext(t *testing.T) {
	r := Line()
	payload, err := r(core.EventData{
		"level": core.WarningLevel,
		"name":  "app",
		"event": "disk low",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[WARNING] app: disk low"
	if payload != want {
		t.Errorf("got %q, want %q", payload, want)
	}
}

func TestLineSortsContextKeys(t *testing.T) {
	r := Line()
	payload, err := r(core.EventData{
		"level":   core.InfoLevel,
		"name":    "app",
		"event":   "request",
		"context": map[string]any{"z": 1, "a": 2, "m": 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[INFO] app: request a=2 m=3 z=1"
	if payload != want {
		t.Errorf("got %q, want %q", payload, want)
	}
}

func TestLineIgnoresEmptyContext(t *testing.T) {
	r := Line()
	payload, err := r(core.EventData{
		"level":   core.InfoLevel,
		"name":    "app",
		"event":   "tick",
		"context": map[string]any{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != "[INFO] app: tick" {
		t.Errorf("got %q", payload)
	}
}

func TestRunDropsOnDropSignal(t *testing.T) {
	r := func(core.EventData) (string, error) { return "", errs.Drop }
	payload, drop, err := Run("h1", r, core.EventData{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !drop || payload != "" {
		t.Fatalf("expected drop with empty payload, got drop=%v payload=%q", drop, payload)
	}
}

func TestRunWrapsRendererError(t *testing.T) {
	boom := errors.New("boom")
	r := func(core.EventData) (string, error) { return "", boom }
	_, drop, err := Run("h1", r, core.EventData{})
	if drop {
		t.Fatal("an unexpected error must not be reported as a drop")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestRunReturnsPayloadOnSuccess(t *testing.T) {
	r := func(core.EventData) (string, error) { return "payload", nil }
	payload, drop, err := Run("h1", r, core.EventData{})
	if err != nil || drop {
		t.Fatalf("unexpected drop/error: drop=%v err=%v", drop, err)
	}
	if payload != "payload" {
		t.Errorf("got %q", payload)
	}
}
