// Package renderer defines the Renderer contract: a pure conversion of
// event data into a finite byte/text payload, which may also signal a
// drop (equivalent to a processor drop).
package renderer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/errs"
)

// Renderer converts event data into a payload string. It is pure with
// respect to event data: it must not mutate the map it receives.
type Renderer func(core.EventData) (string, error)

// Line renders "[LEVEL] name: event key=value key=value" — a minimal
// line-oriented renderer used by the built-in handlers' examples and by
// tests. Fields are taken from the "context" map in sorted key order,
// for determinism.
func Line() Renderer {
	return func(data core.EventData) (string, error) {
		var b strings.Builder
		b.WriteString("[")
		b.WriteString(data.Level().String())
		b.WriteString("] ")
		b.WriteString(data.String("name"))
		b.WriteString(": ")
		b.WriteString(data.String("event"))
		if ctx, ok := data["context"].(map[string]any); ok && len(ctx) > 0 {
			keys := make([]string, 0, len(ctx))
			for k := range ctx {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%v", k, ctx[k])
			}
		}
		return b.String(), nil
	}
}

// Run invokes r and classifies its outcome: the payload to write, a
// drop flag, or a wrapped renderer error.
func Run(component string, r Renderer, data core.EventData) (string, bool, error) {
	payload, err := r(data)
	if errors.Is(err, errs.Drop) {
		return "", true, nil
	}
	if err != nil {
		return "", false, errs.NewRendererError(component, "renderer failed", err)
	}
	return payload, false, nil
}
