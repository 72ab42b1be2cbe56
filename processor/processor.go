// Package processor defines the Processor contract: a pure transform of
// event data that may also signal "drop this event for this handler."
//
// The built-in processors here are minimal examples exercising the
// contract; the content of built-in processors beyond their contract
// is an external factory's concern.
package processor

import (
	"errors"
	"fmt"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/errs"
)

// Processor transforms event data, returning either the (possibly new)
// event data to continue the pipeline with, or errs.Drop to halt it for
// the current handler. Any other non-nil error is an unexpected
// processor failure and gets wrapped into a *errs.Error by the caller.
//
// A Processor may mutate the map it receives and return the same
// reference, or build a new one; callers treat the return value as
// authoritative.
type Processor func(core.EventData) (core.EventData, error)

// MinLevel drops any event below the given level. It is the canonical
// example of a filtering processor.
func MinLevel(level core.Level) Processor {
	return func(data core.EventData) (core.EventData, error) {
		if data.Level() < level {
			return nil, errs.Drop
		}
		return data, nil
	}
}

// AddStatic returns a processor that sets a fixed key/value pair on
// every event, overwriting any existing value at that key.
func AddStatic(key string, value any) Processor {
	return func(data core.EventData) (core.EventData, error) {
		data[key] = value
		return data, nil
	}
}

// Run applies processors in declared order, stopping at the first drop
// signal or error. component identifies the handler for error context.
func Run(component string, processors []Processor, data core.EventData) (core.EventData, bool, error) {
	current := data
	for i, p := range processors {
		next, err := p(current)
		if errors.Is(err, errs.Drop) {
			return nil, true, nil
		}
		if err != nil {
			return nil, false, errs.NewProcessorError(component, fmt.Sprintf("processor %d failed", i), err)
		}
		current = next
	}
	return current, false, nil
}
