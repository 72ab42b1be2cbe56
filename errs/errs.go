// Package errs implements ko-log's structured error taxonomy: typed
// errors carrying a machine-readable code of the form
// LAYER::Component::CATEGORY::SEVERITY[::RECOVERABLE] and an optional
// context map.
//
// Drop is the one sanctioned non-error control signal: processors and
// renderers return it to mean "silently stop the pipeline for this
// handler," distinguished from real failures via errors.Is, never by
// overloading a generic error.
package errs

import (
	"errors"
	"fmt"
	"time"
)

// Layer identifies where, architecturally, an error originated.
type Layer string

const (
	LayerConfiguration Layer = "CONFIGURATION"
	LayerFactory       Layer = "FACTORY"
	LayerDispatch      Layer = "DISPATCH"
	LayerHandler       Layer = "HANDLER"
	LayerProcessor     Layer = "PROCESSOR"
)

// Category classifies what kind of problem occurred.
type Category string

const (
	CategoryConfiguration Category = "CONFIGURATION"
	CategoryFormatting    Category = "FORMATTING"
	CategoryRouting       Category = "ROUTING"
	CategoryValidation    Category = "VALIDATION"
	CategoryIO            Category = "IO"
	CategoryUnexpected    Category = "UNEXPECTED"
)

// Severity is the error's blast radius.
type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Drop is returned by a Processor or Renderer to signal that the event
// should be dropped for the current handler. It is never wrapped by
// Error and must be checked with errors.Is, not a type switch on Error.
var Drop = errors.New("ko-log: drop signal")

// Error is the common shape of every ko-log error: a human message, a
// structured code, optional context, and an optional cause for
// unwrapping.
type Error = BaseError

// BaseError is the underlying type behind Error. It is named
// separately so that CompositeError can embed it as BaseError rather
// than Error — embedding it as Error would give the embedded field
// the name "Error", which collides with (and prevents promotion of)
// the Error() method needed to satisfy the error interface.
type BaseError struct {
	Layer       Layer
	Component   string
	Category    Category
	Severity    Severity
	Recoverable bool
	Message     string
	Context     map[string]any
	Cause       error
	At          time.Time
}

// Code renders the LAYER::Component::CATEGORY::SEVERITY[::RECOVERABLE]
// code for this error.
func (e *BaseError) Code() string {
	code := fmt.Sprintf("%s::%s::%s::%s", e.Layer, e.Component, e.Category, e.Severity)
	if e.Recoverable {
		return code + "::RECOVERABLE"
	}
	return code
}

func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Message, e.Code(), e.Cause)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code())
}

// Unwrap exposes the cause, if any, to errors.Is/errors.As.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithContext returns a shallow copy of e with the given key set in its
// context map.
func (e *BaseError) WithContext(key string, value any) *BaseError {
	cp := *e
	cp.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

func newError(layer Layer, category Category, severity Severity, component, message string, cause error) *BaseError {
	return &BaseError{
		Layer:     layer,
		Component: component,
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     cause,
		At:        time.Now(),
	}
}

// NewConfigurationError reports an invalid or unknown logger/handler/
// processor reference, raised at registration or factory time.
// Not recoverable by the core.
func NewConfigurationError(component, message string, cause error) *BaseError {
	return newError(LayerConfiguration, CategoryConfiguration, SeverityError, component, message, cause)
}

// NewLoggerCreationError reports that assembling a logger failed,
// composing a processor or handler error as its cause.
func NewLoggerCreationError(component, message string, cause error) *BaseError {
	return newError(LayerFactory, CategoryConfiguration, SeverityError, component, message, cause)
}

// NewHandlerIOError reports a failed destination operation (open, write,
// rename, flush, close). recoverable flags whether the operation is
// safe to retry (e.g. a transient write failure vs. a permission error).
func NewHandlerIOError(component, message string, cause error, recoverable bool) *BaseError {
	e := newError(LayerHandler, CategoryIO, SeverityError, component, message, cause)
	e.Recoverable = recoverable
	return e
}

// NewProcessorError reports that a processor raised unexpectedly,
// distinct from the Drop control signal.
func NewProcessorError(component, message string, cause error) *BaseError {
	return newError(LayerProcessor, CategoryFormatting, SeverityError, component, message, cause)
}

// NewRendererError reports that a renderer raised unexpectedly.
func NewRendererError(component, message string, cause error) *BaseError {
	return newError(LayerProcessor, CategoryFormatting, SeverityError, component, message, cause)
}

// NewDispatchError reports that the queue manager could not route a
// record: no handlers, a closed queue, or a composite of per-handler
// failures in the sync path.
func NewDispatchError(component, message string, cause error) *BaseError {
	return newError(LayerDispatch, CategoryRouting, SeverityError, component, message, cause)
}

// HandlerOutcome records one handler's result for a single dispatch,
// used by composite errors to report per-handler detail.
type HandlerOutcome struct {
	HandlerID string
	Err       error
}

// CompositeError aggregates per-handler outcomes from a fan-out
// operation (sync push or shutdown close) into one error whose Unwrap
// chain walks each non-nil per-handler error.
type CompositeError struct {
	*BaseError
	Outcomes []HandlerOutcome
}

// NewCompositeDispatchError builds a dispatch error whose context lists
// every handler's outcome, for the sync push path.
func NewCompositeDispatchError(component, message string, outcomes []HandlerOutcome) *CompositeError {
	base := NewDispatchError(component, message, nil)
	ctx := make(map[string]any, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			ctx[o.HandlerID] = o.Err.Error()
		}
	}
	base.Context = ctx
	return &CompositeError{BaseError: base, Outcomes: outcomes}
}

// NewCompositeShutdownError builds a shutdown error aggregating
// per-handler Close failures. Closing other handlers is never blocked
// by one handler's failure to close.
func NewCompositeShutdownError(component, message string, outcomes []HandlerOutcome) *CompositeError {
	base := newError(LayerDispatch, CategoryIO, SeverityError, component, message, nil)
	ctx := make(map[string]any, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			ctx[o.HandlerID] = o.Err.Error()
		}
	}
	base.Context = ctx
	return &CompositeError{BaseError: base, Outcomes: outcomes}
}

// Unwrap exposes every non-nil per-handler error to errors.Is/errors.As.
func (c *CompositeError) Unwrap() []error {
	var out []error
	for _, o := range c.Outcomes {
		if o.Err != nil {
			out = append(out, o.Err)
		}
	}
	return out
}

// HasErrors reports whether any handler outcome carried a non-nil
// error.
func (c *CompositeError) HasErrors() bool {
	for _, o := range c.Outcomes {
		if o.Err != nil {
			return true
		}
	}
	return false
}
