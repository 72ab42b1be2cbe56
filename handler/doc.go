// Package handler defines the Handler contract and its built-in
// variants (Null, Stream; File and Rotating live in the filehandler
// sub-package since they share a lazy-open file resource).
//
// A handler owns a destination resource, its own processors, a
// renderer, and an optional sink. It exposes two parallel write paths —
// EmitSync and EmitAsync — sharing the same post-render payload
// pipeline (copy event data, run processors, render, frame the line,
// append to sink), differing in which goroutine calls them: EmitSync
// runs on the caller's own goroutine; EmitAsync is called by the queue
// manager's single background worker. Each built-in handler that has a
// write lock uses that one lock for the destination write on both
// paths.
//
// Handler failures never propagate past the handler boundary silently:
// EmitSync/EmitAsync return a *errs.Error that the caller (queue
// manager) isolates per handler, so one bad handler can never affect
// its siblings.
package handler
