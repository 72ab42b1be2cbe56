package queue

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Amjko2234/ko-log/core"
	"github.com/Amjko2234/ko-log/errs"
	"github.com/Amjko2234/ko-log/handler"
	"github.com/Amjko2234/ko-log/sink"
)

// state is the worker's lifecycle: new (not yet started), running,
// draining, stopped. stateNew and stateStopped are kept distinct so a Manager can
// never be restarted after Shutdown, which would otherwise race the
// now-closed queue channel.
type state int32

const (
	stateNew state = iota
	stateRunning
	stateDraining
	stateStopped
)

// rootLoggerName is the routing table's catch-all entry.
const rootLoggerName = "root"

// dropKey identifies one (logger, reason) drop counter.
type dropKey struct {
	logger string
	reason string
}

// Manager is the bounded-queue manager: it owns the routing table, the
// sink registry, the bounded record queue, and the single background
// worker.
type Manager struct {
	cfg Config

	mu     sync.RWMutex
	routes map[string][]handler.Handler
	sinks  map[string]*sink.Sink

	queue chan *core.Record

	state        atomic.Int32
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	forceStopCh  chan struct{}
	wg           sync.WaitGroup

	inFlight atomic.Int32

	dropMu     sync.Mutex
	dropCounts map[dropKey]uint64

	errMu  sync.Mutex
	errOut io.Writer

	metrics *metrics

	// testGate, when non-nil, blocks the worker before it pulls the
	// next record — a test-only hook for backpressure scenarios that
	// need a guaranteed-full queue.
	testGate atomic.Pointer[chan struct{}]
}

// New creates a Manager. reg, if non-nil, is the Prometheus registerer
// the queue's counters are registered against; pass nil to skip metrics
// registration entirely (e.g. when a test creates many Managers and
// does not want to manage a registry per test).
func New(cfg Config, reg prometheus.Registerer) *Manager {
	m := &Manager{
		cfg:         cfg,
		routes:      make(map[string][]handler.Handler),
		sinks:       make(map[string]*sink.Sink),
		queue:       make(chan *core.Record, cfg.maxQueueSize()),
		shutdownCh:  make(chan struct{}),
		forceStopCh: make(chan struct{}),
		dropCounts:  make(map[dropKey]uint64),
		errOut:      os.Stderr,
	}
	if reg != nil {
		m.metrics = newMetrics(reg)
	}
	return m
}

// Register installs or replaces the routing entry for loggerName. If a
// sink is already attached under that name, it is applied to every new
// handler that implements handler.Sinkable.
func (m *Manager) Register(loggerName string, handlers []handler.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]handler.Handler, len(handlers))
	copy(cp, handlers)
	m.routes[loggerName] = cp

	if s, ok := m.sinks[loggerName]; ok {
		attachSink(cp, s)
	}
}

// AddSink attaches s to every handler currently routed by loggerName.
// Attachment is idempotent.
func (m *Manager) AddSink(loggerName string, s *sink.Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks[loggerName] = s
	attachSink(m.routes[loggerName], s)
}

// RemoveSink detaches any sink attached under loggerName, restoring
// every handler it was attached to back to its pre-attachment state.
func (m *Manager) RemoveSink(loggerName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sinks, loggerName)
	for _, h := range m.routes[loggerName] {
		if sk, ok := h.(handler.Sinkable); ok {
			sk.ClearSink()
		}
	}
}

func attachSink(handlers []handler.Handler, s *sink.Sink) {
	for _, h := range handlers {
		if sk, ok := h.(handler.Sinkable); ok {
			sk.SetSink(s)
		}
	}
}

// resolve implements the hierarchical logger-name fallback: exact
// match, then each dot-separated parent in turn, then "root". Returns a
// snapshot copy safe to use without holding any lock.
func (m *Manager) resolve(loggerName string) []handler.Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := loggerName
	for {
		if hs, ok := m.routes[name]; ok {
			out := make([]handler.Handler, len(hs))
			copy(out, hs)
			return out
		}
		idx := strings.LastIndex(name, ".")
		if idx < 0 {
			break
		}
		name = name[:idx]
	}
	if hs, ok := m.routes[rootLoggerName]; ok {
		out := make([]handler.Handler, len(hs))
		copy(out, hs)
		return out
	}
	return nil
}

// PushSync runs the sync path: resolve handlers for rec's logger name
// and call EmitSync on each, isolating failures per handler.
func (m *Manager) PushSync(rec *core.Record) error {
	if state(m.state.Load()) == stateStopped {
		return errs.NewDispatchError("queue.Manager", "manager is stopped", nil)
	}

	handlers := m.resolve(rec.LoggerName())
	if len(handlers) == 0 {
		m.recordDrop(rec.LoggerName(), "no-handlers")
		return nil
	}

	outcomes := make([]errs.HandlerOutcome, 0, len(handlers))
	anyErr := false
	delivered := false
	for _, h := range handlers {
		if err := h.EmitSync(rec); err != nil {
			anyErr = true
			outcomes = append(outcomes, errs.HandlerOutcome{HandlerID: h.ID(), Err: err})
			continue
		}
		delivered = true
	}
	if delivered && m.metrics != nil {
		m.metrics.processed.WithLabelValues(rec.LoggerName()).Inc()
	}
	if anyErr {
		return errs.NewCompositeDispatchError("queue.Manager", "one or more handlers failed during sync dispatch", outcomes)
	}
	return nil
}

// Enqueue runs the async path, applying the configured backpressure
// policy when the bounded queue is full.
func (m *Manager) Enqueue(rec *core.Record) error {
	if state(m.state.Load()) != stateRunning {
		return errs.NewDispatchError("queue.Manager", "queue is closed", nil)
	}

	switch m.cfg.BackpressurePolicy {
	case Drop:
		select {
		case m.queue <- rec:
			return nil
		default:
			m.recordDrop(rec.LoggerName(), "queue-full")
			return nil
		}

	case DropOldest:
		select {
		case m.queue <- rec:
			return nil
		default:
		}
		select {
		case old := <-m.queue:
			m.recordDrop(old.LoggerName(), "queue-full")
		default:
		}
		select {
		case m.queue <- rec:
		default:
			// A concurrent producer refilled the slot before this send;
			// rec itself is lost too, so it gets its own drop count.
			m.recordDrop(rec.LoggerName(), "queue-full")
		}
		return nil

	default: // Block
		select {
		case m.queue <- rec:
			return nil
		default:
		}
		select {
		case m.queue <- rec:
			return nil
		case <-m.shutdownCh:
			return errs.NewDispatchError("queue.Manager", "queue is closed", nil)
		}
	}
}

// recordDrop increments the (logger, reason) drop counter.
func (m *Manager) recordDrop(loggerName, reason string) {
	m.dropMu.Lock()
	m.dropCounts[dropKey{loggerName, reason}]++
	m.dropMu.Unlock()
	if m.metrics != nil {
		m.metrics.drops.WithLabelValues(loggerName, reason).Inc()
	}
}

// DropCount returns the number of records dropped for (loggerName,
// reason) so far. Exposed for tests asserting backpressure behavior.
func (m *Manager) DropCount(loggerName, reason string) uint64 {
	m.dropMu.Lock()
	defer m.dropMu.Unlock()
	return m.dropCounts[dropKey{loggerName, reason}]
}

// Start launches the background worker. Idempotent: only the first
// call has an effect.
func (m *Manager) Start() {
	if !m.state.CompareAndSwap(int32(stateNew), int32(stateRunning)) {
		return
	}
	m.wg.Add(1)
	go m.runWorker()
}

func (m *Manager) runWorker() {
	defer m.wg.Done()

	for {
		if gate := m.testGate.Load(); gate != nil {
			<-*gate
		}

		select {
		case rec := <-m.queue:
			m.dispatchAsync(rec)
		case <-m.shutdownCh:
			m.drainRemaining()
			return
		}
	}
}

// drainRemaining consumes whatever is already buffered in the queue
// without blocking, honoring forceStopCh if Shutdown's drain deadline
// fires mid-drain.
func (m *Manager) drainRemaining() {
	for {
		select {
		case rec := <-m.queue:
			m.dispatchAsync(rec)
		case <-m.forceStopCh:
			return
		default:
			return
		}
	}
}

// dispatchAsync is the worker loop's per-record step: resolve, fan out to EmitAsync, isolate and report failures.
func (m *Manager) dispatchAsync(rec *core.Record) {
	m.inFlight.Add(1)
	defer m.inFlight.Add(-1)

	handlers := m.resolve(rec.LoggerName())
	if len(handlers) == 0 {
		m.recordDrop(rec.LoggerName(), "no-handlers")
		return
	}

	ctx := context.Background()
	delivered := false
	for _, h := range handlers {
		if err := h.EmitAsync(ctx, rec); err != nil {
			m.reportAsyncError(h.ID(), err)
			continue
		}
		delivered = true
	}
	if delivered && m.metrics != nil {
		m.metrics.processed.WithLabelValues(rec.LoggerName()).Inc()
	}
}

// reportAsyncError writes a failed async emission to the fallback
// error channel.
func (m *Manager) reportAsyncError(handlerID string, err error) {
	code := "UNKNOWN"
	if e, ok := err.(*errs.Error); ok {
		code = e.Code()
	}

	m.errMu.Lock()
	fmt.Fprintf(m.errOut, "[ko-log:error] %s handler=%s: %v\n", code, handlerID, err)
	m.errMu.Unlock()

	if m.metrics != nil {
		m.metrics.handlerErrors.WithLabelValues(handlerID).Inc()
	}
}

// SetErrorOutput redirects the fallback error channel. Defaults to
// os.Stderr; tests substitute a buffer to assert on its contents.
func (m *Manager) SetErrorOutput(w io.Writer) {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	m.errOut = w
}

// Shutdown transitions the manager to draining, stops accepting new
// enqueues, waits for the worker to drain the queue (bounded by
// Config.DrainTimeout), then closes every registered handler.
// Safe to call more than once; only the first call drains and closes.
func (m *Manager) Shutdown() error {
	if !m.state.CompareAndSwap(int32(stateRunning), int32(stateDraining)) {
		// Either never started or already shutting down/stopped.
		if !m.state.CompareAndSwap(int32(stateNew), int32(stateStopped)) {
			return nil
		}
		return m.closeAllHandlers()
	}

	m.shutdownOnce.Do(func() { close(m.shutdownCh) })

	drained := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(m.cfg.drainTimeout()):
		close(m.forceStopCh)
		<-drained
	}

	m.state.Store(int32(stateStopped))
	return m.closeAllHandlers()
}

func (m *Manager) closeAllHandlers() error {
	m.mu.RLock()
	seen := make(map[handler.Handler]struct{})
	var all []handler.Handler
	for _, hs := range m.routes {
		for _, h := range hs {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			all = append(all, h)
		}
	}
	m.mu.RUnlock()

	outcomes := make([]errs.HandlerOutcome, 0, len(all))
	anyErr := false
	for _, h := range all {
		if err := h.Close(); err != nil {
			anyErr = true
			outcomes = append(outcomes, errs.HandlerOutcome{HandlerID: h.ID(), Err: err})
		}
	}
	if anyErr {
		return errs.NewCompositeShutdownError("queue.Manager", "one or more handlers failed to close", outcomes)
	}
	return nil
}

// Flush blocks until the queue is empty and no record is mid-dispatch,
// or ctx is done, whichever happens first. Gives callers a
// synchronization point without fully shutting the manager down.
func (m *Manager) Flush(ctx context.Context) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		if len(m.queue) == 0 && m.inFlight.Load() == 0 {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return errs.NewDispatchError("queue.Manager", "flush deadline exceeded", ctx.Err())
		}
	}
}

// pauseForTest and resumeForTest gate the worker loop so a test can
// force the queue to stay full while it asserts on backpressure
// behavior. Unexported: pausing the worker is never a production
// concern.
func (m *Manager) pauseForTest() {
	gate := make(chan struct{})
	m.testGate.Store(&gate)
}

func (m *Manager) resumeForTest() {
	if gate := m.testGate.Swap(nil); gate != nil {
		close(*gate)
	}
}
