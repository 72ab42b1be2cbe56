package handler

import "sync/atomic"

// Stats tracks per-handler counters: records that reached a write,
// records dropped by a processor/renderer drop signal, and unexpected
// processor/renderer/IO errors.
type Stats struct {
	processed atomic.Uint64
	dropped   atomic.Uint64
	errors    atomic.Uint64
}

// Snapshot is a point-in-time copy of Stats, safe to read without
// further synchronization.
type Snapshot struct {
	Processed uint64
	Dropped   uint64
	Errors    uint64
}

// IncProcessed, IncDropped and IncErrors update the corresponding
// counter. Exported so handler implementations in other packages
// (filehandler) can share this type.
func (s *Stats) IncProcessed() { s.processed.Add(1) }
func (s *Stats) IncDropped()   { s.dropped.Add(1) }
func (s *Stats) IncErrors()    { s.errors.Add(1) }

// Get returns a snapshot of the current counters.
func (s *Stats) Get() Snapshot {
	return Snapshot{
		Processed: s.processed.Load(),
		Dropped:   s.dropped.Load(),
		Errors:    s.errors.Load(),
	}
}
