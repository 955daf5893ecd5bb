package check

import (
	"sync"
	"time"
)

// Status tracks the latest result of a check execution.
// It is safe for concurrent use: writes go through SetResult and reads
// through Snapshot.
type Status struct {
	mu         sync.RWMutex
	lastResult Result
	lastUpdate int64
}

// NewStatus creates a Status with zero values (not alive, no metrics).
func NewStatus() *Status {
	return &Status{}
}

// SetResult stores the latest check result and stamps the last update
// with the result's timestamp, or the current time if it has none.
func (s *Status) SetResult(result Result) {
	ts := result.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResult = result
	s.lastUpdate = ts.Unix()
}

// Snapshot returns a point-in-time copy of the status fields.
// This is useful for building API responses without holding the lock.
func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StatusSnapshot{
		Alive:      s.lastResult.Success,
		Latency:    latencyOf(s.lastResult),
		LastUpdate: s.lastUpdate,
	}
	if s.lastResult.Err != nil {
		snap.Error = s.lastResult.Err.Error()
	}
	return snap
}

// StatusSnapshot is a point-in-time copy of Status fields.
type StatusSnapshot struct {
	Alive      bool
	Latency    time.Duration
	LastUpdate int64
	Error      string
}

func latencyOf(r Result) time.Duration {
	if !r.Success || r.Metrics == nil {
		return 0
	}
	v, ok := r.Metrics["latency_us"]
	if !ok {
		return 0
	}
	return time.Duration(v) * time.Microsecond
}
