package check

import (
	"time"
)

// Result captures the outcome of a single check execution.
type Result struct {
	// Timestamp is when the check was executed.
	Timestamp time.Time

	// Success indicates whether the target answered.
	Success bool

	// Metrics holds optional named measurements, e.g. {"latency_us": 1234}.
	// A nil map is valid for checks that only report success/failure.
	Metrics map[string]float64

	// Err holds the reason a check did not succeed, if any.
	Err error
}

// Value returns the numeric liveness value recorded for this result:
// 1 when the check succeeded, 0 otherwise.
func (r Result) Value() int {
	if r.Success {
		return 1
	}
	return 0
}
