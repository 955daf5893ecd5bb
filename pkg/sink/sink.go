// Package sink writes batches of points to a time-series database.
package sink

import (
	"context"
	"fmt"

	"github.com/kylerisse/hostalive/pkg/point"
)

// Sink accepts one batch of points per cycle.
type Sink interface {
	// Write attempts a single batched write. An empty batch is a no-op.
	Write(ctx context.Context, points []point.Point) WriteResult
}

// WriteResult reports the outcome of one batched write.
type WriteResult struct {
	// Written is the number of points acknowledged by the database.
	Written int

	// Err is non-nil when the batch was rejected or could not be sent.
	// The whole batch is lost in that case.
	Err error
}

// OK reports whether the write succeeded.
func (r WriteResult) OK() bool {
	return r.Err == nil
}

// WriteError is returned when a batch could not be written.
type WriteError struct {
	Points int
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("unable to write %d point(s): %v", e.Points, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
