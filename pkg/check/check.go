// Package check defines the interface and result types for liveness probes.
//
// A Check represents a single probe executed against one target. The ping
// subpackage provides the implementation that wraps the system ping
// command; tests substitute their own.
package check

import (
	"context"
)

// Check is the interface that all liveness probes must implement.
type Check interface {
	// Type returns the name of this check type (e.g. "ping").
	Type() string

	// Run executes the check and returns a Result.
	// The provided context can be used for cancellation.
	Run(ctx context.Context) Result
}
