// Package check defines the core interfaces and types for the probe.
//
// A Check represents a single monitoring probe executed once per
// invocation. The query check in the query subpackage is the only
// implementation shipped today; the interface keeps the reporter and the
// command line independent of how a result is obtained.
//
// Results are captured in a Result struct, which carries the terminal
// Status, the ordered metric emissions, and an optional error.
//
// The Registry holds named query presets (built-in default queries and
// the metric names their columns map to), selected from configuration.
package check

import (
	"context"
)

// Check is the interface that all probe types must implement.
type Check interface {
	// Type returns the registered name of this check type (e.g. "query").
	Type() string

	// Describe returns the metadata of this check instance.
	Describe() Descriptor

	// Run executes the check and returns a Result.
	// The provided context bounds the blocking database call.
	Run(ctx context.Context) Result
}
