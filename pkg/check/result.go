package check

import (
	"time"

	"github.com/kylerisse/pgmetric/pkg/projection"
)

// Result captures the outcome of a single check execution.
type Result struct {
	// Timestamp is when the check was executed. Metric lines carry it.
	Timestamp time.Time

	// Status is the terminal outcome of the run.
	Status Status

	// Emissions holds the metrics in emission order.
	// It is empty when the run failed or when the query produced nothing
	// to emit (e.g. an empty result in single-row mode).
	Emissions []projection.Emission

	// Err holds the failure behind a non-OK Status.
	Err error
}

// Message returns the human-readable text for a non-OK result.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
