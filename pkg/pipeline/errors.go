package pipeline

import (
	"errors"
	"fmt"
)

// ErrPassSuperseded is returned by an in-flight run when a newer render pass
// has taken ownership. The stale run stops at the next chunk boundary and
// writes nothing further.
var ErrPassSuperseded = errors.New("render pass superseded")

// DuplicatePriorityError reports a registration-time conflict: the same
// named stage registered twice at the same (kind, priority) slot. It is a
// programmer error and aborts that registration immediately.
type DuplicatePriorityError struct {
	Kind     Kind
	Priority int
	Name     string
}

// Error implements the error interface.
func (e *DuplicatePriorityError) Error() string {
	return fmt.Sprintf("stage %q already registered at %s priority %d", e.Name, e.Kind, e.Priority)
}

// StageExecutionError reports a stage failure during a render pass. It is
// caught at the per-series boundary: the failing series is skipped for the
// rest of the pass while other series render normally. Failing stages are
// never retried; identical input fails identically.
type StageExecutionError struct {
	SeriesIndex int
	Kind        Kind
	Stage       string
	Cause       error
}

// Error implements the error interface.
func (e *StageExecutionError) Error() string {
	return fmt.Sprintf("series %d: %s stage %q failed: %v", e.SeriesIndex, e.Kind, e.Stage, e.Cause)
}

// Unwrap returns the original stage error.
func (e *StageExecutionError) Unwrap() error { return e.Cause }
