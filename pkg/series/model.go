// Package series provides declarative per-series models and the series-type
// registry that chart types extend.
//
// A [Model] holds the merged configuration for one series of a chart: its
// type, coordinate-system dependencies, thresholds for large/progressive
// execution, and the full merged option map. Models are built once per
// option-update cycle by [TypeRegistry.NewModel], are immutable during a
// render pass, and are superseded (not mutated) on the next update.
//
// # Extension
//
// A concrete chart type registers a [Spec] with a defaultOption fragment and
// optional [Capabilities] overrides. Derived types name a base type in
// Extends: child keys override same-named parent keys, unspecified keys
// inherit, and user-set values always win over every default.
//
// # Progressive behavior
//
// The generic policy (large flag + effective threshold) lives in
// [BaseCapabilities]; a chart type may override it, for example to refuse
// chunking entirely unless its large flag is set.
package series

import "fmt"

// Threshold and chunk-size defaults. These apply when a series does not set
// the corresponding option explicitly.
const (
	// DefaultLargeThreshold is the item count above which a series with the
	// large flag switches to simplified drawing.
	DefaultLargeThreshold = 400

	// DefaultProgressiveThreshold is the item count above which an eligible
	// series renders progressively.
	DefaultProgressiveThreshold = 3000

	// DefaultProgressiveStep is the chunk size used when a series enables
	// progressive execution without an explicit item count. 400 items keeps
	// one chunk comfortably inside an interactive frame budget for typical
	// per-item stage work.
	DefaultProgressiveStep = 400
)

// Sampling method names accepted by the downsampling processor.
const (
	SamplingNone    = "none"
	SamplingAverage = "average"
	SamplingMax     = "max"
	SamplingMin     = "min"
	SamplingSum     = "sum"
)

// validSampling is the set of accepted sampling methods.
var validSampling = map[string]bool{
	"":              true, // unset: no sampling
	SamplingNone:    true,
	SamplingAverage: true,
	SamplingMax:     true,
	SamplingMin:     true,
	SamplingSum:     true,
}

// Model is the declarative configuration for one series.
// It is immutable for the duration of a render pass.
type Model struct {
	// Type is the chart kind identifier (e.g. "bar", "candlestick").
	Type string

	// Name is the user-visible series name, if any.
	Name string

	// Dependencies lists the coordinate-system kinds the series requires.
	Dependencies []string

	// Options is the fully merged option map (defaults under user values).
	Options Options

	// Large permits progressive/chunked execution for oversized datasets.
	Large bool

	// LargeThreshold is the item count above which large-mode drawing kicks in.
	LargeThreshold int

	// Progressive is the chunking setting (unset, off, or chunk size).
	Progressive Progressive

	// ProgressiveThreshold is the item count above which chunked execution
	// is used instead of whole-dataset execution.
	ProgressiveThreshold int

	// Sampling names the aggregation method for the downsampling processor
	// ("" or "none" disables it).
	Sampling string

	// SampleRate is the number of contiguous input items aggregated into one
	// output item.
	SampleRate int

	// SampleThreshold is the minimum item count before sampling engages.
	// Zero means "engage whenever the dataset holds more than one full run".
	SampleThreshold int

	caps Capabilities
}

// Capabilities returns the behavior table for this series' type.
func (m *Model) Capabilities() Capabilities { return m.caps }

// =============================================================================
// Capabilities - per-type override points
// =============================================================================

// Capabilities is the small set of overridable behaviors the pipeline calls
// through instead of hard-coding the generic threshold policy. Chart types
// supply an implementation on their [Spec] to special-case it.
type Capabilities interface {
	// ProgressiveStep returns the chunk size for progressive execution.
	// A value <= 0 disables progressive execution for the series.
	ProgressiveStep(m *Model) int

	// ProgressiveThreshold returns the effective item-count threshold above
	// which progressive execution activates.
	ProgressiveThreshold(m *Model) int
}

// BaseCapabilities implements the generic progressive policy:
// chunking requires the large flag, an explicit "progressive = false"
// disables it, and the effective threshold is the larger of the large and
// progressive thresholds.
type BaseCapabilities struct{}

// ProgressiveStep implements Capabilities.
func (BaseCapabilities) ProgressiveStep(m *Model) int {
	if !m.Large {
		return 0
	}
	if m.Progressive.IsSet() && !m.Progressive.Enabled() {
		return 0
	}
	if s := m.Progressive.Step(); s > 0 {
		return s
	}
	return DefaultProgressiveStep
}

// ProgressiveThreshold implements Capabilities.
func (BaseCapabilities) ProgressiveThreshold(m *Model) int {
	return max(m.LargeThreshold, m.ProgressiveThreshold)
}

// =============================================================================
// InvalidThresholdConfigError
// =============================================================================

// InvalidThresholdConfigError reports a non-positive or non-numeric
// threshold option. It is a programmer error and fails series setup
// immediately.
type InvalidThresholdConfigError struct {
	Option string // option key, e.g. "largeThreshold"
	Value  any    // offending value
}

// Error implements the error interface.
func (e *InvalidThresholdConfigError) Error() string {
	return fmt.Sprintf("invalid threshold config: %s = %v (must be a positive integer)", e.Option, e.Value)
}
