package pipeline

import (
	"slices"

	"github.com/matzehuels/chartpipe/pkg/errors"
)

// Kind identifies one of the four stage categories. Kinds always execute in
// the order they are declared here.
type Kind int

// Stage kinds in fixed execution order.
const (
	KindPreprocess Kind = iota
	KindProcess
	KindVisual
	KindLayout
)

// Kinds lists all stage kinds in execution order.
var Kinds = [...]Kind{KindPreprocess, KindProcess, KindVisual, KindLayout}

// String returns the kind name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindPreprocess:
		return "preprocess"
	case KindProcess:
		return "process"
	case KindVisual:
		return "visual"
	case KindLayout:
		return "layout"
	default:
		return "unknown"
	}
}

// Stage priorities. Within a kind, stages execute in ascending priority;
// ties run in registration order.
const (
	// PriorityPreprocess is the default slot for preprocessors.
	PriorityPreprocess = 1000

	// PriorityProcessFilter is the slot for data-filtering processors.
	PriorityProcessFilter = 1000

	// PriorityProcessStatistic is the slot for statistical processors such
	// as the downsampler. It runs after filters so statistics observe the
	// filtered data.
	PriorityProcessStatistic = 5000

	// PriorityVisualGlobal is the slot for chart-wide visual mapping.
	PriorityVisualGlobal = 2000

	// PriorityVisualChart is the slot for per-chart-type visual stages.
	PriorityVisualChart = 3000

	// PriorityLayout is the default slot for layout stages.
	PriorityLayout = 1000
)

// StageFn is a registered transformation applied to one series during a
// render pass. Chunked invocations receive successive sub-ranges in
// sc.Chunk; whole-dataset invocations receive the full range.
type StageFn func(sc *StageContext) error

// Registration is one entry in the stage registry.
type Registration struct {
	Kind     Kind
	Priority int
	Name     string
	Fn       StageFn

	// Types restricts the stage to specific series types. Empty means the
	// stage applies to every series.
	Types []string

	// Whole marks a stage that must always see the full dataset, even when
	// the series executes progressively. Declared filtering/sampling stages
	// set this, since they are the only stages allowed to change item count.
	Whole bool

	seq int // registration order, breaks priority ties
}

// AppliesTo reports whether the stage runs for the given series type.
func (r Registration) AppliesTo(seriesType string) bool {
	if len(r.Types) == 0 {
		return true
	}
	return slices.Contains(r.Types, seriesType)
}

// StageOption configures a registration.
type StageOption func(*Registration)

// ForTypes restricts a stage to the named series types.
func ForTypes(types ...string) StageOption {
	return func(r *Registration) { r.Types = append(r.Types, types...) }
}

// WholeSeries marks a stage as never chunked (see Registration.Whole).
func WholeSeries() StageOption {
	return func(r *Registration) { r.Whole = true }
}

// Registry is the priority-ordered stage table. It is append-only: entries
// are added during module initialization, never removed or reordered, and
// the table is read-only once rendering begins. Render determinism depends
// on this.
type Registry struct {
	entries map[Kind][]Registration
	nextSeq int
}

// NewRegistry creates an empty registry. Tests build isolated registries
// instead of mutating the process-wide default.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Kind][]Registration)}
}

// Register appends a stage. Re-registering the same (kind, priority) pair
// under the same name fails with DuplicatePriorityError; the same pair from
// a different name is appended after the existing entries.
func (r *Registry) Register(kind Kind, priority int, name string, fn StageFn, opts ...StageOption) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidOption, "stage name cannot be empty")
	}
	if fn == nil {
		return errors.New(errors.ErrCodeInvalidOption, "stage %q has no handler", name)
	}
	for _, e := range r.entries[kind] {
		if e.Priority == priority && e.Name == name {
			return &DuplicatePriorityError{Kind: kind, Priority: priority, Name: name}
		}
	}
	reg := Registration{Kind: kind, Priority: priority, Name: name, Fn: fn, seq: r.nextSeq}
	for _, opt := range opts {
		opt(&reg)
	}
	r.nextSeq++

	// Insert in (priority, seq) order so Stages is a plain slice read.
	idx, _ := slices.BinarySearchFunc(r.entries[kind], reg, func(a, b Registration) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return a.seq - b.seq
	})
	r.entries[kind] = slices.Insert(r.entries[kind], idx, reg)
	return nil
}

// Stages returns the ordered stage sequence for a kind: ascending priority,
// ties in registration order. The returned slice is shared; callers must not
// modify it.
func (r *Registry) Stages(kind Kind) []Registration {
	return r.entries[kind]
}

// Len returns the total number of registered stages.
func (r *Registry) Len() int {
	n := 0
	for _, e := range r.entries {
		n += len(e)
	}
	return n
}

// =============================================================================
// Process-wide default registry and registration API
// =============================================================================

// defaultStageRegistry is populated by chart-type modules at load time,
// before any render pass, and read-only thereafter.
var defaultStageRegistry = NewRegistry()

// Default returns the process-wide stage registry.
func Default() *Registry { return defaultStageRegistry }

// RegisterPreprocessor registers a preprocessor at the default slot.
func RegisterPreprocessor(name string, fn StageFn, opts ...StageOption) error {
	return defaultStageRegistry.Register(KindPreprocess, PriorityPreprocess, name, fn, opts...)
}

// RegisterProcessor registers a data processor at an explicit priority.
func RegisterProcessor(priority int, name string, fn StageFn, opts ...StageOption) error {
	return defaultStageRegistry.Register(KindProcess, priority, name, fn, opts...)
}

// RegisterVisual registers a visual-mapping stage at the chart slot.
func RegisterVisual(name string, fn StageFn, opts ...StageOption) error {
	return defaultStageRegistry.Register(KindVisual, PriorityVisualChart, name, fn, opts...)
}

// RegisterLayout registers a layout stage at the default slot.
func RegisterLayout(name string, fn StageFn, opts ...StageOption) error {
	return defaultStageRegistry.Register(KindLayout, PriorityLayout, name, fn, opts...)
}

// mustRegister is for init-time registration, where a conflict is a
// programmer error.
func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// MustRegisterPreprocessor is RegisterPreprocessor for init-time use.
func MustRegisterPreprocessor(name string, fn StageFn, opts ...StageOption) {
	mustRegister(RegisterPreprocessor(name, fn, opts...))
}

// MustRegisterProcessor is RegisterProcessor for init-time use.
func MustRegisterProcessor(priority int, name string, fn StageFn, opts ...StageOption) {
	mustRegister(RegisterProcessor(priority, name, fn, opts...))
}

// MustRegisterVisual is RegisterVisual for init-time use.
func MustRegisterVisual(name string, fn StageFn, opts ...StageOption) {
	mustRegister(RegisterVisual(name, fn, opts...))
}

// MustRegisterLayout is RegisterLayout for init-time use.
func MustRegisterLayout(name string, fn StageFn, opts ...StageOption) {
	mustRegister(RegisterLayout(name, fn, opts...))
}
