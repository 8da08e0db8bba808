package series

import (
	"maps"

	"github.com/matzehuels/chartpipe/pkg/errors"
)

// Spec declares a series type: its defaultOption fragment, the base type it
// extends (if any), its coordinate-system dependencies, and optional
// capability overrides.
type Spec struct {
	// Type is the chart kind identifier this spec registers.
	Type string

	// Extends names the base type whose defaultOption fragment this type
	// inherits. The base must be registered first.
	Extends string

	// Dependencies lists required coordinate-system kinds (e.g. "cartesian2d").
	// A series option "coordinateSystem" overrides this per series.
	Dependencies []string

	// DefaultOption is merged over the base type's fragment: child keys
	// override same-named parent keys, unspecified keys inherit.
	DefaultOption Options

	// Capabilities overrides the generic progressive policy for this type.
	// Nil inherits the nearest ancestor's capabilities, falling back to
	// BaseCapabilities.
	Capabilities Capabilities
}

// TypeRegistry maps series-type names to their specs. Like the stage
// registry, it is written only during module initialization and read-only
// afterwards, so lookups take no lock.
type TypeRegistry struct {
	specs map[string]Spec
}

// NewTypeRegistry creates an empty registry. Tests build isolated registries
// instead of sharing the process-wide default.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{specs: make(map[string]Spec)}
}

// Register adds a series-type spec. Registering the same type twice or
// extending an unregistered base fails fast.
func (r *TypeRegistry) Register(spec Spec) error {
	if err := errors.ValidateTypeName(spec.Type); err != nil {
		return err
	}
	if _, ok := r.specs[spec.Type]; ok {
		return errors.New(errors.ErrCodeDuplicateType, "series type %q already registered", spec.Type)
	}
	if spec.Extends != "" {
		if _, ok := r.specs[spec.Extends]; !ok {
			return errors.New(errors.ErrCodeTypeNotFound, "series type %q extends unregistered type %q", spec.Type, spec.Extends)
		}
	}
	r.specs[spec.Type] = spec
	return nil
}

// Spec returns the registered spec for a type.
func (r *TypeRegistry) Spec(typ string) (Spec, bool) {
	s, ok := r.specs[typ]
	return s, ok
}

// Types returns the number of registered series types.
func (r *TypeRegistry) Types() int { return len(r.specs) }

// chain returns the spec inheritance chain for typ, base first.
func (r *TypeRegistry) chain(typ string) ([]Spec, error) {
	var rev []Spec
	for cur := typ; cur != ""; {
		spec, ok := r.specs[cur]
		if !ok {
			return nil, errors.New(errors.ErrCodeTypeNotFound, "unknown series type %q", cur)
		}
		rev = append(rev, spec)
		cur = spec.Extends
	}
	// Reverse so the base fragment is applied first and children override.
	chain := make([]Spec, len(rev))
	for i, s := range rev {
		chain[len(rev)-1-i] = s
	}
	return chain, nil
}

// NewModel builds the series model for one series: defaultOption fragments
// merged base-to-derived, user options on top, thresholds validated. The
// returned model is immutable for the pass that consumes it.
func (r *TypeRegistry) NewModel(typ string, user Options) (*Model, error) {
	chain, err := r.chain(typ)
	if err != nil {
		return nil, err
	}

	merged := make(Options)
	for _, spec := range chain {
		maps.Copy(merged, spec.DefaultOption)
	}
	maps.Copy(merged, user) // user-set values always win

	m := &Model{
		Type:    typ,
		Name:    merged.String("name", ""),
		Options: merged,
		Large:   merged.Bool("large", false),
		caps:    BaseCapabilities{},
	}

	// Nearest spec in the chain with explicit capabilities wins.
	for _, spec := range chain {
		if spec.Capabilities != nil {
			m.caps = spec.Capabilities
		}
	}

	// Coordinate-system dependencies: per-series option overrides the type's
	// declaration.
	m.Dependencies = chain[len(chain)-1].Dependencies
	for _, spec := range chain {
		if len(spec.Dependencies) > 0 {
			m.Dependencies = spec.Dependencies
		}
	}
	if cs := merged.String("coordinateSystem", ""); cs != "" {
		m.Dependencies = []string{cs}
	}

	if m.LargeThreshold, err = threshold(merged, "largeThreshold", DefaultLargeThreshold); err != nil {
		return nil, err
	}
	if m.ProgressiveThreshold, err = threshold(merged, "progressiveThreshold", DefaultProgressiveThreshold); err != nil {
		return nil, err
	}

	if v, ok := merged["progressive"]; ok {
		p, err := progressiveFromOption(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "series type %q", typ)
		}
		m.Progressive = p
	}

	m.Sampling = merged.String("sampling", "")
	if !validSampling[m.Sampling] {
		return nil, errors.New(errors.ErrCodeInvalidOption, "unknown sampling method %q", m.Sampling)
	}
	m.SampleRate = merged.Int("samplingRate", 0)
	if m.SampleRate < 0 {
		return nil, errors.New(errors.ErrCodeInvalidOption, "samplingRate must be non-negative, got %d", m.SampleRate)
	}
	m.SampleThreshold = merged.Int("samplingThreshold", 0)

	return m, nil
}

// threshold reads a threshold option, validating that explicit values are
// positive integers.
func threshold(o Options, key string, def int) (int, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	n, numeric := toInt(v)
	if !numeric || n <= 0 {
		return 0, &InvalidThresholdConfigError{Option: key, Value: v}
	}
	return n, nil
}

// =============================================================================
// Process-wide default registry
// =============================================================================

// defaultRegistry is populated by chart-type packages at init time and
// read-only once rendering begins.
var defaultRegistry = NewTypeRegistry()

// Default returns the process-wide type registry.
func Default() *TypeRegistry { return defaultRegistry }

// RegisterType adds a spec to the process-wide registry.
func RegisterType(spec Spec) error { return defaultRegistry.Register(spec) }

// MustRegisterType is RegisterType for init-time use; registration conflicts
// are programmer errors, so it panics on failure.
func MustRegisterType(spec Spec) {
	if err := defaultRegistry.Register(spec); err != nil {
		panic(err)
	}
}

// NewModel builds a model against the process-wide registry.
func NewModel(typ string, user Options) (*Model, error) {
	return defaultRegistry.NewModel(typ, user)
}
