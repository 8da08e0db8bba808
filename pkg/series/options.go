package series

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Options is a merged option map for one series: the type's defaultOption
// fragments overlaid with user-supplied values. Values set by the user are
// never overridden by defaults.
type Options map[string]any

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	maps.Copy(out, o)
	return out
}

// Bool reads a boolean option. Missing or non-boolean values return def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// String reads a string option. Missing or non-string values return def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Float reads a numeric option. Missing or non-numeric values return def.
func (o Options) Float(key string, def float64) float64 {
	if v, ok := o[key]; ok {
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return def
}

// Int reads an integer option. Missing or non-numeric values return def.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		if n, ok := toInt(v); ok {
			return n
		}
	}
	return def
}

// toInt coerces the numeric types produced by TOML (int64), JSON (float64),
// and Go literals into an int. Fractional floats do not coerce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
		return 0, false
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// =============================================================================
// Progressive - tri-state chunking setting
// =============================================================================

// Progressive records a series' progressive-rendering setting. It is a
// tri-state: unset (type default applies), disabled, or enabled with an
// optional explicit chunk size. In config files the "progressive" key
// accepts either a boolean or a positive item count.
type Progressive struct {
	set     bool
	enabled bool
	step    int
}

// ProgressiveOn enables progressive execution with the default chunk size.
func ProgressiveOn() Progressive { return Progressive{set: true, enabled: true} }

// ProgressiveOff disables progressive execution unconditionally.
func ProgressiveOff() Progressive { return Progressive{set: true} }

// ProgressiveStep enables progressive execution with an explicit chunk size.
func ProgressiveStep(n int) Progressive {
	return Progressive{set: true, enabled: n > 0, step: n}
}

// IsSet reports whether the series configured the setting explicitly.
func (p Progressive) IsSet() bool { return p.set }

// Enabled reports whether progressive execution is allowed.
func (p Progressive) Enabled() bool { return p.enabled }

// Step returns the explicit chunk size, or 0 when none was given.
func (p Progressive) Step() int { return p.step }

// UnmarshalTOML accepts `progressive = true|false` or `progressive = 400`.
func (p *Progressive) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case bool:
		*p = Progressive{set: true, enabled: t}
	case int64:
		*p = ProgressiveStep(int(t))
	default:
		return fmt.Errorf("progressive must be a boolean or item count, got %T", v)
	}
	return nil
}

// UnmarshalJSON accepts the same shapes as UnmarshalTOML.
func (p *Progressive) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*p = Progressive{set: true, enabled: t}
	case float64:
		if t != float64(int(t)) || t < 0 {
			return fmt.Errorf("progressive item count must be a non-negative integer, got %v", t)
		}
		*p = ProgressiveStep(int(t))
	default:
		return fmt.Errorf("progressive must be a boolean or item count, got %T", v)
	}
	return nil
}

// progressiveFromOption coerces the merged "progressive" option value.
func progressiveFromOption(v any) (Progressive, error) {
	switch t := v.(type) {
	case Progressive:
		return t, nil
	case bool:
		return Progressive{set: true, enabled: t}, nil
	default:
		if n, ok := toInt(t); ok {
			if n < 0 {
				return Progressive{}, fmt.Errorf("progressive item count must be non-negative, got %d", n)
			}
			return ProgressiveStep(n), nil
		}
		return Progressive{}, fmt.Errorf("progressive must be a boolean or item count, got %T", v)
	}
}
