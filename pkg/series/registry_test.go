package series

import (
	"errors"
	"testing"

	cperrors "github.com/matzehuels/chartpipe/pkg/errors"
)

func TestRegisterDuplicateType(t *testing.T) {
	reg := NewTypeRegistry()
	if err := reg.Register(Spec{Type: "bar"}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	err := reg.Register(Spec{Type: "bar"})
	if !cperrors.HasCode(err, cperrors.ErrCodeDuplicateType) {
		t.Errorf("duplicate registration error = %v, want DUPLICATE_TYPE", err)
	}
}

func TestRegisterInvalidTypeName(t *testing.T) {
	reg := NewTypeRegistry()
	for _, name := range []string{"", "Bar", "has space", "double--dash", "-leading"} {
		if err := reg.Register(Spec{Type: name}); err == nil {
			t.Errorf("Register(%q) should fail", name)
		}
	}
}

func TestRegisterUnknownBase(t *testing.T) {
	reg := NewTypeRegistry()
	err := reg.Register(Spec{Type: "fancy-bar", Extends: "bar"})
	if !cperrors.HasCode(err, cperrors.ErrCodeTypeNotFound) {
		t.Errorf("extending unregistered base: error = %v, want TYPE_NOT_FOUND", err)
	}
}

func TestNewModelDefaultOptionInheritance(t *testing.T) {
	reg := NewTypeRegistry()
	if err := reg.Register(Spec{
		Type: "bar",
		DefaultOption: Options{
			"clip":           true,
			"showBackground": false,
			"barWidthRatio":  0.7,
		},
	}); err != nil {
		t.Fatalf("Register(bar) failed: %v", err)
	}
	if err := reg.Register(Spec{
		Type:    "picture-bar",
		Extends: "bar",
		DefaultOption: Options{
			"clip":   false, // child overrides parent
			"symbol": "rect",
		},
	}); err != nil {
		t.Fatalf("Register(picture-bar) failed: %v", err)
	}

	m, err := reg.NewModel("picture-bar", Options{"showBackground": true})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}

	if m.Options.Bool("clip", true) {
		t.Error("child default should override parent: clip = true, want false")
	}
	if !m.Options.Bool("showBackground", false) {
		t.Error("user value should win over defaults: showBackground = false, want true")
	}
	if got := m.Options.Float("barWidthRatio", 0); got != 0.7 {
		t.Errorf("inherited barWidthRatio = %v, want 0.7", got)
	}
	if got := m.Options.String("symbol", ""); got != "rect" {
		t.Errorf("child default symbol = %q, want rect", got)
	}
}

func TestNewModelUserValuesAlwaysWin(t *testing.T) {
	reg := NewTypeRegistry()
	_ = reg.Register(Spec{Type: "line", DefaultOption: Options{"lineWidth": 2.0}})

	m, err := reg.NewModel("line", Options{"lineWidth": 5.0})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	if got := m.Options.Float("lineWidth", 0); got != 5.0 {
		t.Errorf("lineWidth = %v, want user-set 5.0", got)
	}
}

func TestNewModelUnknownType(t *testing.T) {
	reg := NewTypeRegistry()
	_, err := reg.NewModel("nope", nil)
	if !cperrors.HasCode(err, cperrors.ErrCodeTypeNotFound) {
		t.Errorf("error = %v, want TYPE_NOT_FOUND", err)
	}
}

func TestNewModelThresholdValidation(t *testing.T) {
	reg := NewTypeRegistry()
	_ = reg.Register(Spec{Type: "scatter"})

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid thresholds", Options{"largeThreshold": 500, "progressiveThreshold": 4000}, false},
		{"zero threshold", Options{"largeThreshold": 0}, true},
		{"negative threshold", Options{"progressiveThreshold": -5}, true},
		{"non-numeric threshold", Options{"largeThreshold": "many"}, true},
		{"fractional threshold", Options{"largeThreshold": 10.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := reg.NewModel("scatter", tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewModel() should fail")
				}
				var terr *InvalidThresholdConfigError
				if !errors.As(err, &terr) {
					t.Errorf("error = %T, want *InvalidThresholdConfigError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewModel() failed: %v", err)
			}
			if m.LargeThreshold != 500 || m.ProgressiveThreshold != 4000 {
				t.Errorf("thresholds = %d/%d, want 500/4000", m.LargeThreshold, m.ProgressiveThreshold)
			}
		})
	}
}

func TestNewModelThresholdDefaults(t *testing.T) {
	reg := NewTypeRegistry()
	_ = reg.Register(Spec{Type: "scatter"})

	m, err := reg.NewModel("scatter", nil)
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	if m.LargeThreshold != DefaultLargeThreshold {
		t.Errorf("LargeThreshold = %d, want default %d", m.LargeThreshold, DefaultLargeThreshold)
	}
	if m.ProgressiveThreshold != DefaultProgressiveThreshold {
		t.Errorf("ProgressiveThreshold = %d, want default %d", m.ProgressiveThreshold, DefaultProgressiveThreshold)
	}
}

func TestNewModelProgressiveOption(t *testing.T) {
	reg := NewTypeRegistry()
	_ = reg.Register(Spec{Type: "scatter"})

	m, err := reg.NewModel("scatter", Options{"progressive": false})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	if !m.Progressive.IsSet() || m.Progressive.Enabled() {
		t.Error("progressive = false should be set and disabled")
	}

	m, err = reg.NewModel("scatter", Options{"progressive": 250})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	if !m.Progressive.Enabled() || m.Progressive.Step() != 250 {
		t.Errorf("progressive = 250: enabled=%v step=%d", m.Progressive.Enabled(), m.Progressive.Step())
	}

	if _, err = reg.NewModel("scatter", Options{"progressive": "fast"}); err == nil {
		t.Error("non-numeric progressive value should fail")
	}
}

func TestNewModelCoordinateSystemOverride(t *testing.T) {
	reg := NewTypeRegistry()
	_ = reg.Register(Spec{Type: "line", Dependencies: []string{"cartesian2d"}})

	m, err := reg.NewModel("line", nil)
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	if len(m.Dependencies) != 1 || m.Dependencies[0] != "cartesian2d" {
		t.Fatalf("Dependencies = %v, want [cartesian2d]", m.Dependencies)
	}

	m, err = reg.NewModel("line", Options{"coordinateSystem": "polar"})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	if len(m.Dependencies) != 1 || m.Dependencies[0] != "polar" {
		t.Errorf("Dependencies = %v, want option override [polar]", m.Dependencies)
	}
}

type fixedStepCaps struct {
	BaseCapabilities
	step int
}

func (c fixedStepCaps) ProgressiveStep(*Model) int { return c.step }

func TestNewModelCapabilitiesNearestWins(t *testing.T) {
	reg := NewTypeRegistry()
	_ = reg.Register(Spec{Type: "base", Capabilities: fixedStepCaps{step: 100}})
	_ = reg.Register(Spec{Type: "child", Extends: "base"})
	_ = reg.Register(Spec{Type: "grandchild", Extends: "child", Capabilities: fixedStepCaps{step: 50}})

	m, err := reg.NewModel("child", nil)
	if err != nil {
		t.Fatalf("NewModel(child) failed: %v", err)
	}
	if got := m.Capabilities().ProgressiveStep(m); got != 100 {
		t.Errorf("child inherits base capabilities: step = %d, want 100", got)
	}

	m, err = reg.NewModel("grandchild", nil)
	if err != nil {
		t.Fatalf("NewModel(grandchild) failed: %v", err)
	}
	if got := m.Capabilities().ProgressiveStep(m); got != 50 {
		t.Errorf("grandchild overrides: step = %d, want 50", got)
	}
}

func TestNewModelSamplingValidation(t *testing.T) {
	reg := NewTypeRegistry()
	_ = reg.Register(Spec{Type: "line"})

	if _, err := reg.NewModel("line", Options{"sampling": "median"}); err == nil {
		t.Error("unknown sampling method should fail")
	}
	if _, err := reg.NewModel("line", Options{"samplingRate": -2}); err == nil {
		t.Error("negative samplingRate should fail")
	}

	m, err := reg.NewModel("line", Options{"sampling": "average", "samplingRate": 4, "samplingThreshold": 100})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	if m.Sampling != SamplingAverage || m.SampleRate != 4 || m.SampleThreshold != 100 {
		t.Errorf("sampling fields = %q/%d/%d, want average/4/100", m.Sampling, m.SampleRate, m.SampleThreshold)
	}
}

func TestBaseCapabilities(t *testing.T) {
	tests := []struct {
		name     string
		model    Model
		wantStep int
	}{
		{"not large", Model{Large: false}, 0},
		{"large, unset progressive", Model{Large: true}, DefaultProgressiveStep},
		{"large, explicit off", Model{Large: true, Progressive: ProgressiveOff()}, 0},
		{"large, explicit step", Model{Large: true, Progressive: ProgressiveStep(128)}, 128},
		{"large, explicit on", Model{Large: true, Progressive: ProgressiveOn()}, DefaultProgressiveStep},
	}

	var caps BaseCapabilities
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := caps.ProgressiveStep(&tt.model); got != tt.wantStep {
				t.Errorf("ProgressiveStep() = %d, want %d", got, tt.wantStep)
			}
		})
	}

	m := &Model{LargeThreshold: 2000, ProgressiveThreshold: 1500}
	if got := caps.ProgressiveThreshold(m); got != 2000 {
		t.Errorf("effective threshold = %d, want max(2000, 1500) = 2000", got)
	}
}
