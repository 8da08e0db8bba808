package charts

import (
	"math"
	"testing"

	"github.com/matzehuels/chartpipe/pkg/dataset"
	"github.com/matzehuels/chartpipe/pkg/pipeline"
	"github.com/matzehuels/chartpipe/pkg/render"
	"github.com/matzehuels/chartpipe/pkg/series"
)

func stageContext(t *testing.T, items [][]float64, opts series.Options) *pipeline.StageContext {
	t.Helper()
	reg := series.NewTypeRegistry()
	if err := reg.Register(series.Spec{Type: "test"}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	m, err := reg.NewModel("test", opts)
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	data, err := dataset.New([]string{"x", "y"}, items)
	if err != nil {
		t.Fatalf("dataset.New() failed: %v", err)
	}
	n := data.Len()
	return &pipeline.StageContext{
		Model:       m,
		Data:        data,
		Chunk:       dataset.Full(n),
		SeriesIndex: 2,
		Visual: &pipeline.VisualState{
			Fill:   make([]string, n),
			Stroke: make([]string, n),
		},
	}
}

func TestValidateData(t *testing.T) {
	tests := []struct {
		name    string
		items   [][]float64
		wantErr bool
	}{
		{"finite", [][]float64{{0, 1}, {1, 2}}, false},
		{"empty", nil, false},
		{"nan", [][]float64{{0, math.NaN()}}, true},
		{"positive inf", [][]float64{{math.Inf(1), 1}}, true},
		{"negative inf", [][]float64{{0, math.Inf(-1)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := stageContext(t, tt.items, nil)
			err := ValidateData(sc)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateData() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaletteVisualUsesSeriesIndex(t *testing.T) {
	sc := stageContext(t, [][]float64{{0, 1}, {1, 2}}, nil)
	if err := PaletteVisual(sc); err != nil {
		t.Fatalf("PaletteVisual() failed: %v", err)
	}
	want := render.PaletteColor(2)
	for i := range sc.Visual.Fill {
		if sc.Visual.Fill[i] != want || sc.Visual.Stroke[i] != want {
			t.Errorf("item %d = fill %q stroke %q, want %q", i, sc.Visual.Fill[i], sc.Visual.Stroke[i], want)
		}
	}
}

func TestPaletteVisualColorOptionWins(t *testing.T) {
	sc := stageContext(t, [][]float64{{0, 1}}, series.Options{"color": "#123456"})
	if err := PaletteVisual(sc); err != nil {
		t.Fatalf("PaletteVisual() failed: %v", err)
	}
	if sc.Visual.Fill[0] != "#123456" {
		t.Errorf("fill = %q, want the color option", sc.Visual.Fill[0])
	}
}
