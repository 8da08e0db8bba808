package candlestick

import (
	"testing"

	"github.com/matzehuels/chartpipe/pkg/coord"
	"github.com/matzehuels/chartpipe/pkg/dataset"
	"github.com/matzehuels/chartpipe/pkg/pipeline"
	"github.com/matzehuels/chartpipe/pkg/render"
	"github.com/matzehuels/chartpipe/pkg/series"
)

func TestProgressiveRequiresExplicitOptIn(t *testing.T) {
	tests := []struct {
		name string
		opts series.Options
		want int
	}{
		{"not large", series.Options{"progressive": true}, 0},
		{"large without opt-in", series.Options{"large": true}, 0},
		{"large with opt-in", series.Options{"large": true, "progressive": true}, series.DefaultProgressiveStep},
		{"large with explicit step", series.Options{"large": true, "progressive": int64(200)}, 200},
		{"large with opt-out", series.Options{"large": true, "progressive": false}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := series.NewModel(Type, tt.opts)
			if err != nil {
				t.Fatalf("NewModel() failed: %v", err)
			}
			if got := m.Capabilities().ProgressiveStep(m); got != tt.want {
				t.Errorf("ProgressiveStep() = %d, want %d", got, tt.want)
			}
		})
	}
}

func testContext(t *testing.T, items [][]float64) *pipeline.StageContext {
	t.Helper()
	data, err := dataset.New([]string{"x", "open", "close", "low", "high"}, items)
	if err != nil {
		t.Fatalf("dataset.New() failed: %v", err)
	}
	m, err := series.NewModel(Type, nil)
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	n := data.Len()
	return &pipeline.StageContext{
		Model: m,
		Data:  data,
		Chunk: dataset.Full(n),
		Coord: coord.NewCartesian(0, 10, 0, 100, 800, 600, 40),
		Visual: &pipeline.VisualState{
			Fill:   make([]string, n),
			Stroke: make([]string, n),
		},
		Frame: &render.Frame{Type: Type},
	}
}

func TestDirectionVisual(t *testing.T) {
	sc := testContext(t, [][]float64{
		{0, 10, 20, 5, 25},  // close above open: bull
		{1, 20, 10, 5, 25},  // close below open: bear
		{2, 15, 15, 10, 20}, // doji counts as bull
	})
	if err := DirectionVisual(sc); err != nil {
		t.Fatalf("DirectionVisual() failed: %v", err)
	}

	bull := sc.Model.Options.String("bullColor", "")
	bear := sc.Model.Options.String("bearColor", "")
	want := []string{bull, bear, bull}
	for i, w := range want {
		if sc.Visual.Fill[i] != w || sc.Visual.Stroke[i] != w {
			t.Errorf("item %d: fill=%q stroke=%q, want %q", i, sc.Visual.Fill[i], sc.Visual.Stroke[i], w)
		}
	}
}

func TestDirectionVisualRejectsShortRows(t *testing.T) {
	data, err := dataset.New([]string{"x", "open"}, [][]float64{{0, 10}})
	if err != nil {
		t.Fatalf("dataset.New() failed: %v", err)
	}
	sc := testContext(t, [][]float64{{0, 10, 20, 5, 25}})
	sc.Data = data
	sc.Chunk = dataset.Full(1)
	if err := DirectionVisual(sc); err == nil {
		t.Error("DirectionVisual() should reject rows missing OHLC dimensions")
	}
}

func TestLayoutEmitsWhiskerAndBody(t *testing.T) {
	sc := testContext(t, [][]float64{
		{0, 10, 20, 5, 25},
		{1, 20, 10, 5, 25},
	})
	if err := DirectionVisual(sc); err != nil {
		t.Fatalf("DirectionVisual() failed: %v", err)
	}
	if err := Layout(sc); err != nil {
		t.Fatalf("Layout() failed: %v", err)
	}

	if got := len(sc.Frame.Primitives); got != 4 {
		t.Fatalf("got %d primitives, want 4 (whisker + body per item)", got)
	}
	whisker, body := sc.Frame.Primitives[0], sc.Frame.Primitives[1]
	if whisker.Shape != render.ShapeLine {
		t.Errorf("first primitive = %q, want whisker line", whisker.Shape)
	}
	if body.Shape != render.ShapeRect {
		t.Errorf("second primitive = %q, want body rect", body.Shape)
	}
	// Body spans open to close in pixel space: MapY(20)=456, MapY(10)=508.
	if body.Y != 456 || body.H != 52 {
		t.Errorf("body = y=%g h=%g, want y=456 h=52", body.Y, body.H)
	}
}

func TestLayoutDojiStaysVisible(t *testing.T) {
	sc := testContext(t, [][]float64{{0, 15, 15, 10, 20}})
	if err := Layout(sc); err != nil {
		t.Fatalf("Layout() failed: %v", err)
	}
	body := sc.Frame.Primitives[1]
	if body.H < 1 {
		t.Errorf("doji body height = %g, want at least 1", body.H)
	}
}

func TestLayoutRequiresCartesian(t *testing.T) {
	sc := testContext(t, [][]float64{{0, 10, 20, 5, 25}})
	sc.Coord = coord.NewPolar(0, 360, 0, 1, 400, 400)
	if err := Layout(sc); err == nil {
		t.Error("Layout() should reject non-cartesian coordinate systems")
	}
}
