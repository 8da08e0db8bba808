package plan

import (
	"strings"
	"testing"

	"github.com/matzehuels/chartpipe/pkg/pipeline"
)

func testRegistry(t *testing.T) *pipeline.Registry {
	t.Helper()
	reg := pipeline.NewRegistry()
	mustRegister := func(kind pipeline.Kind, priority int, name string, opts ...pipeline.StageOption) {
		t.Helper()
		err := reg.Register(kind, priority, name, func(*pipeline.StageContext) error { return nil }, opts...)
		if err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}
	mustRegister(pipeline.KindPreprocess, pipeline.PriorityPreprocess, "validate")
	mustRegister(pipeline.KindProcess, pipeline.PriorityProcessStatistic, "downsample", pipeline.WholeSeries())
	mustRegister(pipeline.KindVisual, pipeline.PriorityVisualGlobal, "palette")
	mustRegister(pipeline.KindLayout, pipeline.PriorityLayout, "line:polyline", pipeline.ForTypes("line"))
	mustRegister(pipeline.KindLayout, pipeline.PriorityLayout, "bar:bars", pipeline.ForTypes("bar"))
	return reg
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testRegistry(t), "line")

	for _, want := range []string{
		"digraph plan {",
		`"preprocess/validate"`,
		`"process/downsample"`,
		`"visual/palette"`,
		`"layout/line:polyline"`,
		`subgraph "cluster_preprocess"`,
		// Stages chain in execution order across kinds.
		`"preprocess/validate" -> "process/downsample"`,
		`"visual/palette" -> "layout/line:polyline"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q", want)
		}
	}

	if strings.Contains(dot, "bar:bars") {
		t.Error("plan for line should not include bar-only stages")
	}
	// Whole-series stages draw dashed.
	if !strings.Contains(dot, `label="downsample\npriority 5000", style="rounded,filled,dashed"`) {
		t.Error("whole-series stage should be dashed")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(testRegistry(t), "line"))
	if err != nil {
		t.Fatalf("RenderSVG() failed: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output does not look like SVG")
	}
}

func TestRenderSVGRejectsBadDOT(t *testing.T) {
	if _, err := RenderSVG("digraph { unterminated"); err == nil {
		t.Error("RenderSVG() should fail on malformed DOT")
	}
}
