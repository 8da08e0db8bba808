// Package bar implements the bar chart type: each item becomes a vertical
// rectangle from the zero baseline to its y value.
package bar

import (
	"fmt"
	"math"

	"github.com/matzehuels/chartpipe/pkg/charts"
	"github.com/matzehuels/chartpipe/pkg/coord"
	"github.com/matzehuels/chartpipe/pkg/pipeline"
	"github.com/matzehuels/chartpipe/pkg/render"
	"github.com/matzehuels/chartpipe/pkg/series"
)

// Type is the series-type identifier.
const Type = "bar"

func init() {
	// Inherits showBackground/backgroundColor and the cartesian dependency
	// from the rect base; bars do clip by default, so only clip is overridden.
	series.MustRegisterType(series.Spec{
		Type:    Type,
		Extends: charts.BaseRect,
		DefaultOption: series.Options{
			"barWidthRatio": 0.7,
			"clip":          true,
		},
	})
	pipeline.MustRegisterLayout("bar:rects", Layout, pipeline.ForTypes(Type))
}

// Layout emits one rectangle per item in the chunk. Bars grow from the zero
// baseline; negative values hang below it. With showBackground, a full-height
// background column is drawn under each bar. With clip, items whose x
// position falls outside the plot area are skipped instead of drawn.
func Layout(sc *pipeline.StageContext) error {
	grid, ok := sc.Coord.(*coord.Cartesian)
	if !ok {
		return fmt.Errorf("bar series requires a cartesian coordinate system")
	}

	n := sc.Data.Len()
	if n == 0 {
		return nil
	}

	// Bars share the plot width evenly; the ratio leaves a gap between them.
	ratio := sc.Model.Options.Float("barWidthRatio", 0.7)
	w := math.Abs(grid.X.PixMax-grid.X.PixMin) / float64(n) * ratio
	if w < 1 {
		w = 1
	}

	baseline := grid.MapY(0)
	clip := sc.Model.Options.Bool("clip", true)
	showBg := sc.Model.Options.Bool("showBackground", false)
	bgColor := sc.Model.Options.String("backgroundColor", "#f0f0f0")

	lo := min(grid.X.PixMin, grid.X.PixMax)
	hi := max(grid.X.PixMin, grid.X.PixMax)

	for i := sc.Chunk.Start; i < sc.Chunk.End; i++ {
		p, ok := grid.DataToPoint(sc.Data.Values(i))
		if !ok {
			return fmt.Errorf("item %d has too few dimensions for %s", i, grid.Kind())
		}
		if clip && (p.X < lo || p.X > hi) {
			continue
		}

		if showBg {
			top := min(grid.Y.PixMin, grid.Y.PixMax)
			bottom := max(grid.Y.PixMin, grid.Y.PixMax)
			sc.Frame.Add(render.Rect(p.X-w/2, top, w, bottom-top, render.Style{Fill: bgColor}))
		}

		y := min(p.Y, baseline)
		h := math.Abs(p.Y - baseline)
		sc.Frame.Add(render.Rect(p.X-w/2, y, w, h, render.Style{Fill: sc.Visual.Fill[i]}))
	}
	return nil
}
