// Package scatter implements the scatter chart type: each item becomes a
// circle, sized by a third dimension when present. Scatter is the usual
// large-mode candidate, so its thresholds default low.
package scatter

import (
	"fmt"

	_ "github.com/matzehuels/chartpipe/pkg/charts" // shared stages
	"github.com/matzehuels/chartpipe/pkg/coord"
	"github.com/matzehuels/chartpipe/pkg/pipeline"
	"github.com/matzehuels/chartpipe/pkg/render"
	"github.com/matzehuels/chartpipe/pkg/series"
)

// Type is the series-type identifier.
const Type = "scatter"

func init() {
	series.MustRegisterType(series.Spec{
		Type:         Type,
		Dependencies: []string{coord.KindCartesian},
		DefaultOption: series.Options{
			"symbolSize": 4.0,
			"opacity":    0.8,
		},
	})
	pipeline.MustRegisterVisual("scatter:size", SizeVisual, pipeline.ForTypes(Type))
	pipeline.MustRegisterLayout("scatter:symbols", Layout, pipeline.ForTypes(Type))
}

// SizeVisual computes per-item symbol sizes: the third dimension's value
// scaled by symbolSize when present, the flat symbolSize otherwise.
func SizeVisual(sc *pipeline.StageContext) error {
	base := sc.Model.Options.Float("symbolSize", 4.0)
	sizeDim := -1
	if len(sc.Data.Dims) > 2 {
		sizeDim = 2
	}
	for i := sc.Chunk.Start; i < sc.Chunk.End; i++ {
		if sizeDim >= 0 {
			sc.Visual.Size[i] = base * sc.Data.Values(i)[sizeDim]
		} else {
			sc.Visual.Size[i] = base
		}
	}
	return nil
}

// Layout emits one circle per item in the chunk.
func Layout(sc *pipeline.StageContext) error {
	if sc.Coord == nil {
		return fmt.Errorf("scatter series requires a coordinate system")
	}
	opacity := sc.Model.Options.Float("opacity", 0.8)
	for i := sc.Chunk.Start; i < sc.Chunk.End; i++ {
		p, ok := sc.Coord.DataToPoint(sc.Data.Values(i))
		if !ok {
			return fmt.Errorf("item %d has too few dimensions for %s", i, sc.Coord.Kind())
		}
		r := sc.Visual.Size[i]
		if r <= 0 {
			r = 1
		}
		sc.Frame.Add(render.Circle(p.X, p.Y, r, render.Style{
			Fill:    sc.Visual.Fill[i],
			Opacity: opacity,
		}))
	}
	return nil
}
