// Package line implements the line chart type: items become a polyline in
// Cartesian space, optionally with symbol markers at each point.
package line

import (
	"fmt"

	_ "github.com/matzehuels/chartpipe/pkg/charts" // shared stages
	"github.com/matzehuels/chartpipe/pkg/coord"
	"github.com/matzehuels/chartpipe/pkg/pipeline"
	"github.com/matzehuels/chartpipe/pkg/render"
	"github.com/matzehuels/chartpipe/pkg/series"
)

// Type is the series-type identifier.
const Type = "line"

func init() {
	series.MustRegisterType(series.Spec{
		Type:         Type,
		Dependencies: []string{coord.KindCartesian},
		DefaultOption: series.Options{
			"showSymbol": true,
			"symbolSize": 3.0,
			"lineWidth":  2.0,
			// Lines downsample gracefully, so opt into averaging by default
			// once the dataset is large enough to matter.
			"sampling":          series.SamplingAverage,
			"samplingRate":      0, // 0 disables until a series sets a rate
			"samplingThreshold": series.DefaultLargeThreshold,
		},
	})
	pipeline.MustRegisterLayout("line:points", Layout, pipeline.ForTypes(Type))
}

// Layout converts the chunk's items into one polyline primitive, plus a
// circle marker per item when showSymbol is set and the series is not in
// large mode (markers on oversized datasets drown the line).
func Layout(sc *pipeline.StageContext) error {
	if sc.Coord == nil {
		return fmt.Errorf("line series requires a coordinate system")
	}

	// Under progressive execution each chunk draws its own polyline. Seed
	// non-first chunks with the previous chunk's final point so the segments
	// join instead of leaving a gap at every chunk boundary.
	first := sc.Chunk.Start
	if first > 0 {
		first--
	}

	pts := make([]render.Point, 0, sc.Chunk.End-first)
	for i := first; i < sc.Chunk.End; i++ {
		p, ok := sc.Coord.DataToPoint(sc.Data.Values(i))
		if !ok {
			return fmt.Errorf("item %d has too few dimensions for %s", i, sc.Coord.Kind())
		}
		pts = append(pts, p)
	}
	if len(pts) == 0 {
		return nil
	}

	stroke := sc.Visual.Stroke[sc.Chunk.Start]
	sc.Frame.Add(render.Line(pts, render.Style{
		Stroke:      stroke,
		StrokeWidth: sc.Model.Options.Float("lineWidth", 2.0),
	}))

	if sc.Model.Options.Bool("showSymbol", true) && !sc.Model.Large {
		r := sc.Model.Options.Float("symbolSize", 3.0)
		for i, p := range pts {
			sc.Frame.Add(render.Circle(p.X, p.Y, r, render.Style{
				Fill: sc.Visual.Fill[first+i],
			}))
		}
	}
	return nil
}
