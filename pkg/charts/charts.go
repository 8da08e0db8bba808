// Package charts hosts the concrete chart types that plug into the
// pipeline, plus the stages shared by all of them.
//
// Each chart type lives in its own subpackage and registers its series spec
// and stages at init time, the way language parsers register with a
// dependency resolver. Importing a chart package (usually blank) is what
// makes its type renderable:
//
//	import _ "github.com/matzehuels/chartpipe/pkg/charts/line"
//
// This package itself registers the type-independent stages: input
// validation in the preprocess kind and palette color assignment at the
// global visual slot, which runs before every per-type visual stage.
package charts

import (
	"fmt"
	"math"

	"github.com/matzehuels/chartpipe/pkg/coord"
	"github.com/matzehuels/chartpipe/pkg/pipeline"
	"github.com/matzehuels/chartpipe/pkg/render"
	"github.com/matzehuels/chartpipe/pkg/series"
)

// BaseRect is the shared base fragment for rectangle-shaped cartesian types
// (bar, candlestick). It is not directly renderable: no layout stage
// registers for it, it only contributes inherited defaults.
const BaseRect = "rect"

func init() {
	pipeline.MustRegisterPreprocessor("charts:validate", ValidateData)
	mustRegisterGlobalVisual()

	series.MustRegisterType(series.Spec{
		Type:         BaseRect,
		Dependencies: []string{coord.KindCartesian},
		DefaultOption: series.Options{
			"showBackground":  false,
			"backgroundColor": "#f0f0f0",
			"clip":            false,
		},
	})
}

func mustRegisterGlobalVisual() {
	err := pipeline.Default().Register(
		pipeline.KindVisual, pipeline.PriorityVisualGlobal, "charts:palette", PaletteVisual)
	if err != nil {
		panic(err)
	}
}

// ValidateData rejects datasets containing non-finite values. Catching these
// here keeps NaN out of every later stage, where it would silently poison
// aggregations and pixel math.
func ValidateData(sc *pipeline.StageContext) error {
	for i := sc.Chunk.Start; i < sc.Chunk.End; i++ {
		for d, v := range sc.Data.Values(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("item %d dimension %q is not finite", i, sc.Data.Dims[d])
			}
		}
	}
	return nil
}

// PaletteVisual assigns each item's base fill and stroke color: the series'
// "color" option when set, otherwise the palette color for its index.
// Per-type visual stages run later and may overwrite individual items.
func PaletteVisual(sc *pipeline.StageContext) error {
	color := sc.Model.Options.String("color", render.PaletteColor(sc.SeriesIndex))
	for i := sc.Chunk.Start; i < sc.Chunk.End; i++ {
		sc.Visual.Fill[i] = color
		sc.Visual.Stroke[i] = color
	}
	return nil
}
