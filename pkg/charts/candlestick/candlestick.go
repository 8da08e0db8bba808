// Package candlestick implements the OHLC candlestick chart type: each item
// carries open/close/low/high dimensions and becomes a body rectangle plus a
// high-low whisker line.
//
// Candlestick overrides the generic progressive policy: candles are fiddly
// to read when drawn incrementally, so chunked execution requires both the
// large flag and an explicit progressive opt-in. Threshold math alone never
// enables it for this type.
package candlestick

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
const Type = "candlestick"

// Dimension layout expected in candlestick datasets.
const (
	DimX = iota
	DimOpen
	DimClose
	DimLow
	DimHigh
	dimCount
)

func init() {
	series.MustRegisterType(series.Spec{
		Type:    Type,
		Extends: charts.BaseRect,
		DefaultOption: series.Options{
			"bullColor":      "#eb5454",
			"bearColor":      "#47b262",
			"bodyRatio":      0.7,
			"borderWidth":    1.0,
			"largeThreshold": 600,
		},
		Capabilities: caps{},
	})
	pipeline.MustRegisterVisual("candlestick:direction", DirectionVisual, pipeline.ForTypes(Type))
	pipeline.MustRegisterLayout("candlestick:candles", Layout, pipeline.ForTypes(Type))
}

// caps is the candlestick capability table. It disables progressive
// execution whenever the large flag is unset, even if the thresholds would
// otherwise allow chunking, and additionally requires the series to opt in
// explicitly.
type caps struct {
	series.BaseCapabilities
}

// ProgressiveStep implements series.Capabilities.
func (c caps) ProgressiveStep(m *series.Model) int {
	if !m.Large {
		return 0
	}
	if !m.Progressive.IsSet() || !m.Progressive.Enabled() {
		return 0
	}
	if s := m.Progressive.Step(); s > 0 {
		return s
	}
	return series.DefaultProgressiveStep
}

// DirectionVisual colors each item by candle direction: bull (close >= open)
// or bear. Overwrites the palette stage's per-series color.
func DirectionVisual(sc *pipeline.StageContext) error {
	bull := sc.Model.Options.String("bullColor", "#eb5454")
	bear := sc.Model.Options.String("bearColor", "#47b262")
	for i := sc.Chunk.Start; i < sc.Chunk.End; i++ {
		row := sc.Data.Values(i)
		if len(row) < dimCount {
			return fmt.Errorf("item %d has %d dimensions, candlestick needs %d", i, len(row), dimCount)
		}
		color := bull
		if row[DimClose] < row[DimOpen] {
			color = bear
		}
		sc.Visual.Fill[i] = color
		sc.Visual.Stroke[i] = color
	}
	return nil
}

// Layout emits the whisker line and body rectangle for each item in the
// chunk.
func Layout(sc *pipeline.StageContext) error {
	grid, ok := sc.Coord.(*coord.Cartesian)
	if !ok {
		return fmt.Errorf("candlestick series requires a cartesian coordinate system")
	}

	n := sc.Data.Len()
	if n == 0 {
		return nil
	}
	ratio := sc.Model.Options.Float("bodyRatio", 0.7)
	w := math.Abs(grid.X.PixMax-grid.X.PixMin) / float64(n) * ratio
	if w < 1 {
		w = 1
	}
	borderWidth := sc.Model.Options.Float("borderWidth", 1.0)

	for i := sc.Chunk.Start; i < sc.Chunk.End; i++ {
		row := sc.Data.Values(i)
		if len(row) < dimCount {
			return fmt.Errorf("item %d has %d dimensions, candlestick needs %d", i, len(row), dimCount)
		}
		x := grid.MapX(row[DimX])
		yOpen := grid.MapY(row[DimOpen])
		yClose := grid.MapY(row[DimClose])
		yLow := grid.MapY(row[DimLow])
		yHigh := grid.MapY(row[DimHigh])

		style := render.Style{Fill: sc.Visual.Fill[i], Stroke: sc.Visual.Stroke[i], StrokeWidth: borderWidth}

		// Whisker first so the body draws over it.
		sc.Frame.Add(render.Line([]render.Point{{X: x, Y: yHigh}, {X: x, Y: yLow}}, render.Style{
			Stroke:      sc.Visual.Stroke[i],
			StrokeWidth: borderWidth,
		}))

		top := min(yOpen, yClose)
		h := math.Abs(yClose - yOpen)
		if h < 1 {
			h = 1 // dojis stay visible
		}
		sc.Frame.Add(render.Rect(x-w/2, top, w, h, style))
	}
	return nil
}
