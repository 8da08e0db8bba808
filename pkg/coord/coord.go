// Package coord provides the coordinate-system boundary layout stages call
// through to convert data values into pixel positions.
//
// The pipeline does not implement axis scaling; it only declares which
// coordinate-system kinds a series depends on and invokes the conversion.
// This package ships the two standard collaborators: a Cartesian grid and a
// polar system, both doing plain linear interpolation into a pixel rect.
package coord

import (
	"math"

	"github.com/matzehuels/chartpipe/pkg/render"
)

// Coordinate-system kinds.
const (
	KindCartesian = "cartesian2d"
	KindPolar     = "polar"
)

// System converts data values to target-space positions.
type System interface {
	// Kind returns the coordinate-system kind identifier.
	Kind() string

	// DataToPoint maps a data value row to a pixel position.
	// ok is false when the row has too few values for the system.
	DataToPoint(values []float64) (render.Point, bool)
}

// =============================================================================
// Cartesian
// =============================================================================

// Scale linearly maps a data interval onto a pixel interval.
type Scale struct {
	DataMin, DataMax float64
	PixMin, PixMax   float64
}

// Map converts a data value to its pixel position. Degenerate data intervals
// collapse to the middle of the pixel interval.
func (s Scale) Map(v float64) float64 {
	if s.DataMax == s.DataMin {
		return (s.PixMin + s.PixMax) / 2
	}
	t := (v - s.DataMin) / (s.DataMax - s.DataMin)
	return s.PixMin + t*(s.PixMax-s.PixMin)
}

// Cartesian is a two-axis grid. The y scale runs top-down in pixel space, so
// PixMin is the bottom of the plot area.
type Cartesian struct {
	X, Y Scale
}

// NewCartesian builds a grid mapping the given data extents into a
// width x height viewport with a uniform pixel padding.
func NewCartesian(xMin, xMax, yMin, yMax, width, height, padding float64) *Cartesian {
	return &Cartesian{
		X: Scale{DataMin: xMin, DataMax: xMax, PixMin: padding, PixMax: width - padding},
		Y: Scale{DataMin: yMin, DataMax: yMax, PixMin: height - padding, PixMax: padding},
	}
}

// Kind implements System.
func (c *Cartesian) Kind() string { return KindCartesian }

// DataToPoint implements System. The first two values are taken as x and y.
func (c *Cartesian) DataToPoint(values []float64) (render.Point, bool) {
	if len(values) < 2 {
		return render.Point{}, false
	}
	return render.Point{X: c.X.Map(values[0]), Y: c.Y.Map(values[1])}, true
}

// MapX converts an x data value to pixels.
func (c *Cartesian) MapX(v float64) float64 { return c.X.Map(v) }

// MapY converts a y data value to pixels.
func (c *Cartesian) MapY(v float64) float64 { return c.Y.Map(v) }

// =============================================================================
// Polar
// =============================================================================

// Polar maps (angle value, radius value) rows onto a circle around a center
// point. Angles map the data interval onto a full turn.
type Polar struct {
	CenterX, CenterY float64
	Radius           float64
	Angle            Scale // data interval -> [0, 2π)
	R                Scale // data interval -> [0, Radius]
}

// NewPolar builds a polar system centered in a width x height viewport.
func NewPolar(angleMin, angleMax, rMin, rMax, width, height float64) *Polar {
	radius := min(width, height)/2 - 10
	return &Polar{
		CenterX: width / 2,
		CenterY: height / 2,
		Radius:  radius,
		Angle:   Scale{DataMin: angleMin, DataMax: angleMax, PixMin: 0, PixMax: 2 * math.Pi},
		R:       Scale{DataMin: rMin, DataMax: rMax, PixMin: 0, PixMax: radius},
	}
}

// Kind implements System.
func (p *Polar) Kind() string { return KindPolar }

// DataToPoint implements System. The first value is the angle dimension, the
// second the radius dimension.
func (p *Polar) DataToPoint(values []float64) (render.Point, bool) {
	if len(values) < 2 {
		return render.Point{}, false
	}
	theta := p.Angle.Map(values[0])
	r := p.R.Map(values[1])
	return render.Point{
		X: p.CenterX + r*math.Cos(theta),
		Y: p.CenterY - r*math.Sin(theta),
	}, true
}
