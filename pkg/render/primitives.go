// Package render defines the drawable primitives the pipeline emits and the
// sinks that serialize them.
//
// The pipeline's final output per series is a [Frame]: an ordered sequence of
// positioned, styled primitives in target coordinate space. Everything past
// this boundary (rasterization, DOM, canvas) belongs to an external renderer;
// the sinks here produce SVG markup and a JSON interchange form.
package render

// Point is a position in target (pixel) coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape kinds for primitives.
const (
	ShapeRect   = "rect"
	ShapeLine   = "line"
	ShapeCircle = "circle"
	ShapePath   = "path"
)

// Style holds the fill/stroke attributes of a primitive.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"` // 0 means unset (fully opaque)
}

// Primitive is one positioned, styled drawable element.
type Primitive struct {
	Shape string `json:"shape"`

	// Rect geometry (also the bounding anchor for circles).
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`

	// Circle radius.
	R float64 `json:"r,omitempty"`

	// Polyline/path vertices.
	Points []Point `json:"points,omitempty"`

	Style Style `json:"style"`
}

// Frame is the renderer-boundary output for one series.
type Frame struct {
	SeriesIndex int         `json:"series_index"`
	Type        string      `json:"type"`
	Name        string      `json:"name,omitempty"`
	Primitives  []Primitive `json:"primitives"`
}

// Add appends a primitive to the frame.
func (f *Frame) Add(p Primitive) { f.Primitives = append(f.Primitives, p) }

// Rect is a convenience constructor for rectangle primitives.
func Rect(x, y, w, h float64, style Style) Primitive {
	return Primitive{Shape: ShapeRect, X: x, Y: y, W: w, H: h, Style: style}
}

// Line is a convenience constructor for polyline primitives.
func Line(points []Point, style Style) Primitive {
	return Primitive{Shape: ShapeLine, Points: points, Style: style}
}

// Circle is a convenience constructor for circle primitives.
func Circle(cx, cy, r float64, style Style) Primitive {
	return Primitive{Shape: ShapeCircle, X: cx, Y: cy, R: r, Style: style}
}

// Path is a convenience constructor for closed path primitives.
func Path(points []Point, style Style) Primitive {
	return Primitive{Shape: ShapePath, Points: points, Style: style}
}

// DefaultPalette supplies per-series fallback colors, cycled by series index.
var DefaultPalette = []string{
	"#5470c6", "#91cc75", "#fac858", "#ee6666",
	"#73c0de", "#3ba272", "#fc8452", "#9a60b4",
}

// PaletteColor returns the palette color for a series index.
func PaletteColor(i int) string {
	return DefaultPalette[((i%len(DefaultPalette))+len(DefaultPalette))%len(DefaultPalette)]
}
