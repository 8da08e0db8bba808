package render

import (
	"bytes"
	"fmt"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width      float64
	height     float64
	background string
	title      string
}

// WithFrameSize sets the viewport size. Defaults to 800x600.
func WithFrameSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// WithBackground fills the viewport with a background color.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithTitle embeds a <title> element for accessibility.
func WithTitle(title string) SVGOption {
	return func(r *svgRenderer) { r.title = title }
}

// RenderSVG serializes frames to a standalone SVG document. Frames render in
// series order, so later series draw over earlier ones.
func RenderSVG(frames []*Frame, opts ...SVGOption) []byte {
	r := svgRenderer{width: 800, height: 600}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)

	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			r.width, r.height, r.background)
	}

	for _, f := range frames {
		if f == nil || len(f.Primitives) == 0 {
			continue
		}
		fmt.Fprintf(&buf, `  <g class="series" data-series="%d" data-type="%s">`+"\n", f.SeriesIndex, f.Type)
		for _, p := range f.Primitives {
			writePrimitive(&buf, p)
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writePrimitive(buf *bytes.Buffer, p Primitive) {
	switch p.Shape {
	case ShapeRect:
		fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"%s/>`+"\n",
			p.X, p.Y, p.W, p.H, styleAttrs(p.Style))
	case ShapeCircle:
		fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f"%s/>`+"\n",
			p.X, p.Y, p.R, styleAttrs(p.Style))
	case ShapeLine:
		fmt.Fprintf(buf, `    <polyline points="%s" fill="none"%s/>`+"\n",
			pointList(p.Points), strokeAttrs(p.Style))
	case ShapePath:
		fmt.Fprintf(buf, `    <polygon points="%s"%s/>`+"\n",
			pointList(p.Points), styleAttrs(p.Style))
	}
}

func pointList(pts []Point) string {
	var buf bytes.Buffer
	for i, pt := range pts {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%.2f,%.2f", pt.X, pt.Y)
	}
	return buf.String()
}

func styleAttrs(s Style) string {
	var buf bytes.Buffer
	if s.Fill != "" {
		fmt.Fprintf(&buf, ` fill="%s"`, s.Fill)
	}
	buf.WriteString(strokeAttrs(s))
	return buf.String()
}

func strokeAttrs(s Style) string {
	var buf bytes.Buffer
	if s.Stroke != "" {
		fmt.Fprintf(&buf, ` stroke="%s"`, s.Stroke)
	}
	if s.StrokeWidth > 0 {
		fmt.Fprintf(&buf, ` stroke-width="%.2f"`, s.StrokeWidth)
	}
	if s.Opacity > 0 && s.Opacity < 1 {
		fmt.Fprintf(&buf, ` opacity="%.2f"`, s.Opacity)
	}
	return buf.String()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
