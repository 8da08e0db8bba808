// Package config loads chart specifications from TOML files and turns them
// into renderable chart states.
//
// A chart spec names the frame size, the coordinate system, and one or more
// series, each with a type, options, and a data source:
//
//	title = "latency"
//	width = 800
//	height = 400
//
//	[coord]
//	kind = "cartesian2d"
//
//	[[series]]
//	type = "line"
//	name = "p99"
//	data = [[0.0, 12.5], [1.0, 13.1], [2.0, 11.8]]
//
//	[series.options]
//	sampling = "average"
//	samplingRate = 4
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chartpipe/pkg/cache"
	"github.com/matzehuels/chartpipe/pkg/coord"
	"github.com/matzehuels/chartpipe/pkg/errors"
	"github.com/matzehuels/chartpipe/pkg/pipeline"
	"github.com/matzehuels/chartpipe/pkg/series"
	"github.com/matzehuels/chartpipe/pkg/source"
)

// Default frame geometry for specs that leave it out.
const (
	DefaultWidth   = 800.0
	DefaultHeight  = 600.0
	DefaultPadding = 40.0
)

// Chart is a decoded chart specification.
type Chart struct {
	Title  string       `toml:"title"`
	Width  float64      `toml:"width"`
	Height float64      `toml:"height"`
	Coord  CoordSpec    `toml:"coord"`
	Series []SeriesSpec `toml:"series"`

	raw []byte // original spec bytes, hashed for frame caching
}

// CoordSpec configures the chart's coordinate system. Extents left nil are
// computed from the data.
type CoordSpec struct {
	Kind    string   `toml:"kind"`
	Padding float64  `toml:"padding"`
	XMin    *float64 `toml:"xMin"`
	XMax    *float64 `toml:"xMax"`
	YMin    *float64 `toml:"yMin"`
	YMax    *float64 `toml:"yMax"`
}

// SeriesSpec configures one series. Exactly one of Data, DataFile, or Mongo
// supplies the dataset.
type SeriesSpec struct {
	Type     string         `toml:"type"`
	Name     string         `toml:"name"`
	Dims     []string       `toml:"dims"`
	Data     [][]float64    `toml:"data"`
	DataFile string         `toml:"dataFile"`
	Mongo    *MongoSpec     `toml:"mongo"`
	Options  map[string]any `toml:"options"`
}

// MongoSpec configures a MongoDB-backed dataset.
type MongoSpec struct {
	URI        string         `toml:"uri"`
	Database   string         `toml:"database"`
	Collection string         `toml:"collection"`
	Dims       []string       `toml:"dims"`
	Filter     map[string]any `toml:"filter"`
	Sort       string         `toml:"sort"`
	Limit      int64          `toml:"limit"`
}

// Load reads and parses a chart spec file.
func Load(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read chart spec %s", path)
	}
	return Parse(data)
}

// Parse decodes a chart spec from TOML bytes.
func Parse(data []byte) (*Chart, error) {
	var c Chart
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse chart spec")
	}
	if len(c.Series) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "chart spec has no series")
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.Width <= 0 || c.Height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "frame size must be positive, got %gx%g", c.Width, c.Height)
	}
	if c.Coord.Kind == "" {
		c.Coord.Kind = coord.KindCartesian
	}
	if c.Coord.Padding == 0 {
		c.Coord.Padding = DefaultPadding
	}
	for i := range c.Series {
		s := &c.Series[i]
		if s.Type == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "series %d has no type", i)
		}
		sources := 0
		if len(s.Data) > 0 {
			sources++
		}
		if s.DataFile != "" {
			sources++
		}
		if s.Mongo != nil {
			sources++
		}
		if sources != 1 {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"series %d (%s) must have exactly one of data, dataFile, or mongo", i, s.Type)
		}
	}
	c.raw = data
	return &c, nil
}

// State loads all datasets, builds the series models, and assembles the
// chart state the scheduler consumes. The state's hash covers the spec bytes
// and the loaded data, so identical inputs hit the frame cache.
func (c *Chart) State(ctx context.Context) (*pipeline.ChartState, error) {
	st := &pipeline.ChartState{
		Width:  c.Width,
		Height: c.Height,
		Coords: make(map[string]coord.System),
	}

	hasher := append([]byte(nil), c.raw...)

	for i, spec := range c.Series {
		src, closer, err := c.openSource(ctx, spec)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSource, err, "series %d (%s)", i, spec.Type)
		}
		data, err := source.Load(ctx, src)
		if closer != nil {
			closer()
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSource, err, "series %d (%s)", i, spec.Type)
		}

		opts := make(series.Options, len(spec.Options)+1)
		for k, v := range spec.Options {
			opts[k] = v
		}
		if spec.Name != "" {
			opts["name"] = spec.Name
		}
		model, err := series.NewModel(spec.Type, opts)
		if err != nil {
			return nil, err
		}

		st.Series = append(st.Series, pipeline.ChartSeries{Model: model, Data: data})

		if enc, err := json.Marshal(data); err == nil {
			hasher = append(hasher, enc...)
		}
	}

	sys, err := c.buildCoord(st)
	if err != nil {
		return nil, err
	}
	st.Coords[c.Coord.Kind] = sys
	st.Hash = cache.Hash(hasher)
	return st, nil
}

// openSource builds the source for one series spec. The returned closer, if
// non-nil, releases the source's connection after loading.
func (c *Chart) openSource(ctx context.Context, spec SeriesSpec) (source.Source, func(), error) {
	switch {
	case len(spec.Data) > 0:
		dims := spec.Dims
		if len(dims) == 0 {
			dims = defaultDims(len(spec.Data[0]))
		}
		return source.NewInline(dims, spec.Data), nil, nil
	case spec.DataFile != "":
		return source.NewFile(spec.DataFile), nil, nil
	case spec.Mongo != nil:
		m := spec.Mongo
		src, err := source.NewMongo(ctx, source.MongoConfig{
			URI:        m.URI,
			Database:   m.Database,
			Collection: m.Collection,
			Dims:       m.Dims,
			Filter:     m.Filter,
			Sort:       m.Sort,
			Limit:      m.Limit,
		})
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close(context.Background()) }, nil
	default:
		return nil, nil, errors.New(errors.ErrCodeInvalidConfig, "series has no data source")
	}
}

// buildCoord constructs the configured coordinate system, filling unset
// extents from the union of all series data.
func (c *Chart) buildCoord(st *pipeline.ChartState) (coord.System, error) {
	xMin, xMax := combinedExtent(st, 0, c.Coord.XMin, c.Coord.XMax)
	yMin, yMax := combinedExtent(st, 1, c.Coord.YMin, c.Coord.YMax)

	switch c.Coord.Kind {
	case coord.KindCartesian:
		return coord.NewCartesian(xMin, xMax, yMin, yMax, c.Width, c.Height, c.Coord.Padding), nil
	case coord.KindPolar:
		return coord.NewPolar(xMin, xMax, yMin, yMax, c.Width, c.Height), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown coordinate system %q", c.Coord.Kind)
	}
}

// combinedExtent computes the [lo, hi] extent of one dimension index across
// every series, honoring explicit overrides. Degenerate or empty data falls
// back to the unit interval.
func combinedExtent(st *pipeline.ChartState, dim int, loOverride, hiOverride *float64) (float64, float64) {
	lo, hi, any := 0.0, 0.0, false
	for _, ser := range st.Series {
		for _, row := range ser.Data.Items {
			if dim >= len(row) {
				continue
			}
			v := row[dim]
			if !any {
				lo, hi, any = v, v, true
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	if !any {
		lo, hi = 0, 1
	}
	if loOverride != nil {
		lo = *loOverride
	}
	if hiOverride != nil {
		hi = *hiOverride
	}
	return lo, hi
}

// defaultDims names unnamed inline dimensions x, y, z, then d3, d4, ...
func defaultDims(n int) []string {
	base := []string{"x", "y", "z"}
	dims := make([]string, n)
	for i := range dims {
		if i < len(base) {
			dims[i] = base[i]
		} else {
			dims[i] = fmt.Sprintf("d%d", i)
		}
	}
	return dims
}
