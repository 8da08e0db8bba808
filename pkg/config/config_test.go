package config

import (
	"context"
	"strings"
	"testing"

	_ "github.com/matzehuels/chartpipe/pkg/charts/line"
	"github.com/matzehuels/chartpipe/pkg/coord"
	"github.com/matzehuels/chartpipe/pkg/errors"
)

const minimalSpec = `
title = "latency"

[[series]]
type = "line"
name = "p99"
data = [[0.0, 12.5], [1.0, 13.1], [2.0, 11.8]]
`

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(minimalSpec))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if c.Width != DefaultWidth || c.Height != DefaultHeight {
		t.Errorf("frame = %gx%g, want %gx%g", c.Width, c.Height, DefaultWidth, DefaultHeight)
	}
	if c.Coord.Kind != coord.KindCartesian {
		t.Errorf("Coord.Kind = %q, want %q", c.Coord.Kind, coord.KindCartesian)
	}
	if c.Coord.Padding != DefaultPadding {
		t.Errorf("Coord.Padding = %g, want %g", c.Coord.Padding, DefaultPadding)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{"not toml", `title = [unclosed`},
		{"no series", `title = "empty"`},
		{"series without type", `
[[series]]
data = [[0.0, 1.0]]
`},
		{"series without data", `
[[series]]
type = "line"
`},
		{"two data sources", `
[[series]]
type = "line"
data = [[0.0, 1.0]]
dataFile = "points.json"
`},
		{"negative frame", `
width = -100

[[series]]
type = "line"
data = [[0.0, 1.0]]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.spec))
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error should carry %s: %v", errors.ErrCodeInvalidConfig, err)
			}
		})
	}
}

func TestStateFromInlineData(t *testing.T) {
	c, err := Parse([]byte(minimalSpec))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	st, err := c.State(context.Background())
	if err != nil {
		t.Fatalf("State() failed: %v", err)
	}

	if len(st.Series) != 1 {
		t.Fatalf("got %d series, want 1", len(st.Series))
	}
	s := st.Series[0]
	if s.Model.Type != "line" {
		t.Errorf("Model.Type = %q, want line", s.Model.Type)
	}
	if got := s.Model.Options.String("name", ""); got != "p99" {
		t.Errorf("series name option = %q, want p99", got)
	}
	if s.Data.Len() != 3 || s.Data.DimIndex("y") != 1 {
		t.Errorf("dataset = %d rows, dims %v", s.Data.Len(), s.Data.Dims)
	}
	if _, ok := st.Coords[coord.KindCartesian]; !ok {
		t.Error("cartesian coordinate system should be registered")
	}
	if len(st.Hash) != 64 {
		t.Errorf("Hash length = %d, want 64", len(st.Hash))
	}
}

func TestStateHashCoversData(t *testing.T) {
	a, _ := Parse([]byte(minimalSpec))
	b, _ := Parse([]byte(strings.Replace(minimalSpec, "12.5", "99.0", 1)))

	sa, err := a.State(context.Background())
	if err != nil {
		t.Fatalf("State() failed: %v", err)
	}
	sb, err := b.State(context.Background())
	if err != nil {
		t.Fatalf("State() failed: %v", err)
	}
	if sa.Hash == sb.Hash {
		t.Error("different data must produce different state hashes")
	}
}

func TestStateCoordOverrides(t *testing.T) {
	spec := `
[coord]
kind = "cartesian2d"
yMin = 0.0
yMax = 100.0

[[series]]
type = "line"
data = [[0.0, 40.0], [1.0, 60.0]]
`
	c, err := Parse([]byte(spec))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	st, err := c.State(context.Background())
	if err != nil {
		t.Fatalf("State() failed: %v", err)
	}
	sys, ok := st.Coords[coord.KindCartesian].(*coord.Cartesian)
	if !ok {
		t.Fatal("expected a cartesian system")
	}
	if sys.Y.DataMin != 0 || sys.Y.DataMax != 100 {
		t.Errorf("Y extent = [%g, %g], want [0, 100]", sys.Y.DataMin, sys.Y.DataMax)
	}
}

func TestStateUnknownCoordKind(t *testing.T) {
	spec := `
[coord]
kind = "geo"

[[series]]
type = "line"
data = [[0.0, 1.0]]
`
	c, err := Parse([]byte(spec))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if _, err := c.State(context.Background()); !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("State() = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestStateProgressiveOptionFromTOML(t *testing.T) {
	spec := `
[[series]]
type = "line"
data = [[0.0, 1.0], [1.0, 2.0]]

[series.options]
large = true
progressive = 250
`
	c, err := Parse([]byte(spec))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	st, err := c.State(context.Background())
	if err != nil {
		t.Fatalf("State() failed: %v", err)
	}
	m := st.Series[0].Model
	if !m.Progressive.IsSet() || m.Progressive.Step() != 250 {
		t.Errorf("progressive = set=%v step=%d, want explicit step 250",
			m.Progressive.IsSet(), m.Progressive.Step())
	}
}

func TestDefaultDims(t *testing.T) {
	got := defaultDims(5)
	want := []string{"x", "y", "z", "d3", "d4"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("defaultDims(5)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
