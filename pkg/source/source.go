// Package source loads series datasets from their backing stores.
//
// Three sources are supported: inline values embedded in a chart spec, JSON
// files on disk, and MongoDB collections. All of them produce a
// [dataset.Dataset]; the pipeline does not care where data came from.
package source

import (
	"context"
	"time"

	"github.com/matzehuels/chartpipe/pkg/dataset"
	"github.com/matzehuels/chartpipe/pkg/observability"
)

// Source loads one series' dataset.
type Source interface {
	// Kind identifies the backend ("inline", "file", "mongo").
	Kind() string

	// Name identifies the concrete resource (path, collection).
	Name() string

	// Load fetches the dataset.
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// Load fetches through a source while reporting to the source hooks.
func Load(ctx context.Context, s Source) (*dataset.Dataset, error) {
	start := time.Now()
	observability.Source().OnLoadStart(ctx, s.Kind(), s.Name())
	d, err := s.Load(ctx)
	items := 0
	if d != nil {
		items = d.Len()
	}
	observability.Source().OnLoadComplete(ctx, s.Kind(), s.Name(), items, time.Since(start), err)
	return d, err
}

// Inline is a source for values embedded directly in a chart spec.
type Inline struct {
	Dims  []string
	Items [][]float64
}

// NewInline creates an inline source.
func NewInline(dims []string, items [][]float64) *Inline {
	return &Inline{Dims: dims, Items: items}
}

// Kind implements Source.
func (s *Inline) Kind() string { return "inline" }

// Name implements Source.
func (s *Inline) Name() string { return "inline" }

// Load implements Source.
func (s *Inline) Load(ctx context.Context) (*dataset.Dataset, error) {
	return dataset.New(s.Dims, s.Items)
}
