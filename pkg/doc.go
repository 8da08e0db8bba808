// Package pkg provides the core libraries for chartpipe chart rendering.
//
// # Overview
//
// Chartpipe turns raw series data into positioned, styled drawable primitives
// by running it through an ordered sequence of transformation stages. The pkg
// directory is organized into five main areas:
//
//  1. [dataset] - Ordered, indexed data collections with named dimensions
//  2. [series] - Declarative per-series models with type-level defaults
//  3. [pipeline] - The stage registry, scheduler, and progressive execution
//  4. [coord] / [render] - Coordinate conversion and primitive output
//  5. [charts] - Concrete chart types plugging stages into the pipeline
//
// # Architecture
//
// The typical data flow through chartpipe:
//
//	Series data (inline, JSON file, MongoDB)
//	         ↓
//	    preprocess stages (normalize, validate)
//	         ↓
//	    process stages (downsampling at STATISTIC priority)
//	         ↓
//	    visual stages (data → color/size attributes)
//	         ↓
//	    layout stages (data → pixel coordinates via [coord])
//	         ↓
//	    SVG/JSON frames ([render] sinks)
//
// # Quick Start
//
// Build a chart state and run the pipeline:
//
//	import (
//	    "github.com/matzehuels/chartpipe/pkg/pipeline"
//	    _ "github.com/matzehuels/chartpipe/pkg/charts/line"
//	)
//
//	sched := pipeline.NewScheduler(pipeline.Default(), nil, nil, logger)
//	result, err := sched.Run(ctx, state)
//	svg := render.RenderSVG(result.Frames, render.WithFrameSize(800, 600))
//
// Large series opt into progressive execution with the "large" option; the
// scheduler then processes them in bounded chunks instead of one pass.
//
// # Main Packages
//
// [pipeline] - Stage registry (kind + priority, append-only), scheduler
// (per-series orchestration with partial-failure isolation), progressive
// execution controller (thresholds, chunk cursor), and the downsampling
// processor.
//
// [series] - SeriesModel construction with defaultOption inheritance across
// a type's Extends chain and per-type capability overrides.
//
// [charts] - Example chart types (line, bar, scatter, candlestick) that
// register their stages at init, the way language parsers register in a
// dependency resolver.
//
// [cache] - File, Redis, and null cache backends used to skip re-rendering
// unchanged chart states.
//
// [source] - Dataset sources: inline values, JSON files, MongoDB collections.
//
// [observability] - Hooks for pass, stage, chunk, and cache events with
// no-op defaults.
//
// [dataset]: https://pkg.go.dev/github.com/matzehuels/chartpipe/pkg/dataset
// [series]: https://pkg.go.dev/github.com/matzehuels/chartpipe/pkg/series
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/chartpipe/pkg/pipeline
// [coord]: https://pkg.go.dev/github.com/matzehuels/chartpipe/pkg/coord
// [render]: https://pkg.go.dev/github.com/matzehuels/chartpipe/pkg/render
// [charts]: https://pkg.go.dev/github.com/matzehuels/chartpipe/pkg/charts
// [cache]: https://pkg.go.dev/github.com/matzehuels/chartpipe/pkg/cache
// [source]: https://pkg.go.dev/github.com/matzehuels/chartpipe/pkg/source
// [observability]: https://pkg.go.dev/github.com/matzehuels/chartpipe/pkg/observability
package pkg
