// Package pipeline provides the core rendering pipeline for chartpipe.
//
// This package implements the staged preprocess → process → visual → layout
// pipeline that turns series data into drawable frames, shared by every
// chart type and entry point (CLI, API).
//
// # Architecture
//
// The pipeline consists of three pieces:
//
//  1. Registry: an append-only table mapping (stage kind, priority) to
//     handlers. Chart-type modules populate it at load time; it is
//     read-only once rendering begins, which keeps render output
//     deterministic.
//  2. Scheduler: runs every registered stage for every series of a chart in
//     fixed kind order and ascending priority. A failing stage skips only
//     its own series.
//  3. Progressive controller: decides per series whether the whole dataset
//     is processed in one pass or in bounded chunks, based on the large
//     flag and the effective progressive threshold, and drives the chunk
//     cursor.
//
// # Usage
//
// Chart types register stages at init:
//
//	pipeline.MustRegisterVisual("line:color", colorVisual, pipeline.ForTypes("line"))
//	pipeline.MustRegisterLayout("line:points", pointLayout, pipeline.ForTypes("line"))
//
// Render passes run through a scheduler:
//
//	sched := pipeline.NewScheduler(pipeline.Default(), fileCache, nil, logger)
//	result, err := sched.Run(ctx, state)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := render.RenderSVG(result.Frames)
//
// # Progressive execution
//
// A series with the large flag whose dataset exceeds its effective threshold
// executes progressively: each stage is invoked over successive index ranges
// instead of once over the whole dataset. Chunk ordering is kind-major (all
// chunks of one stage, then the next stage), so visual and layout chunks
// only ever read fully-processed data. Between chunks the scheduler checks
// for context cancellation and pass supersession, which is how an in-flight
// render is abandoned when a newer option update arrives.
package pipeline
