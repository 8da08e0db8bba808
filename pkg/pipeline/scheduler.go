package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/chartpipe/pkg/cache"
	"github.com/matzehuels/chartpipe/pkg/coord"
	"github.com/matzehuels/chartpipe/pkg/dataset"
	cperrors "github.com/matzehuels/chartpipe/pkg/errors"
	"github.com/matzehuels/chartpipe/pkg/observability"
	"github.com/matzehuels/chartpipe/pkg/render"
	"github.com/matzehuels/chartpipe/pkg/series"
)

// =============================================================================
// Chart state - scheduler input
// =============================================================================

// ChartSeries pairs one series' model with its raw dataset.
type ChartSeries struct {
	Model *series.Model
	Data  *dataset.Dataset
}

// ChartState is the full input for one render pass: every series of the
// chart plus the coordinate systems layout stages convert through.
type ChartState struct {
	Width  float64
	Height float64

	// Coords maps coordinate-system kinds to their implementations.
	Coords map[string]coord.System

	Series []ChartSeries

	// Hash is the content hash of the state's configuration and data.
	// When set and a cache is attached, the scheduler reuses cached frames
	// for identical states. Empty disables frame caching.
	Hash string
}

// =============================================================================
// Stage context - per-invocation view
// =============================================================================

// VisualState carries the per-item visual attributes computed by visual
// stages and consumed by layout stages. Slices are indexed by item index.
type VisualState struct {
	Fill   []string
	Stroke []string
	Size   []float64
}

func newVisualState(n int) *VisualState {
	return &VisualState{
		Fill:   make([]string, n),
		Stroke: make([]string, n),
		Size:   make([]float64, n),
	}
}

// StageContext is the view a stage receives for one invocation. For chunked
// invocations Chunk covers the items the stage owns in this call; whole
// invocations receive the full range. Stages mutate the dataset and visual
// state in place; those mutations are visible to all later stages in the
// same pass, which is why stage ordering is a correctness property.
type StageContext struct {
	Ctx         context.Context
	PassID      string
	SeriesIndex int
	Model       *series.Model
	Data        *dataset.Dataset
	Chunk       dataset.Range
	Coord       coord.System
	Visual      *VisualState
	Frame       *render.Frame
	Logger      *log.Logger

	replaced *dataset.Dataset
}

// ReplaceData substitutes the series' dataset for all subsequent stages.
// Only declared filtering/sampling stages (registered with WholeSeries) may
// call this; the scheduler ignores replacements from chunked invocations,
// since a chunk does not own the whole dataset.
func (sc *StageContext) ReplaceData(d *dataset.Dataset) { sc.replaced = d }

// =============================================================================
// Pass - one render pass
// =============================================================================

// Pass is the ephemeral identity of one render pass. Starting a new pass on
// the same scheduler supersedes the previous one: a superseded progressive
// run stops at its next chunk boundary, so no stale chunk is ever written
// into state a newer pass owns. Passes are never reused.
type Pass struct {
	ID         string
	superseded atomic.Bool
}

// Supersede marks the pass as replaced by a newer one.
func (p *Pass) Supersede() { p.superseded.Store(true) }

// Superseded reports whether a newer pass has taken over.
func (p *Pass) Superseded() bool { return p.superseded.Load() }

// =============================================================================
// Result
// =============================================================================

// Stats contains render-pass execution statistics.
type Stats struct {
	SeriesCount int
	FailedCount int
	Chunks      int
	Duration    time.Duration
	StageTime   map[string]time.Duration // keyed by kind name
}

// Result contains the outputs of one render pass.
type Result struct {
	// PassID identifies the pass that produced these frames.
	PassID string

	// Frames holds one frame per series, in series order. A series that
	// failed mid-pass has a nil frame.
	Frames []*render.Frame

	// Errors collects the per-series failures of the pass.
	Errors []error

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit is true when the frames came from the cache.
	CacheHit bool
}

// =============================================================================
// Scheduler
// =============================================================================

// Scheduler executes render passes against a stage registry. It is the only
// owner of per-pass state: datasets are cloned into the pass and the pass
// context is discarded when Run returns.
//
// Execution is a single logical thread of control: stages run strictly
// sequentially because later stages read what earlier ones mutated. The
// progressive chunk loop is the only cooperative yield point.
type Scheduler struct {
	registry *Registry
	cache    cache.Cache
	keyer    cache.Keyer
	logger   *log.Logger

	mu      sync.Mutex
	current *Pass
}

// NewScheduler creates a scheduler.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (frame caching disabled).
func NewScheduler(reg *Registry, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Scheduler {
	if reg == nil {
		reg = Default()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{registry: reg, cache: c, keyer: keyer, logger: logger}
}

// begin starts a new pass, superseding any in-flight one.
func (s *Scheduler) begin() *Pass {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Supersede()
	}
	s.current = &Pass{ID: uuid.NewString()}
	return s.current
}

// Run executes one render pass over every series in the chart.
//
// For each series the four kinds run in fixed order (preprocess, process,
// visual, layout); within a kind, stages run in registry order. A stage
// failure aborts the remainder of that series' pipeline, is recorded on the
// result, and the pass proceeds with the next series: one broken series must
// not blank the whole chart. Cancellation (ctx) and pass supersession stop
// the pass at the next chunk boundary.
func (s *Scheduler) Run(ctx context.Context, st *ChartState) (*Result, error) {
	pass := s.begin()
	start := time.Now()
	observability.Pipeline().OnPassStart(ctx, pass.ID, len(st.Series))

	result := &Result{
		PassID: pass.ID,
		Frames: make([]*render.Frame, len(st.Series)),
		Stats: Stats{
			SeriesCount: len(st.Series),
			StageTime:   make(map[string]time.Duration),
		},
	}

	// Frame cache: identical chart states render identical frames.
	frameKey := ""
	if st.Hash != "" {
		frameKey = s.keyer.FrameKey(st.Hash, cache.FrameKeyOpts{Width: st.Width, Height: st.Height})
		if data, hit, err := s.cache.Get(ctx, frameKey); err == nil && hit {
			if frames, err := render.DecodeJSON(data); err == nil && len(frames) == len(st.Series) {
				observability.Cache().OnCacheHit(ctx, "frame")
				result.Frames = frames
				result.CacheHit = true
				result.Stats.Duration = time.Since(start)
				observability.Pipeline().OnPassComplete(ctx, pass.ID, result.Stats.Duration, 0)
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "frame")
	}

	for i := range st.Series {
		frame, err := s.runSeries(ctx, pass, st, i, result)
		if err != nil {
			if errors.Is(err, ErrPassSuperseded) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result.Stats.Duration = time.Since(start)
				return result, err
			}
			var serr *StageExecutionError
			if errors.As(err, &serr) {
				s.logger.Error("stage failed",
					"pass", pass.ID,
					"series", serr.SeriesIndex,
					"kind", serr.Kind.String(),
					"stage", serr.Stage,
					"err", serr.Cause)
			} else {
				s.logger.Error("series setup failed", "pass", pass.ID, "series", i, "err", err)
			}
			result.Errors = append(result.Errors, err)
			result.Stats.FailedCount++
			continue
		}
		result.Frames[i] = frame
	}

	result.Stats.Duration = time.Since(start)
	s.logger.Info("render pass complete",
		"pass", pass.ID,
		"series", result.Stats.SeriesCount,
		"failed", result.Stats.FailedCount,
		"chunks", result.Stats.Chunks,
		"duration", result.Stats.Duration)

	if frameKey != "" && result.Stats.FailedCount == 0 {
		if data, err := render.RenderJSON(result.Frames); err == nil {
			_ = s.cache.Set(ctx, frameKey, data, cache.TTLFrame)
			observability.Cache().OnCacheSet(ctx, "frame", len(data))
		}
	}

	observability.Pipeline().OnPassComplete(ctx, pass.ID, result.Stats.Duration, result.Stats.FailedCount)
	return result, nil
}

// runSeries executes the full stage pipeline for one series.
//
// Progressive chunk ordering is kind-major: every chunk of one stage
// completes before the next stage starts, and every stage of one kind
// completes before the next kind. Each visual/layout chunk therefore reads
// only fully-processed data it owns.
func (s *Scheduler) runSeries(ctx context.Context, pass *Pass, st *ChartState, idx int, result *Result) (*render.Frame, error) {
	ser := st.Series[idx]
	m := ser.Model

	sys, err := resolveCoord(m, st.Coords)
	if err != nil {
		return nil, err
	}

	// The pass exclusively owns its working copy: sampling and derived
	// dimensions must not leak into the caller's dataset.
	data := ser.Data.Clone()

	var vis *VisualState
	frame := &render.Frame{SeriesIndex: idx, Type: m.Type, Name: m.Name}

	for _, kind := range Kinds {
		// Visual state sizes to the post-process item count, so sampling is
		// invisible to visual/layout stages.
		if kind == KindVisual {
			vis = newVisualState(data.Len())
		}

		// Preprocessors normalize the raw input and always see it whole.
		progressive := kind != KindPreprocess && ShouldUseProgressive(m, data.Len())

		for _, reg := range s.registry.Stages(kind) {
			if !reg.AppliesTo(m.Type) {
				continue
			}
			stageStart := time.Now()
			observability.Pipeline().OnStageStart(ctx, idx, kind.String(), reg.Name)

			data, err = s.invoke(ctx, pass, st, idx, m, data, sys, vis, frame, reg, progressive && !reg.Whole, result)

			elapsed := time.Since(stageStart)
			result.Stats.StageTime[kind.String()] += elapsed
			observability.Pipeline().OnStageComplete(ctx, idx, kind.String(), reg.Name, elapsed, err)

			if err != nil {
				if errors.Is(err, ErrPassSuperseded) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				return nil, &StageExecutionError{SeriesIndex: idx, Kind: kind, Stage: reg.Name, Cause: err}
			}
		}
	}

	return frame, nil
}

// invoke runs one stage over the series, chunked or whole. It returns the
// (possibly replaced) dataset for subsequent stages.
func (s *Scheduler) invoke(
	ctx context.Context,
	pass *Pass,
	st *ChartState,
	idx int,
	m *series.Model,
	data *dataset.Dataset,
	sys coord.System,
	vis *VisualState,
	frame *render.Frame,
	reg Registration,
	chunked bool,
	result *Result,
) (*dataset.Dataset, error) {
	base := StageContext{
		Ctx:         ctx,
		PassID:      pass.ID,
		SeriesIndex: idx,
		Model:       m,
		Data:        data,
		Coord:       sys,
		Visual:      vis,
		Frame:       frame,
		Logger:      s.logger,
	}

	if !chunked {
		sc := base
		sc.Chunk = dataset.Full(data.Len())
		if err := safeCall(reg.Fn, &sc); err != nil {
			return data, err
		}
		if sc.replaced != nil {
			data = sc.replaced
		}
		return data, nil
	}

	cur := NewCursor(data.Len(), ChunkSize(m))
	total := cur.Chunks()
	for {
		// Cooperative yield point: between chunks the pass checks for
		// cancellation and supersession before touching more data.
		if err := ctx.Err(); err != nil {
			return data, err
		}
		if pass.Superseded() {
			return data, ErrPassSuperseded
		}
		r, ok := cur.Next()
		if !ok {
			break
		}
		sc := base
		sc.Chunk = r
		if err := safeCall(reg.Fn, &sc); err != nil {
			return data, err
		}
		result.Stats.Chunks++
		observability.Pipeline().OnChunk(ctx, idx, reg.Kind.String(), cur.Emitted(), total)
	}
	return data, nil
}

// safeCall invokes a stage, converting panics into errors so one broken
// stage cannot take down the whole render pass.
func safeCall(fn StageFn, sc *StageContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panic: %v", r)
		}
	}()
	return fn(sc)
}

// resolveCoord finds the first declared coordinate-system dependency the
// chart state satisfies. Series without dependencies run without one.
func resolveCoord(m *series.Model, coords map[string]coord.System) (coord.System, error) {
	if len(m.Dependencies) == 0 {
		return nil, nil
	}
	for _, dep := range m.Dependencies {
		if sys, ok := coords[dep]; ok {
			return sys, nil
		}
	}
	return nil, cperrors.New(cperrors.ErrCodeCoordNotFound,
		"series type %q requires coordinate system %v", m.Type, m.Dependencies)
}
