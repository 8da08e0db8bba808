package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartpipe/pkg/cache"
	"github.com/matzehuels/chartpipe/pkg/coord"
	"github.com/matzehuels/chartpipe/pkg/dataset"
	cperrors "github.com/matzehuels/chartpipe/pkg/errors"
	"github.com/matzehuels/chartpipe/pkg/render"
	"github.com/matzehuels/chartpipe/pkg/series"
)

func testLogger() *log.Logger { return log.New(io.Discard) }

func testState(t *testing.T, opts series.Options, seriesCount, itemsPerSeries int) *ChartState {
	t.Helper()
	st := &ChartState{Width: 800, Height: 600, Coords: map[string]coord.System{}}
	for range seriesCount {
		st.Series = append(st.Series, ChartSeries{
			Model: testModel(t, opts),
			Data:  sampleData(t, itemsPerSeries),
		})
	}
	return st
}

func TestRunFailureIsolation(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(KindLayout, PriorityLayout, "flaky", func(sc *StageContext) error {
		if sc.SeriesIndex == 2 {
			return fmt.Errorf("synthetic failure")
		}
		sc.Frame.Add(render.Rect(0, 0, 1, 1, render.Style{}))
		return nil
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	sched := NewScheduler(reg, nil, nil, testLogger())
	st := testState(t, series.Options{}, 5, 10)

	result, err := sched.Run(context.Background(), st)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// One broken series must not blank the chart.
	for _, i := range []int{0, 1, 3, 4} {
		if result.Frames[i] == nil {
			t.Errorf("series %d has no frame; healthy series must complete", i)
		}
	}
	if result.Frames[2] != nil {
		t.Error("failed series should have a nil frame")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors has %d entries, want 1", len(result.Errors))
	}

	var serr *StageExecutionError
	if !errors.As(result.Errors[0], &serr) {
		t.Fatalf("error = %T, want *StageExecutionError", result.Errors[0])
	}
	if serr.SeriesIndex != 2 || serr.Kind != KindLayout || serr.Stage != "flaky" {
		t.Errorf("StageExecutionError = %+v, want series=2 kind=layout stage=flaky", serr)
	}
	if result.Stats.FailedCount != 1 || result.Stats.SeriesCount != 5 {
		t.Errorf("Stats = %+v, want 1 failed of 5", result.Stats)
	}
}

func TestRunRecoversStagePanic(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(KindProcess, PriorityProcessFilter, "boom", func(sc *StageContext) error {
		panic("stage exploded")
	})

	sched := NewScheduler(reg, nil, nil, testLogger())
	st := testState(t, series.Options{}, 1, 5)

	result, err := sched.Run(context.Background(), st)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors has %d entries, want 1", len(result.Errors))
	}
	if !strings.Contains(result.Errors[0].Error(), "panic") {
		t.Errorf("error %q should mention the panic", result.Errors[0])
	}
}

func TestRunProgressiveChunking(t *testing.T) {
	var preprocessRanges, layoutRanges []dataset.Range

	reg := NewRegistry()
	_ = reg.Register(KindPreprocess, PriorityPreprocess, "record-pre", func(sc *StageContext) error {
		preprocessRanges = append(preprocessRanges, sc.Chunk)
		return nil
	})
	_ = reg.Register(KindLayout, PriorityLayout, "record-layout", func(sc *StageContext) error {
		layoutRanges = append(layoutRanges, sc.Chunk)
		return nil
	})

	opts := series.Options{
		"large":                true,
		"largeThreshold":       10,
		"progressiveThreshold": 10,
		"progressive":          10,
	}
	sched := NewScheduler(reg, nil, nil, testLogger())
	st := testState(t, opts, 1, 35)

	result, err := sched.Run(context.Background(), st)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// Preprocessors always see the dataset whole.
	if len(preprocessRanges) != 1 || preprocessRanges[0] != dataset.Full(35) {
		t.Errorf("preprocess ranges = %v, want one full range", preprocessRanges)
	}

	// Layout runs chunked: ceil(35/10) = 4 chunks partitioning [0, 35).
	want := []dataset.Range{{Start: 0, End: 10}, {Start: 10, End: 20}, {Start: 20, End: 30}, {Start: 30, End: 35}}
	if len(layoutRanges) != len(want) {
		t.Fatalf("layout ran %d chunks, want %d", len(layoutRanges), len(want))
	}
	for i, r := range want {
		if layoutRanges[i] != r {
			t.Errorf("chunk %d = %+v, want %+v", i, layoutRanges[i], r)
		}
	}
	if result.Stats.Chunks != 4 {
		t.Errorf("Stats.Chunks = %d, want 4", result.Stats.Chunks)
	}
}

func TestRunIgnoresReplaceDataFromChunkedStage(t *testing.T) {
	var layoutLen int

	reg := NewRegistry()
	_ = reg.Register(KindProcess, PriorityProcessFilter, "rogue", func(sc *StageContext) error {
		// Chunked stages do not own the whole dataset; this must be ignored.
		tiny, _ := dataset.New([]string{"x", "y"}, [][]float64{{0, 0}})
		sc.ReplaceData(tiny)
		return nil
	})
	_ = reg.Register(KindLayout, PriorityLayout, "measure", func(sc *StageContext) error {
		layoutLen = sc.Data.Len()
		return nil
	})

	opts := series.Options{
		"large":                true,
		"largeThreshold":       10,
		"progressiveThreshold": 10,
	}
	sched := NewScheduler(reg, nil, nil, testLogger())
	st := testState(t, opts, 1, 35)

	if _, err := sched.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if layoutLen != 35 {
		t.Errorf("layout saw %d items, want 35 (chunked replacement must be ignored)", layoutLen)
	}
}

func TestRunWholeSeriesStageNeverChunks(t *testing.T) {
	calls := 0
	var seen dataset.Range

	reg := NewRegistry()
	_ = reg.Register(KindProcess, PriorityProcessStatistic, "whole", func(sc *StageContext) error {
		calls++
		seen = sc.Chunk
		return nil
	}, WholeSeries())

	opts := series.Options{
		"large":                true,
		"largeThreshold":       10,
		"progressiveThreshold": 10,
	}
	sched := NewScheduler(reg, nil, nil, testLogger())
	st := testState(t, opts, 1, 35)

	if _, err := sched.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("whole-series stage ran %d times, want 1", calls)
	}
	if seen != dataset.Full(35) {
		t.Errorf("whole-series stage saw %+v, want full range", seen)
	}
}

func TestRunLeavesCallerDataUntouched(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(KindProcess, PriorityProcessFilter, "mutate", func(sc *StageContext) error {
		for i := sc.Chunk.Start; i < sc.Chunk.End; i++ {
			sc.Data.Items[i][1] = -1
		}
		return nil
	})

	sched := NewScheduler(reg, nil, nil, testLogger())
	st := testState(t, series.Options{}, 1, 5)

	if _, err := sched.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if st.Series[0].Data.Items[1][1] == -1 {
		t.Error("pass mutations leaked into the caller's dataset")
	}
}

func TestRunMissingCoordinateSystem(t *testing.T) {
	typeReg := series.NewTypeRegistry()
	if err := typeReg.Register(series.Spec{Type: "gridded", Dependencies: []string{coord.KindCartesian}}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	m, err := typeReg.NewModel("gridded", series.Options{})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}

	sched := NewScheduler(NewRegistry(), nil, nil, testLogger())
	st := &ChartState{
		Width: 800, Height: 600,
		Coords: map[string]coord.System{}, // no cartesian grid configured
		Series: []ChartSeries{{Model: m, Data: sampleData(t, 3)}},
	}

	result, err := sched.Run(context.Background(), st)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors has %d entries, want 1", len(result.Errors))
	}
	if !cperrors.HasCode(result.Errors[0], cperrors.ErrCodeCoordNotFound) {
		t.Errorf("error = %v, want COORD_NOT_FOUND", result.Errors[0])
	}
}

func TestRunFrameCache(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(KindLayout, PriorityLayout, "rects", func(sc *StageContext) error {
		for i := sc.Chunk.Start; i < sc.Chunk.End; i++ {
			sc.Frame.Add(render.Rect(float64(i), 0, 1, 1, render.Style{Fill: "#000"}))
		}
		return nil
	})

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() failed: %v", err)
	}
	defer c.Close()

	sched := NewScheduler(reg, c, nil, testLogger())
	st := testState(t, series.Options{}, 2, 5)
	st.Hash = "deadbeef"

	first, err := sched.Run(context.Background(), st)
	if err != nil {
		t.Fatalf("first Run() failed: %v", err)
	}
	if first.CacheHit {
		t.Fatal("first pass should not hit the cache")
	}

	second, err := sched.Run(context.Background(), st)
	if err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("identical state should hit the frame cache")
	}
	if len(second.Frames) != 2 {
		t.Fatalf("cached result has %d frames, want 2", len(second.Frames))
	}
	for i, f := range second.Frames {
		if f == nil || len(f.Primitives) != 5 {
			t.Errorf("cached frame %d lost primitives: %+v", i, f)
		}
	}
}

func TestRunPassSupersession(t *testing.T) {
	sched := NewScheduler(NewRegistry(), nil, nil, testLogger())

	first := sched.begin()
	second := sched.begin()

	if !first.Superseded() {
		t.Error("starting a new pass must supersede the previous one")
	}
	if second.Superseded() {
		t.Error("the new pass must not be superseded")
	}
	if first.ID == second.ID {
		t.Error("passes must have distinct IDs")
	}
}
