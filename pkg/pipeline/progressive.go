package pipeline

import (
	"github.com/matzehuels/chartpipe/pkg/dataset"
	"github.com/matzehuels/chartpipe/pkg/series"
)

// ShouldUseProgressive decides whether a series executes progressively:
// chunked execution applies iff the series' capabilities yield a positive
// chunk size (which requires the large flag) and the dataset exceeds the
// effective progressive threshold. A series without the large flag never
// chunks, regardless of dataset size.
func ShouldUseProgressive(m *series.Model, datasetSize int) bool {
	caps := m.Capabilities()
	if caps.ProgressiveStep(m) <= 0 {
		return false
	}
	return datasetSize > caps.ProgressiveThreshold(m)
}

// ChunkSize returns the chunk size for a progressive series: the explicit
// per-series item count when configured, otherwise
// [series.DefaultProgressiveStep].
func ChunkSize(m *series.Model) int {
	if s := m.Capabilities().ProgressiveStep(m); s > 0 {
		return s
	}
	return series.DefaultProgressiveStep
}

// Cursor walks a dataset in fixed-size chunks. The emitted ranges partition
// [0, total) with no overlap and no gap: ceil(total/step) chunks of size
// step, except a possibly shorter final chunk.
//
// Cursors are pass-scoped: every render pass starts a fresh cursor at zero;
// progressive execution never resumes across passes.
type Cursor struct {
	next  int
	total int
	step  int
	done  int
}

// NewCursor creates a cursor over total items with the given chunk size.
// A non-positive step degrades to a single whole-range chunk.
func NewCursor(total, step int) *Cursor {
	if step <= 0 {
		step = total
	}
	return &Cursor{total: total, step: step}
}

// Next returns the next chunk range. ok is false once the dataset is
// exhausted.
func (c *Cursor) Next() (r dataset.Range, ok bool) {
	if c.next >= c.total {
		return dataset.Range{}, false
	}
	end := min(c.next+c.step, c.total)
	r = dataset.Range{Start: c.next, End: end}
	c.next = end
	c.done++
	return r, true
}

// Chunks returns the total number of chunks the cursor will emit.
func (c *Cursor) Chunks() int {
	if c.total == 0 {
		return 0
	}
	return (c.total + c.step - 1) / c.step
}

// Emitted returns the number of chunks emitted so far.
func (c *Cursor) Emitted() int { return c.done }
