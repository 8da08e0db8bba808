// Package dataset provides the ordered, indexed data collection that flows
// through the chart pipeline.
//
// A Dataset holds a sequence of items, each carrying one value per named
// dimension. Item indices are stable identifiers for the duration of one
// pipeline run: a stage may attach derived dimensions, but only a declared
// filtering or sampling stage may change the item count or renumber items.
//
// Datasets serialize to JSON and BSON so they can be cached, served over the
// API, and loaded from document stores.
package dataset

import "fmt"

// Range is a half-open [Start, End) interval of item indices, used as the
// unit of progressive (chunked) execution.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of items covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// Full returns the range covering an entire dataset of n items.
func Full(n int) Range { return Range{Start: 0, End: n} }

// Dataset is an ordered collection of multi-dimensional data items.
type Dataset struct {
	Dims  []string    `json:"dims" bson:"dims"`
	Items [][]float64 `json:"items" bson:"items"`
}

// New creates a dataset from dimension names and item rows.
// Each row must have exactly one value per dimension.
func New(dims []string, items [][]float64) (*Dataset, error) {
	for i, row := range items {
		if len(row) != len(dims) {
			return nil, fmt.Errorf("item %d has %d values, want %d dimensions", i, len(row), len(dims))
		}
	}
	return &Dataset{Dims: dims, Items: items}, nil
}

// Len returns the number of items.
func (d *Dataset) Len() int { return len(d.Items) }

// DimIndex returns the position of a named dimension, or -1 if absent.
func (d *Dataset) DimIndex(name string) int {
	for i, dim := range d.Dims {
		if dim == name {
			return i
		}
	}
	return -1
}

// Value returns the value of dimension dim for item i.
// Returns 0, false when the dimension does not exist.
func (d *Dataset) Value(i int, dim string) (float64, bool) {
	di := d.DimIndex(dim)
	if di < 0 {
		return 0, false
	}
	return d.Items[i][di], true
}

// Values returns the raw value row for item i. Callers must not reorder it.
func (d *Dataset) Values(i int) []float64 { return d.Items[i] }

// Slice returns the item rows covered by r. The backing arrays are shared
// with the dataset; chunked stages read and write through the same storage.
func (d *Dataset) Slice(r Range) [][]float64 {
	return d.Items[r.Start:r.End]
}

// AppendDim attaches a derived dimension with one value per existing item.
// This is the only mutation ordinary stages may perform on dataset shape.
func (d *Dataset) AppendDim(name string, values []float64) error {
	if len(values) != len(d.Items) {
		return fmt.Errorf("dimension %q has %d values, want %d", name, len(values), len(d.Items))
	}
	if d.DimIndex(name) >= 0 {
		return fmt.Errorf("dimension %q already exists", name)
	}
	d.Dims = append(d.Dims, name)
	for i := range d.Items {
		d.Items[i] = append(d.Items[i], values[i])
	}
	return nil
}

// Clone returns a deep copy. The scheduler clones each series' dataset at
// the start of a pass so the caller's input survives sampling and derived
// dimensions.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Dims:  append([]string(nil), d.Dims...),
		Items: make([][]float64, len(d.Items)),
	}
	for i, row := range d.Items {
		out.Items[i] = append([]float64(nil), row...)
	}
	return out
}

// Extent returns the minimum and maximum value of a dimension across all
// items. ok is false when the dimension is missing or the dataset is empty.
func (d *Dataset) Extent(dim string) (lo, hi float64, ok bool) {
	di := d.DimIndex(dim)
	if di < 0 || len(d.Items) == 0 {
		return 0, 0, false
	}
	lo, hi = d.Items[0][di], d.Items[0][di]
	for _, row := range d.Items[1:] {
		if row[di] < lo {
			lo = row[di]
		}
		if row[di] > hi {
			hi = row[di]
		}
	}
	return lo, hi, true
}
