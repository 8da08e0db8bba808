package source

import (
	"context"
	"encoding/json"
	"os"

	"github.com/matzehuels/chartpipe/pkg/dataset"
	"github.com/matzehuels/chartpipe/pkg/errors"
)

// File loads a dataset from a JSON file of the form:
//
//	{"dims": ["x", "y"], "items": [[0, 12.5], [1, 13.1]]}
type File struct {
	Path string
}

// NewFile creates a file source.
func NewFile(path string) *File { return &File{Path: path} }

// Kind implements Source.
func (s *File) Kind() string { return "file" }

// Name implements Source.
func (s *File) Name() string { return s.Path }

// Load implements Source.
func (s *File) Load(ctx context.Context) (*dataset.Dataset, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "read dataset file %s", s.Path)
	}
	var raw struct {
		Dims  []string    `json:"dims"`
		Items [][]float64 `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "parse dataset file %s", s.Path)
	}
	for _, dim := range raw.Dims {
		if err := errors.ValidateDimName(dim); err != nil {
			return nil, err
		}
	}
	d, err := dataset.New(raw.Dims, raw.Items)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "dataset file %s", s.Path)
	}
	return d, nil
}
