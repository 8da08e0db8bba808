package pipeline

import (
	"fmt"

	"github.com/matzehuels/chartpipe/pkg/dataset"
	"github.com/matzehuels/chartpipe/pkg/series"
)

func init() {
	// The downsampler is a declared sampling stage: it must see the whole
	// dataset (never chunked) and is the only builtin allowed to change
	// item count. Registered at the STATISTIC slot so it runs after filters
	// and before every visual/layout stage.
	MustRegisterProcessor(PriorityProcessStatistic, "downsample", Downsample, WholeSeries())
}

// Downsample reduces an oversized dataset before later stages run. Each
// output item aggregates a contiguous run of SampleRate input items using
// the series' named method; the final run may be shorter. Item ordering is
// preserved.
//
// The stage is a no-op when the series requests no sampling ("" or "none"),
// when the rate aggregates nothing (<= 1), or when the dataset is at or
// below the sampling threshold — in those cases item count and values are
// untouched.
func Downsample(sc *StageContext) error {
	m := sc.Model
	if m.Sampling == "" || m.Sampling == series.SamplingNone {
		return nil
	}
	rate := m.SampleRate
	if rate <= 1 {
		return nil
	}

	n := sc.Data.Len()
	threshold := max(m.SampleThreshold, rate)
	if n <= threshold {
		return nil
	}

	dims := len(sc.Data.Dims)
	out := make([][]float64, 0, (n+rate-1)/rate)
	for start := 0; start < n; start += rate {
		end := min(start+rate, n)
		row := make([]float64, dims)
		for d := 0; d < dims; d++ {
			v, err := aggregate(m.Sampling, sc.Data.Items[start:end], d)
			if err != nil {
				return err
			}
			row[d] = v
		}
		out = append(out, row)
	}

	reduced, err := dataset.New(append([]string(nil), sc.Data.Dims...), out)
	if err != nil {
		return err
	}
	sc.ReplaceData(reduced)
	return nil
}

// aggregate folds one dimension of a run of rows with the named method.
func aggregate(method string, rows [][]float64, d int) (float64, error) {
	switch method {
	case series.SamplingAverage:
		sum := 0.0
		for _, row := range rows {
			sum += row[d]
		}
		return sum / float64(len(rows)), nil
	case series.SamplingSum:
		sum := 0.0
		for _, row := range rows {
			sum += row[d]
		}
		return sum, nil
	case series.SamplingMax:
		v := rows[0][d]
		for _, row := range rows[1:] {
			if row[d] > v {
				v = row[d]
			}
		}
		return v, nil
	case series.SamplingMin:
		v := rows[0][d]
		for _, row := range rows[1:] {
			if row[d] < v {
				v = row[d]
			}
		}
		return v, nil
	default:
		return 0, fmt.Errorf("unknown sampling method %q", method)
	}
}
