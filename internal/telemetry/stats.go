package telemetry

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes one telemetry column.
type Summary struct {
	Field string
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
	Last  float64
}

// Series extracts one column from samples.
func Series(samples []Sample, field string) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		v, ok := s.field(field)
		if !ok {
			return nil, fmt.Errorf("unknown telemetry field: %s", field)
		}
		out[i] = v
	}
	if len(samples) == 0 {
		if _, ok := (Sample{}).field(field); !ok {
			return nil, fmt.Errorf("unknown telemetry field: %s", field)
		}
	}
	return out, nil
}

// Summarize computes statistics for each named field. Empty input yields
// zero summaries.
func Summarize(samples []Sample, fields ...string) ([]Summary, error) {
	if len(fields) == 0 {
		fields = Fields
	}
	out := make([]Summary, 0, len(fields))
	for _, f := range fields {
		xs, err := Series(samples, f)
		if err != nil {
			return nil, err
		}
		s := Summary{Field: f}
		if len(xs) > 0 {
			s.Mean, s.Std = stat.MeanStdDev(xs, nil)
			if len(xs) == 1 {
				s.Std = 0
			}
			s.Min = floats.Min(xs)
			s.Max = floats.Max(xs)
			s.Last = xs[len(xs)-1]
		}
		out = append(out, s)
	}
	return out, nil
}
