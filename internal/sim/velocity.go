package sim

import (
	"iter"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Speeds summarises a velocity sample.
type Speeds struct {
	Max  float64
	Mean float64
}

// SpeedSummary collects seq and reports its maximum and mean. An empty or
// nil sequence yields zeros.
func SpeedSummary(seq iter.Seq[float64]) Speeds {
	if seq == nil {
		return Speeds{}
	}
	xs := slices.Collect(seq)
	if len(xs) == 0 {
		return Speeds{}
	}
	return Speeds{Max: floats.Max(xs), Mean: stat.Mean(xs, nil)}
}
