package calculator

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"TrendSentinel/internal/model"
)

// Summary holds descriptive statistics of a value sequence.
type Summary struct {
	Min  float64
	Max  float64
	Mean float64
}

// Summarize returns min, max and mean of values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, errors.New("no values to summarize")
	}
	return Summary{
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		Mean: stat.Mean(values, nil),
	}, nil
}

// ExtractAxes maps observations onto the regression axes: x is seconds since the
// Unix epoch, y is the observed value.
func ExtractAxes(obs []model.Observation) (xs, ys []float64) {
	xs = make([]float64, len(obs))
	ys = make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = float64(o.Time.Unix())
		ys[i] = o.Value
	}
	return xs, ys
}
