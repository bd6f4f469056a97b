package calculator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDegenerate is returned when the input cannot support a regression fit.
var ErrDegenerate = errors.New("degenerate regression input")

// Regression holds an ordinary least-squares fit of y on x.
type Regression struct {
	Slope     float64
	Intercept float64
	R         float64 // Pearson correlation
	RSquared  float64
	PValue    float64 // two-sided, H0: slope == 0
	StdErr    float64 // standard error of the slope
	N         int
}

// LinearRegression fits y = Intercept + Slope*x and tests the slope against zero
// with a t-test on n-2 degrees of freedom.
// With exactly two points the fit is exact and the p-value is 0.
func LinearRegression(xs, ys []float64) (*Regression, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("length mismatch: %d x values, %d y values", len(xs), len(ys))
	}
	n := len(xs)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d point(s)", ErrDegenerate, n)
	}
	if !hasSpread(xs) {
		return nil, fmt.Errorf("%w: fewer than 2 distinct x values", ErrDegenerate)
	}
	if !hasSpread(ys) {
		return nil, fmt.Errorf("%w: y has zero variance", ErrDegenerate)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r := math.Max(-1, math.Min(1, stat.Correlation(xs, ys, nil)))
	r2 := r * r

	reg := &Regression{
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		RSquared:  r2,
		N:         n,
	}

	df := float64(n - 2)
	if df == 0 || r2 >= 1 {
		return reg, nil
	}

	t := r * math.Sqrt(df/(1-r2))
	student := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	reg.PValue = 2 * student.CDF(-math.Abs(t))
	reg.StdErr = math.Sqrt((1 - r2) * stat.Variance(ys, nil) / stat.Variance(xs, nil) / df)
	return reg, nil
}

func hasSpread(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return true
		}
	}
	return false
}
