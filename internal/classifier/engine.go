// Package classifier fits a linear trend to a series and labels it.
package classifier

import (
	"errors"
	"fmt"
	"sort"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/model"
)

// Significance is the p-value below which a slope counts as a real trend.
const Significance = 0.05

// DefaultMinSamples is the smallest sample a line can be fitted to.
const DefaultMinSamples = 2

// Classifier labels series trends. MinSamples is the minimum observation count
// accepted before a regression is attempted.
type Classifier struct {
	MinSamples int
}

// New creates a Classifier. Values below DefaultMinSamples are raised to it.
func New(minSamples int) *Classifier {
	if minSamples < DefaultMinSamples {
		minSamples = DefaultMinSamples
	}
	return &Classifier{MinSamples: minSamples}
}

// Label maps a fitted slope and its p-value to a trend label.
// A significant slope of exactly zero is labelled FALLING: only a strictly
// positive slope counts as rising.
func Label(slope, pValue float64) model.TrendLabel {
	if pValue < Significance {
		if slope > 0 {
			return model.TrendRising
		}
		return model.TrendFalling
	}
	return model.TrendStable
}

// Classify regresses value on time and builds the trend result for the named series.
// The input is not modified; observations are sorted by time on a copy.
func (c *Classifier) Classify(name string, series *model.ObservationSeries) (*model.TrendResult, error) {
	var obs []model.Observation
	if series != nil {
		obs = append(obs, series.Observations...)
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Time.Before(obs[j].Time) })

	n := len(obs)
	if n < DefaultMinSamples {
		return nil, &model.Failure{
			Kind:   model.KindDegenerateRegression,
			Series: name,
			Err:    fmt.Errorf("%d observation(s), need at least %d", n, DefaultMinSamples),
		}
	}
	if n < c.MinSamples {
		return nil, &model.Failure{
			Kind:   model.KindInsufficientSample,
			Series: name,
			Err:    fmt.Errorf("%d observations, minimum is %d", n, c.MinSamples),
		}
	}

	xs, ys := calculator.ExtractAxes(obs)
	reg, err := calculator.LinearRegression(xs, ys)
	if err != nil {
		if errors.Is(err, calculator.ErrDegenerate) {
			return nil, &model.Failure{Kind: model.KindDegenerateRegression, Series: name, Err: err}
		}
		return nil, fmt.Errorf("regress %s: %w", name, err)
	}

	summary, err := calculator.Summarize(ys)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", name, err)
	}

	return &model.TrendResult{
		Name:         name,
		Slope:        reg.Slope,
		SlopeStdErr:  reg.StdErr,
		Intercept:    reg.Intercept,
		RSquared:     reg.RSquared,
		PValue:       reg.PValue,
		Label:        Label(reg.Slope, reg.PValue),
		PeriodStart:  obs[0].Time,
		PeriodEnd:    obs[n-1].Time,
		Observations: n,
		MinValue:     summary.Min,
		MaxValue:     summary.Max,
		MeanValue:    summary.Mean,
		Series:       &model.ObservationSeries{Observations: obs},
	}, nil
}
