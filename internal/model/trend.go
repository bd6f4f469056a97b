package model

import (
	"fmt"
	"time"
)

// TrendLabel is the tri-state classification of a fitted trend.
type TrendLabel string

const (
	TrendRising  TrendLabel = "RISING"
	TrendFalling TrendLabel = "FALLING"
	TrendStable  TrendLabel = "STABLE"
)

// PeriodLayout formats period boundaries as month/year.
const PeriodLayout = "01/2006"

// TrendResult is the outcome of classifying one series.
type TrendResult struct {
	Name         string
	Code         int
	Slope        float64 // value units per second
	SlopeStdErr  float64
	Intercept    float64
	RSquared     float64
	PValue       float64
	Label        TrendLabel
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Observations int
	MinValue     float64
	MaxValue     float64
	MeanValue    float64

	// Series is kept for chart rendering.
	Series *ObservationSeries
}

// Period renders the analyzed span as "MM/YYYY to MM/YYYY".
func (r *TrendResult) Period() string {
	return fmt.Sprintf("%s to %s", r.PeriodStart.Format(PeriodLayout), r.PeriodEnd.Format(PeriodLayout))
}

// Significant reports whether the slope passed the significance test.
func (r *TrendResult) Significant(alpha float64) bool {
	return r.PValue < alpha
}

// FittedAt evaluates the trend line at t.
func (r *TrendResult) FittedAt(t time.Time) float64 {
	return r.Intercept + r.Slope*float64(t.Unix())
}
