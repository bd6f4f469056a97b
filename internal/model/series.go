package model

import (
	"fmt"
	"sort"
	"time"
)

// PayloadFormat selects the output format requested from the data source.
type PayloadFormat string

const (
	FormatCSV  PayloadFormat = "csv"
	FormatJSON PayloadFormat = "json"
)

// LookbackWindow is the date range requested when fetching a series.
// A zero window means all available history.
type LookbackWindow struct {
	Start time.Time
	End   time.Time
}

// AllHistory returns the unbounded window.
func AllHistory() LookbackWindow { return LookbackWindow{} }

// LastYears returns a window covering the given number of years up to now.
// Non-positive years yield the unbounded window.
func LastYears(years int, now time.Time) LookbackWindow {
	if years <= 0 {
		return AllHistory()
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return LookbackWindow{Start: end.AddDate(-years, 0, 0), End: end}
}

// IsAll reports whether the window requests all available history.
func (w LookbackWindow) IsAll() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

func (w LookbackWindow) String() string {
	if w.IsAll() {
		return "all"
	}
	return fmt.Sprintf("%s-%s", w.Start.Format("02/01/2006"), w.End.Format("02/01/2006"))
}

// SeriesRequest describes one series to analyze. Codes are alternates tried in order.
type SeriesRequest struct {
	Codes  []int
	Name   string
	Window LookbackWindow
}

// NewSeriesRequest builds a request, copying the codes so later edits by the caller
// cannot leak in.
func NewSeriesRequest(name string, window LookbackWindow, codes ...int) (SeriesRequest, error) {
	if name == "" {
		return SeriesRequest{}, fmt.Errorf("series name is required")
	}
	if len(codes) == 0 {
		return SeriesRequest{}, fmt.Errorf("series %q: at least one code is required", name)
	}
	for _, c := range codes {
		if c <= 0 {
			return SeriesRequest{}, fmt.Errorf("series %q: invalid code %d", name, c)
		}
	}
	return SeriesRequest{
		Codes:  append([]int(nil), codes...),
		Name:   name,
		Window: window,
	}, nil
}

// RawPayload is an undecoded response body from the data source.
type RawPayload struct {
	Code      int
	Format    PayloadFormat
	URL       string
	Body      []byte
	FetchedAt time.Time
}

// Observation is a single dated value.
type Observation struct {
	Time  time.Time
	Value float64
}

// ObservationSeries holds observations in ascending time order.
type ObservationSeries struct {
	Observations []Observation
}

// NewObservationSeries sorts the observations by time, keeping the input order for
// equal timestamps, and drops every repeat of a timestamp after its first occurrence.
func NewObservationSeries(obs []Observation) *ObservationSeries {
	sorted := append([]Observation(nil), obs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:0]
	for i, o := range sorted {
		if i > 0 && o.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, o)
	}
	return &ObservationSeries{Observations: out}
}

// Len returns the number of observations.
func (s *ObservationSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Observations)
}

// Span returns the first and last timestamps. ok is false for an empty series.
func (s *ObservationSeries) Span() (first, last time.Time, ok bool) {
	if s.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Observations[0].Time, s.Observations[len(s.Observations)-1].Time, true
}
