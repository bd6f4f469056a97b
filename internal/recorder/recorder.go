// Package recorder holds the results of one analysis run.
package recorder

import (
	"time"

	"github.com/google/uuid"

	"TrendSentinel/internal/model"
)

// FailedAnalysis records a series that could not be analyzed.
type FailedAnalysis struct {
	Series string
	Kind   model.FailureKind // empty when the error carried no Failure
	Err    error
}

// Recorder accepts per-series outcomes as a run progresses.
type Recorder interface {
	RecordResult(res *model.TrendResult)
	RecordFailure(series string, err error)
}

// Store is the run-scoped Recorder. Results are keyed by series name and kept in
// the order they were first recorded; recording a name again replaces the earlier
// result in place. It is not safe for concurrent use.
type Store struct {
	RunID     string
	StartedAt time.Time

	results  []*model.TrendResult
	index    map[string]int
	failures []FailedAnalysis
}

// NewStore creates an empty store with a fresh run id.
func NewStore() *Store {
	return &Store{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		index:     make(map[string]int),
	}
}

func (s *Store) RecordResult(res *model.TrendResult) {
	if i, ok := s.index[res.Name]; ok {
		s.results[i] = res
		return
	}
	s.index[res.Name] = len(s.results)
	s.results = append(s.results, res)
}

func (s *Store) RecordFailure(series string, err error) {
	kind, _ := model.KindOf(err)
	s.failures = append(s.failures, FailedAnalysis{Series: series, Kind: kind, Err: err})
}

// Results returns the recorded results in analysis order.
func (s *Store) Results() []*model.TrendResult {
	return append([]*model.TrendResult(nil), s.results...)
}

// Result looks up a result by series name.
func (s *Store) Result(name string) (*model.TrendResult, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.results[i], true
}

// Failures returns the recorded failures in order.
func (s *Store) Failures() []FailedAnalysis {
	return append([]FailedAnalysis(nil), s.failures...)
}

// Attempts is the number of series the run tried to analyze.
func (s *Store) Attempts() int {
	return len(s.results) + len(s.failures)
}

// SuccessRate returns the share of attempts that produced a result, in [0,1].
// An empty run has a rate of 0.
func (s *Store) SuccessRate() float64 {
	if s.Attempts() == 0 {
		return 0
	}
	return float64(len(s.results)) / float64(s.Attempts())
}
