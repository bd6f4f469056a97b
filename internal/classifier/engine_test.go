package classifier

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"TrendSentinel/internal/model"
)

var start = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)

func dailySeries(values []float64) *model.ObservationSeries {
	obs := make([]model.Observation, len(values))
	for i, v := range values {
		obs[i] = model.Observation{Time: start.AddDate(0, 0, i), Value: v}
	}
	return &model.ObservationSeries{Observations: obs}
}

func linear(n int, base, step float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = base + step*float64(i)
	}
	return v
}

// noise draws n i.i.d. normal values around mean from a PCG seeded with seed.
func noise(seed uint64, n int, mean float64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	v := make([]float64, n)
	for i := range v {
		v[i] = mean + rng.NormFloat64()
	}
	return v
}

func TestClassify_SteadyRise(t *testing.T) {
	res, err := New(DefaultMinSamples).Classify("rise", dailySeries(linear(60, 10, 0.5)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Label != model.TrendRising {
		t.Errorf("expected RISING, got %s", res.Label)
	}
	if res.Slope <= 0 {
		t.Errorf("expected positive slope, got %g", res.Slope)
	}
	if res.PValue > 1e-9 {
		t.Errorf("expected p-value ~0, got %g", res.PValue)
	}
	if math.Abs(res.RSquared-1) > 1e-9 {
		t.Errorf("expected R² ~1, got %.12f", res.RSquared)
	}
	// 0.5 per day expressed per second.
	if math.Abs(res.Slope-0.5/86400) > 1e-12 {
		t.Errorf("unexpected slope %g", res.Slope)
	}
	if res.Observations != 60 || res.MinValue != 10 || res.MaxValue != 39.5 {
		t.Errorf("unexpected summary: n=%d min=%g max=%g", res.Observations, res.MinValue, res.MaxValue)
	}
	if math.Abs(res.MeanValue-24.75) > 1e-9 {
		t.Errorf("unexpected mean %g", res.MeanValue)
	}
}

func TestClassify_SteadyFall(t *testing.T) {
	res, err := New(DefaultMinSamples).Classify("fall", dailySeries(linear(30, 100, -2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Label != model.TrendFalling {
		t.Errorf("expected FALLING, got %s", res.Label)
	}
}

func TestClassify_NoiseIsStable(t *testing.T) {
	// At alpha = 0.05 about 95% of trendless samples come out STABLE.
	const seeds = 200
	stable := 0
	for seed := uint64(1); seed <= seeds; seed++ {
		res, err := New(DefaultMinSamples).Classify("noise", dailySeries(noise(seed, 61, 50)))
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if (res.Label == model.TrendStable) != (res.PValue >= Significance) {
			t.Errorf("seed %d: label %s disagrees with p=%g", seed, res.Label, res.PValue)
		}
		if res.Label == model.TrendStable {
			stable++
		}
	}
	if stable < 170 || stable == seeds {
		t.Errorf("expected roughly 95%% STABLE over %d seeds, got %d", seeds, stable)
	}
}

func TestClassify_NoiseIsDeterministic(t *testing.T) {
	first, err := New(DefaultMinSamples).Classify("noise", dailySeries(noise(42, 61, 50)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, _ := New(DefaultMinSamples).Classify("noise", dailySeries(noise(42, 61, 50)))
	if again.PValue != first.PValue || again.Slope != first.Slope || again.Label != first.Label {
		t.Errorf("same seed gave different fits: %g vs %g", first.PValue, again.PValue)
	}
}

func TestClassify_SortsInput(t *testing.T) {
	s := dailySeries(linear(20, 1, 1))
	obs := s.Observations
	for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
		obs[i], obs[j] = obs[j], obs[i]
	}
	res, err := New(DefaultMinSamples).Classify("reversed", s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Label != model.TrendRising {
		t.Errorf("expected RISING after sorting, got %s", res.Label)
	}
	if !res.PeriodStart.Equal(start) || !res.PeriodEnd.Equal(start.AddDate(0, 0, 19)) {
		t.Errorf("unexpected period %s", res.Period())
	}
	if !obs[0].Time.Equal(start.AddDate(0, 0, 19)) {
		t.Error("input series was reordered")
	}
}

func TestClassify_Degenerate(t *testing.T) {
	sameTime := &model.ObservationSeries{Observations: []model.Observation{
		{Time: start, Value: 1}, {Time: start, Value: 2}, {Time: start, Value: 3},
	}}
	cases := map[string]*model.ObservationSeries{
		"nil":             nil,
		"single":          dailySeries([]float64{4.2}),
		"same timestamps": sameTime,
		"constant values": dailySeries([]float64{7, 7, 7, 7}),
	}
	for name, s := range cases {
		_, err := New(DefaultMinSamples).Classify(name, s)
		if !model.IsKind(err, model.KindDegenerateRegression) {
			t.Errorf("%s: expected DegenerateRegression, got %v", name, err)
		}
	}
}

func TestClassify_MinimumSamplePolicy(t *testing.T) {
	strict := New(10)

	_, err := strict.Classify("short", dailySeries(linear(9, 1, 1)))
	if !model.IsKind(err, model.KindInsufficientSample) {
		t.Errorf("expected InsufficientSample, got %v", err)
	}
	if _, err := strict.Classify("enough", dailySeries(linear(10, 1, 1))); err != nil {
		t.Errorf("expected 10 observations to pass, got %v", err)
	}
	_, err = strict.Classify("single", dailySeries([]float64{1}))
	if !model.IsKind(err, model.KindDegenerateRegression) {
		t.Errorf("expected DegenerateRegression for one observation, got %v", err)
	}

	if New(0).MinSamples != DefaultMinSamples {
		t.Errorf("expected floor of %d", DefaultMinSamples)
	}
}

func TestLabel_AllBoundaries(t *testing.T) {
	tests := []struct {
		slope, p float64
		want     model.TrendLabel
	}{
		{1, 0.01, model.TrendRising},
		{1e-12, 0.049, model.TrendRising},
		{-1, 0.01, model.TrendFalling},
		{0, 0.01, model.TrendFalling},
		{1, 0.05, model.TrendStable},
		{-1, 0.05, model.TrendStable},
		{5, 0.9, model.TrendStable},
		{0, 1, model.TrendStable},
	}
	for _, tt := range tests {
		if got := Label(tt.slope, tt.p); got != tt.want {
			t.Errorf("slope=%g p=%g: expected %s, got %s", tt.slope, tt.p, tt.want, got)
		}
	}
}
