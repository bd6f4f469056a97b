// Package pipeline runs the fetch, classify and record steps for every
// requested series.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"TrendSentinel/internal/classifier"
	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/recorder"
)

// ChartWriter renders a chart for a successful result.
type ChartWriter interface {
	WriteChart(res *model.TrendResult) (string, error)
}

// Runner analyzes series one after another. A failing series is recorded and
// the run moves on to the next one.
type Runner struct {
	Collector  *collector.Collector
	Classifier *classifier.Classifier
	Charts     ChartWriter // optional
}

// NewRunner creates a Runner. charts may be nil.
func NewRunner(col *collector.Collector, cls *classifier.Classifier, charts ChartWriter) *Runner {
	return &Runner{Collector: col, Classifier: cls, Charts: charts}
}

// Run analyzes reqs in order and returns the populated run store.
func (r *Runner) Run(ctx context.Context, reqs []model.SeriesRequest) *recorder.Store {
	store := recorder.NewStore()
	logger := zerolog.Ctx(ctx).With().Str("run_id", store.RunID).Logger()
	r.RunInto(logger.WithContext(ctx), store, reqs)
	return store
}

// RunInto analyzes reqs in order, recording every outcome into rec.
func (r *Runner) RunInto(ctx context.Context, rec recorder.Recorder, reqs []model.SeriesRequest) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Int("series", len(reqs)).Msg("analysis started")
	start := time.Now()

	var ok, failed int
	for _, req := range reqs {
		if ctx.Err() != nil {
			logger.Warn().Err(ctx.Err()).Str("series", req.Name).Msg("run cancelled, skipping remaining series")
			rec.RecordFailure(req.Name, &model.Failure{Kind: model.KindUnreachable, Series: req.Name, Err: ctx.Err()})
			failed++
			continue
		}
		res, err := r.analyze(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Str("series", req.Name).Msg("series analysis failed")
			rec.RecordFailure(req.Name, err)
			failed++
			continue
		}
		rec.RecordResult(res)
		ok++
		r.chart(ctx, res)
	}

	logger.Info().
		Int("successful", ok).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("analysis finished")
}

func (r *Runner) analyze(ctx context.Context, req model.SeriesRequest) (*model.TrendResult, error) {
	series, code, err := r.Collector.Collect(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := r.Classifier.Classify(req.Name, series)
	if err != nil {
		var f *model.Failure
		if errors.As(err, &f) && f.Code == 0 {
			f.Code = code
		}
		return nil, err
	}
	res.Code = code
	zerolog.Ctx(ctx).Info().
		Str("series", req.Name).
		Int("code", code).
		Str("trend", string(res.Label)).
		Float64("r2", res.RSquared).
		Float64("p_value", res.PValue).
		Msg("series classified")
	return res, nil
}

func (r *Runner) chart(ctx context.Context, res *model.TrendResult) {
	if r.Charts == nil {
		return
	}
	path, err := r.Charts.WriteChart(res)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("series", res.Name).Msg("chart failed")
		return
	}
	zerolog.Ctx(ctx).Info().Str("series", res.Name).Str("path", path).Msg("chart saved")
}
