package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/classifier"
	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/model"
)

var jan2015 = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)

type fakeCharts struct {
	written []string
	err     error
}

func (f *fakeCharts) WriteChart(res *model.TrendResult) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.written = append(f.written, res.Name)
	return "/tmp/" + res.Name + ".png", nil
}

func request(t *testing.T, name string, codes ...int) model.SeriesRequest {
	t.Helper()
	req, err := model.NewSeriesRequest(name, model.AllHistory(), codes...)
	require.NoError(t, err)
	return req
}

func TestRun_EndToEndRisingSeries(t *testing.T) {
	mock := &collector.MockFetcher{Payloads: map[int]string{
		1178: collector.GenerateMonthlyPayload(jan2015, 120, 5, 0.05),
	}}
	charts := &fakeCharts{}
	runner := NewRunner(collector.NewCollector(mock), classifier.New(2), charts)

	store := runner.Run(context.Background(), []model.SeriesRequest{request(t, "Taxa SELIC Acumulada", 1178)})

	require.Len(t, store.Results(), 1)
	res, ok := store.Result("Taxa SELIC Acumulada")
	require.True(t, ok)
	assert.Equal(t, model.TrendRising, res.Label)
	assert.Equal(t, 1178, res.Code)
	assert.Equal(t, 120, res.Observations)
	assert.Equal(t, "01/2015 to 12/2024", res.Period())
	assert.Greater(t, res.RSquared, 0.99)
	assert.Less(t, res.PValue, 0.05)
	assert.Empty(t, store.Failures())
	assert.Equal(t, 1.0, store.SuccessRate())
	assert.Equal(t, []string{"Taxa SELIC Acumulada"}, charts.written)
}

func TestRun_FailuresDoNotStopTheRun(t *testing.T) {
	mock := &collector.MockFetcher{
		Payloads: map[int]string{
			433:  collector.GenerateMonthlyPayload(jan2015, 36, 1, -0.01),
			4380: collector.GenerateMonthlyPayload(jan2015, 12, 7, 0),
			1:    "<html>gateway timeout</html>",
		},
		Errors: map[int]error{29037: errors.New("connection refused")},
	}
	runner := NewRunner(collector.NewCollector(mock), classifier.New(2), nil)

	store := runner.Run(context.Background(), []model.SeriesRequest{
		request(t, "Endividamento", 29037),
		request(t, "Taxa SELIC", 11, 1178),
		request(t, "IPCA", 433),
		request(t, "PIB Mensal", 4380),
		request(t, "Câmbio", 1),
	})

	require.Len(t, store.Results(), 1)
	assert.Equal(t, model.TrendFalling, store.Results()[0].Label)
	assert.Equal(t, 433, store.Results()[0].Code)

	failures := store.Failures()
	require.Len(t, failures, 4)
	assert.Equal(t, "Endividamento", failures[0].Series)
	assert.Equal(t, model.KindUnreachable, failures[0].Kind)
	assert.Equal(t, model.KindAllAlternatesExhausted, failures[1].Kind)
	assert.Equal(t, model.KindDegenerateRegression, failures[2].Kind)
	assert.Equal(t, model.KindUnexpectedSchema, failures[3].Kind)
	assert.InDelta(t, 0.2, store.SuccessRate(), 1e-9)

	var f *model.Failure
	require.ErrorAs(t, failures[2].Err, &f)
	assert.Equal(t, 4380, f.Code)
}

func TestRun_InsufficientSample(t *testing.T) {
	mock := &collector.MockFetcher{Payloads: map[int]string{
		433: collector.GenerateMonthlyPayload(jan2015, 5, 1, 1),
	}}
	store := NewRunner(collector.NewCollector(mock), classifier.New(10), nil).
		Run(context.Background(), []model.SeriesRequest{request(t, "IPCA", 433)})

	require.Len(t, store.Failures(), 1)
	assert.Equal(t, model.KindInsufficientSample, store.Failures()[0].Kind)
}

func TestRun_ChartErrorKeepsResult(t *testing.T) {
	mock := &collector.MockFetcher{Payloads: map[int]string{
		1: collector.GenerateMonthlyPayload(jan2015, 24, 3, 0.02),
	}}
	store := NewRunner(collector.NewCollector(mock), classifier.New(2), &fakeCharts{err: errors.New("disk full")}).
		Run(context.Background(), []model.SeriesRequest{request(t, "Câmbio", 1)})

	assert.Len(t, store.Results(), 1)
	assert.Empty(t, store.Failures())
}

func TestRun_CancelledContext(t *testing.T) {
	mock := &collector.MockFetcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewRunner(collector.NewCollector(mock), classifier.New(2), nil).
		Run(ctx, []model.SeriesRequest{request(t, "A", 1), request(t, "B", 2)})

	assert.Len(t, store.Failures(), 2)
	assert.Empty(t, mock.Calls)
}
