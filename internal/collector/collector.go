package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"TrendSentinel/internal/model"
	"TrendSentinel/internal/parser"
)

// MockFetcher returns controllable fixed payloads for development and testing.
// Codes without a payload or error behave as unreachable.
type MockFetcher struct {
	Payloads map[int]string
	Errors   map[int]error
	Calls    []int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, code int, _ model.LookbackWindow) (*model.RawPayload, error) {
	m.Calls = append(m.Calls, code)
	if err, ok := m.Errors[code]; ok {
		return nil, err
	}
	body, ok := m.Payloads[code]
	if !ok {
		return nil, &model.Failure{Kind: model.KindUnreachable, Code: code, Err: errors.New("status 404")}
	}
	return &model.RawPayload{
		Code:      code,
		Format:    model.FormatCSV,
		Body:      []byte(body),
		FetchedAt: time.Now(),
	}, nil
}

// GenerateMonthlyPayload renders n monthly observations starting at start as a
// delimited payload in the data source's layout.
func GenerateMonthlyPayload(start time.Time, n int, base, step float64) string {
	var b strings.Builder
	b.WriteString("\"data\";\"valor\"\n")
	for i := 0; i < n; i++ {
		v := strings.Replace(fmt.Sprintf("%.2f", base+step*float64(i)), ".", ",", 1)
		fmt.Fprintf(&b, "\"%s\";\"%s\"\n", start.AddDate(0, i, 0).Format("02/01/2006"), v)
	}
	return b.String()
}

// Collector turns series requests into parsed observation series.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect fetches and parses the requested series, trying its codes in order and
// stopping at the first one that yields a usable series. It returns that series
// and the code it came from. With several codes and no success the error is
// AllAlternatesExhausted wrapping the last failure.
func (c *Collector) Collect(ctx context.Context, req model.SeriesRequest) (*model.ObservationSeries, int, error) {
	logger := zerolog.Ctx(ctx).With().Str("series", req.Name).Logger()
	if len(req.Codes) == 0 {
		return nil, 0, fmt.Errorf("series %q has no codes", req.Name)
	}

	var lastErr error
	for i, code := range req.Codes {
		if i > 0 {
			logger.Info().Int("code", code).Msg("trying alternate code")
		}
		series, err := c.collectCode(ctx, code, req.Window)
		if err == nil {
			first, last, _ := series.Span()
			logger.Info().
				Int("code", code).
				Int("observations", series.Len()).
				Str("period", first.Format(model.PeriodLayout)+" to "+last.Format(model.PeriodLayout)).
				Msg("series loaded")
			return series, code, nil
		}
		logger.Warn().Err(err).Int("code", code).Msg("code failed")
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	if len(req.Codes) == 1 {
		var f *model.Failure
		if errors.As(lastErr, &f) && f.Series == "" {
			f.Series = req.Name
		}
		return nil, 0, lastErr
	}
	return nil, 0, &model.Failure{
		Kind:   model.KindAllAlternatesExhausted,
		Series: req.Name,
		Err:    fmt.Errorf("codes %v: %w", req.Codes, lastErr),
	}
}

func (c *Collector) collectCode(ctx context.Context, code int, window model.LookbackWindow) (*model.ObservationSeries, error) {
	raw, err := c.Fetcher.Fetch(ctx, code, window)
	if err != nil {
		if _, typed := model.KindOf(err); !typed {
			err = &model.Failure{Kind: model.KindUnreachable, Code: code, Err: err}
		}
		return nil, err
	}
	return parser.Parse(raw)
}
