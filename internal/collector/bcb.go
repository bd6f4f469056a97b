package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"TrendSentinel/internal/model"
)

// DefaultBaseURL is the central bank open-data API root.
const DefaultBaseURL = "https://api.bcb.gov.br"

// BCBFetcher implements Fetcher against the SGS time-series API.
type BCBFetcher struct {
	BaseURL string
	Format  model.PayloadFormat
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewBCBFetcher creates a fetcher with optional proxy support. Consecutive requests
// are spaced at least interval apart; a zero interval disables pacing.
func NewBCBFetcher(baseURL string, format model.PayloadFormat, timeout, interval time.Duration, proxyURL string) *BCBFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if format == "" {
		format = model.FormatCSV
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &BCBFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Format:  format,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		Limiter: limiter,
	}
}

func (f *BCBFetcher) Name() string { return "bcb-sgs" }

// SeriesURL builds the request URL for a series code and window.
func (f *BCBFetcher) SeriesURL(code int, window model.LookbackWindow) string {
	q := url.Values{}
	q.Set("formato", string(f.Format))
	if !window.Start.IsZero() {
		q.Set("dataInicial", window.Start.Format("02/01/2006"))
	}
	if !window.End.IsZero() {
		q.Set("dataFinal", window.End.Format("02/01/2006"))
	}
	return fmt.Sprintf("%s/dados/serie/bcdata.sgs.%d/dados?%s", f.BaseURL, code, q.Encode())
}

// Fetch issues a single GET. Transport errors, timeouts and non-200 responses are
// reported as Unreachable; the request is never re-issued.
func (f *BCBFetcher) Fetch(ctx context.Context, code int, window model.LookbackWindow) (*model.RawPayload, error) {
	logger := zerolog.Ctx(ctx)
	endpoint := f.SeriesURL(code, window)

	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, &model.Failure{Kind: model.KindUnreachable, Code: code, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader(f.Format))
	req.Header.Set("User-Agent", "TrendSentinel/1.0")

	logger.Debug().Int("code", code).Str("url", endpoint).Msg("fetching series")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &model.Failure{Kind: model.KindUnreachable, Code: code, Err: fmt.Errorf("fetch series: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.Failure{Kind: model.KindUnreachable, Code: code, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &model.Failure{
			Kind: model.KindUnreachable,
			Code: code,
			Err:  fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}

	logger.Debug().Int("code", code).Str("size", humanize.Bytes(uint64(len(body)))).Msg("series fetched")
	return &model.RawPayload{
		Code:      code,
		Format:    f.Format,
		URL:       endpoint,
		Body:      body,
		FetchedAt: time.Now(),
	}, nil
}

func acceptHeader(format model.PayloadFormat) string {
	if format == model.FormatJSON {
		return "application/json"
	}
	return "text/csv, text/plain;q=0.9, */*;q=0.1"
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
