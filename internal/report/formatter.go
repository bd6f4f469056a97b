package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"TrendSentinel/internal/model"
	"TrendSentinel/internal/recorder"
)

// secondsPerYear converts per-second slopes to per-year rates.
const secondsPerYear = 365.25 * 24 * 3600

// FormatSummary formats the run results into a Telegram HTML message.
func FormatSummary(store *recorder.Store) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>TrendSentinel</b> | %s\n\n", store.StartedAt.Format("2006-01-02")))

	results := store.Results()
	if len(results) == 0 {
		b.WriteString("⚠️ No series was analyzed successfully.\n")
	}
	for i, r := range results {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b> (%d)\n", i+1, html.EscapeString(r.Name), r.Code))
		b.WriteString(fmt.Sprintf("   %s %s | R² %.4f | p %.2e\n", labelIcon(r.Label), r.Label, r.RSquared, r.PValue))
		b.WriteString(fmt.Sprintf("   %s, %d obs, slope %+.4g/yr\n", r.Period(), r.Observations, r.Slope*secondsPerYear))
	}

	if failures := store.Failures(); len(failures) > 0 {
		b.WriteString("\n❌ <b>Failures:</b>\n")
		for _, f := range failures {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(f.Series), failureKind(f)))
		}
	}

	b.WriteString(fmt.Sprintf("\n✅ %d/%d analyzed (%.1f%%)", len(results), store.Attempts(), store.SuccessRate()*100))
	return b.String()
}

// FormatResult renders the statistics block for one series.
func FormatResult(r *model.TrendResult, alpha float64) string {
	var b strings.Builder
	significant := "no"
	if r.Significant(alpha) {
		significant = "yes"
	}
	b.WriteString(fmt.Sprintf("Series:        %s (code %d)\n", r.Name, r.Code))
	b.WriteString(fmt.Sprintf("Trend:         %s\n", r.Label))
	b.WriteString(fmt.Sprintf("Slope:         %.8e per second (%+.4g per year)\n", r.Slope, r.Slope*secondsPerYear))
	b.WriteString(fmt.Sprintf("Std. error:    %.8e\n", r.SlopeStdErr))
	b.WriteString(fmt.Sprintf("R²:            %.4f\n", r.RSquared))
	b.WriteString(fmt.Sprintf("p-value:       %.2e\n", r.PValue))
	b.WriteString(fmt.Sprintf("Significant:   %s (α = %.2f)\n", significant, alpha))
	b.WriteString(fmt.Sprintf("Period:        %s\n", r.Period()))
	b.WriteString(fmt.Sprintf("Observations:  %d\n", r.Observations))
	b.WriteString(fmt.Sprintf("Min/Max/Mean:  %.2f / %.2f / %.2f\n", r.MinValue, r.MaxValue, r.MeanValue))
	return b.String()
}

func labelIcon(l model.TrendLabel) string {
	switch l {
	case model.TrendRising:
		return "📈"
	case model.TrendFalling:
		return "📉"
	default:
		return "📊"
	}
}

func failureKind(f recorder.FailedAnalysis) string {
	if f.Kind != "" {
		return string(f.Kind)
	}
	return "ERROR"
}

func elapsed(since time.Time) time.Duration {
	return time.Since(since).Round(time.Millisecond)
}
