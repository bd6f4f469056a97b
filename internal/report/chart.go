package report

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"TrendSentinel/internal/classifier"
	"TrendSentinel/internal/model"
)

var fileNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// ChartFileName derives the chart file name from a series display name.
func ChartFileName(name string) string {
	return fileNameReplacer.Replace(strings.ToLower(strings.TrimSpace(name))) + "_trend.png"
}

// ChartWriter renders one PNG per trend result into Dir.
type ChartWriter struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
}

// NewChartWriter creates a writer with the default 15x10 inch canvas.
func NewChartWriter(dir string) *ChartWriter {
	if dir == "" {
		dir = "."
	}
	return &ChartWriter{Dir: dir, Width: 15 * vg.Inch, Height: 10 * vg.Inch}
}

var (
	observedColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	risingColor   = color.RGBA{G: 128, A: 255}
	fallingColor  = color.RGBA{R: 200, A: 255}
	stableColor   = color.RGBA{B: 200, A: 255}
)

func trendColor(l model.TrendLabel) color.Color {
	switch l {
	case model.TrendRising:
		return risingColor
	case model.TrendFalling:
		return fallingColor
	default:
		return stableColor
	}
}

func chartTitle(res *model.TrendResult) string {
	significant := "not significant"
	if res.Significant(classifier.Significance) {
		significant = "significant"
	}
	return fmt.Sprintf("%s | %s (R² %.4f, p %.2e, %s)\n%s | min %.2f, max %.2f, mean %.2f | %d obs",
		res.Name, res.Label, res.RSquared, res.PValue, significant,
		res.Period(), res.MinValue, res.MaxValue, res.MeanValue, res.Observations)
}

// WriteChart plots the observed series and its fitted trend line and returns the
// file path written.
func (w *ChartWriter) WriteChart(res *model.TrendResult) (string, error) {
	if res.Series.Len() == 0 {
		return "", errors.New("result carries no observations")
	}
	obs := res.Series.Observations

	p := plot.New()
	p.Title.Text = chartTitle(res)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Value"
	p.X.Tick.Marker = plot.TimeTicks{Format: model.PeriodLayout}
	p.Add(plotter.NewGrid())

	data := make(plotter.XYs, len(obs))
	fitted := make(plotter.XYs, len(obs))
	for i, o := range obs {
		x := float64(o.Time.Unix())
		data[i] = plotter.XY{X: x, Y: o.Value}
		fitted[i] = plotter.XY{X: x, Y: res.FittedAt(o.Time)}
	}

	observed, err := plotter.NewLine(data)
	if err != nil {
		return "", fmt.Errorf("observed line: %w", err)
	}
	observed.Color = observedColor
	observed.Width = vg.Points(1.5)

	trend, err := plotter.NewLine(fitted)
	if err != nil {
		return "", fmt.Errorf("trend line: %w", err)
	}
	trend.Color = trendColor(res.Label)
	trend.Width = vg.Points(2.5)
	trend.Dashes = []vg.Length{vg.Points(8), vg.Points(4)}

	p.Add(observed, trend)
	p.Legend.Add("Observed", observed)
	p.Legend.Add("Trend: "+string(res.Label), trend)
	p.Legend.Top = true

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	path := filepath.Join(w.Dir, ChartFileName(res.Name))
	if err := p.Save(w.Width, w.Height, path); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return path, nil
}
