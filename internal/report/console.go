// Package report renders analysis results for people: a console summary, a
// message-sized summary and one chart per series.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"TrendSentinel/internal/classifier"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/recorder"
)

// ResolveColors determines whether to use colors for the given mode
// ("auto", "always" or "never").
func ResolveColors(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return !color.NoColor
	}
}

// Console writes the consolidated run report.
type Console struct {
	out     io.Writer
	rising  *color.Color
	falling *color.Color
	stable  *color.Color
	bad     *color.Color
	bold    *color.Color
}

// NewConsole creates a console renderer. A nil writer means stdout.
func NewConsole(out io.Writer, useColors bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	c := &Console{
		out:     out,
		rising:  color.New(color.FgGreen, color.Bold),
		falling: color.New(color.FgRed, color.Bold),
		stable:  color.New(color.FgBlue, color.Bold),
		bad:     color.New(color.FgRed),
		bold:    color.New(color.Bold),
	}
	for _, col := range []*color.Color{c.rising, c.falling, c.stable, c.bad, c.bold} {
		if useColors {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) label(l model.TrendLabel) string {
	switch l {
	case model.TrendRising:
		return c.rising.Sprint(l)
	case model.TrendFalling:
		return c.falling.Sprint(l)
	default:
		return c.stable.Sprint(l)
	}
}

// Render writes the summary table, per-series statistics, failures, methodology
// and run statistics.
func (c *Console) Render(store *recorder.Store) error {
	rule := strings.Repeat("=", 80)
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, rule)
	fmt.Fprintln(c.out, c.bold.Sprint("CONSOLIDATED REPORT - CENTRAL BANK TIME SERIES"))
	fmt.Fprintf(c.out, "run %s | started %s | took %s\n", store.RunID, store.StartedAt.Format("2006-01-02 15:04:05"), elapsed(store.StartedAt))
	fmt.Fprintln(c.out, rule)

	results := store.Results()
	if len(results) == 0 {
		fmt.Fprintln(c.out, c.bad.Sprint("No series was analyzed successfully."))
	} else {
		fmt.Fprintln(c.out, "\nEXECUTIVE SUMMARY")
		rows := make([][]string, 0, len(results))
		for i, r := range results {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				r.Name,
				fmt.Sprintf("%d", r.Code),
				c.label(r.Label),
				fmt.Sprintf("%.4f", r.RSquared),
				fmt.Sprintf("%.2e", r.PValue),
				r.Period(),
				fmt.Sprintf("%d", r.Observations),
				fmt.Sprintf("%.8e", r.Slope),
			})
		}
		if err := c.table([]string{"#", "Series", "Code", "Trend", "R²", "p-value", "Period", "Obs", "Slope"}, rows); err != nil {
			return err
		}

		fmt.Fprintln(c.out, "\nSERIES DETAILS")
		for _, r := range results {
			fmt.Fprintln(c.out)
			fmt.Fprint(c.out, FormatResult(r, classifier.Significance))
		}
	}

	if failures := store.Failures(); len(failures) > 0 {
		fmt.Fprintln(c.out, "\nFAILURES")
		rows := make([][]string, 0, len(failures))
		for _, f := range failures {
			rows = append(rows, []string{f.Series, c.bad.Sprint(failureKind(f)), errorText(f.Err)})
		}
		if err := c.table([]string{"Series", "Kind", "Error"}, rows); err != nil {
			return err
		}
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, rule)
	fmt.Fprint(c.out, Methodology)
	fmt.Fprintln(c.out, rule)
	fmt.Fprintf(c.out, "Successful analyses: %d\n", len(results))
	fmt.Fprintf(c.out, "Failures:            %d\n", len(store.Failures()))
	_, err := fmt.Fprintf(c.out, "Success rate:        %.1f%%\n", store.SuccessRate()*100)
	return err
}

func (c *Console) table(header []string, rows [][]string) error {
	table := tablewriter.NewTable(c.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("table rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return truncate(err.Error(), 100)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Methodology is the fixed methodology and sources block.
const Methodology = `METHODOLOGY
  - Ordinary least-squares linear regression of value on time
  - Two-sided t-test of the slope (alpha = 0.05)
  - Coefficient of determination (R²) reported per series
  - Line chart with fitted trend per series

SOURCES
  - Tool: TrendSentinel (Go)
  - Data: Banco Central do Brasil, SGS open-data API
  - URL: https://dadosabertos.bcb.gov.br/dataset/
`
