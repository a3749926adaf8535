package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-gps-metrics/internal/aggregator"
	"github.com/pable/go-gps-metrics/internal/dashboard"
	"github.com/pable/go-gps-metrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintKPIs prints the headline block for a scope.
func PrintKPIs(w io.Writer, scope string, k aggregator.KPIs) {
	avg := "—"
	if k.HasAverage {
		avg = fmt.Sprintf("%.1f M", k.AverageDistance)
	}
	fmt.Fprintf(w, "\nKPIs for %s  (%d records)\n", scope, k.Records)
	fmt.Fprintf(w, "  Total Distance: %.1f M  |  Average Team Distance: %s  |  Sprint Distance: %.1f M  |  HI Distance: %.1f M\n\n",
		k.TotalDistance, avg, k.TotalSprint, k.TotalHI)
}

// PrintTotalsTable prints one row per player with the summed metrics.
// Players in focus are marked with ">"; metrics a player never recorded show "—".
func PrintTotalsTable(w io.Writer, totals model.Totals, metrics []string, focus []string) {
	table := newTable(w)
	header := []any{" ", "PLAYER", "POS", "GAMES"}
	for _, m := range metrics {
		header = append(header, strings.ToUpper(m))
	}
	table.Header(header...)

	for _, p := range totals {
		pos := p.Position
		if pos == "" {
			pos = "—"
		}
		row := []any{marker(p.Player, focus), p.Player, pos, strconv.Itoa(p.Games)}
		for _, m := range metrics {
			if !p.Observed[m] {
				row = append(row, "—")
				continue
			}
			row = append(row, fmt.Sprintf("%.1f", p.Total(m)))
		}
		table.Append(row...)
	}
	table.Render()
}

// PrintTrendTable prints a player's per-game series, one column per metric.
func PrintTrendTable(w io.Writer, t aggregator.Trend) {
	fmt.Fprintf(w, "\n%s — last %d game(s)\n", t.Player, len(t.Games))
	table := newTable(w)
	header := []any{"GAME"}
	for _, s := range t.Series {
		header = append(header, strings.ToUpper(s.Metric))
	}
	table.Header(header...)

	for i, g := range t.Games {
		row := []any{g}
		for _, s := range t.Series {
			p := s.Points[i]
			if !p.OK {
				row = append(row, "—")
				continue
			}
			row = append(row, fmt.Sprintf("%.1f", p.Value))
		}
		table.Append(row...)
	}
	table.Render()
	if len(t.Skipped) > 0 {
		fmt.Fprintf(w, "  no data: %s\n", strings.Join(t.Skipped, ", "))
	}
}

// PrintCompositionTable prints each game's distance breakdown as percentages.
func PrintCompositionTable(w io.Writer, c aggregator.Composition, categories []string) {
	fmt.Fprintf(w, "\n%s — distance breakdown\n", c.Player)
	table := newTable(w)
	header := []any{"GAME", "DISTANCE"}
	for _, cat := range categories {
		header = append(header, strings.ToUpper(cat)+" %")
	}
	table.Header(header...)

	for _, g := range c.Games {
		pct := make(map[string]float64, len(g.Slices))
		for _, s := range g.Slices {
			pct[s.Category] = s.Percent
		}
		row := []any{g.Game, fmt.Sprintf("%.1f", g.Distance)}
		for _, cat := range categories {
			v, ok := pct[cat]
			if !ok {
				row = append(row, "—")
				continue
			}
			row = append(row, fmt.Sprintf("%.1f%%", v))
		}
		table.Append(row...)
	}
	table.Render()
}

// PrintPercentileTable prints a pizza chart as a table.
// Columns: METRIC | VALUE | PCTL | bar
func PrintPercentileTable(w io.Writer, title string, res model.PercentileResult) {
	fmt.Fprintf(w, "\n%s  (cohort: %s, n=%d)\n", title, res.Cohort, res.CohortSize)
	table := newTable(w)
	table.Header("METRIC", "VALUE", "PCTL", " ")
	for _, m := range res.Metrics {
		table.Append(
			m,
			fmt.Sprintf("%.1f", res.Values[m]),
			fmt.Sprintf("%.0f", res.Scores[m]),
			bar(res.Scores[m]),
		)
	}
	for _, m := range res.Skipped {
		table.Append(m, "—", "—", "")
	}
	table.Render()
}

// PrintScatterTable prints the scatter points sorted as given; highlighted players are marked.
func PrintScatterTable(w io.Writer, s aggregator.Scatter, highlight []string) {
	table := newTable(w)
	table.Header(" ", "PLAYER", "POS", strings.ToUpper(s.X), strings.ToUpper(s.Y))
	for _, p := range s.Points {
		pos := p.Position
		if pos == "" {
			pos = "—"
		}
		table.Append(marker(p.Player, highlight), p.Player, pos, fmt.Sprintf("%.1f", p.X), fmt.Sprintf("%.1f", p.Y))
	}
	table.Render()
}

// PrintNotices lists the view's notices, one per line.
func PrintNotices(w io.Writer, notices []dashboard.Notice) {
	for _, n := range notices {
		fmt.Fprintf(w, "! %s\n", n.Message)
	}
}

// PrintView prints the KPI block, every panel, then the notices.
func PrintView(w io.Writer, v *dashboard.View, opts dashboard.Options) {
	PrintKPIs(w, v.Scope, v.KPIs)
	for _, p := range v.Panels {
		switch {
		case p.Trend != nil:
			PrintTrendTable(w, *p.Trend)
		case p.Composition != nil:
			PrintCompositionTable(w, *p.Composition, opts.CompositionCategories)
		case p.Percentile != nil:
			PrintPercentileTable(w, p.Title, p.Percentile.Result)
		case p.Scatter != nil:
			fmt.Fprintf(w, "\n%s\n", p.Title)
			PrintScatterTable(w, p.Scatter.Scatter, p.Scatter.Highlight)
		}
	}
	if len(v.Notices) > 0 {
		fmt.Fprintln(w)
		PrintNotices(w, v.Notices)
	}
}

func marker(player string, focus []string) string {
	for _, f := range focus {
		if f == player {
			return ">"
		}
	}
	return " "
}

// bar renders a 0-100 score as a 20-cell bar.
func bar(pct float64) string {
	n := int(math.Round(pct / 5))
	if n < 0 {
		n = 0
	}
	if n > 20 {
		n = 20
	}
	return strings.Repeat("█", n) + strings.Repeat("·", 20-n)
}
