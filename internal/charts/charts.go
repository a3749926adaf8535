// Package charts renders dashboard views as a single interactive HTML page.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pable/go-gps-metrics/internal/aggregator"
	"github.com/pable/go-gps-metrics/internal/dashboard"
)

// Config holds chart sizing and theming.
type Config struct {
	OutputDir string   `toml:"output_dir" split_words:"true"`
	Width     string   `toml:"width"`
	Height    string   `toml:"height"`
	Theme     string   `toml:"theme"`
	Colors    []string `toml:"colors"`
}

// DefaultConfig returns default chart configuration.
func DefaultConfig() Config {
	return Config{
		OutputDir: ".",
		Width:     "900px",
		Height:    "500px",
		Theme:     "light",
		Colors:    []string{"#1f77b4", "#2ca02c", "#ff7f0e", "#9467bd", "#d62728", "#73C0DE", "#3BA272", "#FC8452"},
	}
}

// metricColors keeps a metric the same color across every chart on the page.
var metricColors = map[string]string{
	"Distance":         "#1f77b4",
	"Running Distance": "#2ca02c",
	"HI Distance":      "#ff7f0e",
	"HS Distance":      "#9467bd",
	"Sprint Distance":  "#d62728",
}

func (c Config) color(metric string, i int) string {
	if col, ok := metricColors[metric]; ok {
		return col
	}
	if len(c.Colors) == 0 {
		return ""
	}
	return c.Colors[i%len(c.Colors)]
}

func (c Config) globals(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  c.Width,
			Height: c.Height,
			Theme:  c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
	}
}

// RenderView writes the view as one HTML page: one chart per trend metric,
// one pie per game, a radar per pizza panel, and the scatter plot.
func RenderView(w io.Writer, v *dashboard.View, cfg Config) error {
	page := components.NewPage()
	page.PageTitle = "GPS Dashboard — " + v.Scope

	var added int
	for _, p := range v.Panels {
		var cs []components.Charter
		switch {
		case p.Trend != nil:
			cs = trendCharts(*p.Trend, cfg)
		case p.Composition != nil:
			cs = compositionCharts(*p.Composition, cfg)
		case p.Percentile != nil:
			cs = []components.Charter{pizzaChart(p, cfg)}
		case p.Scatter != nil:
			cs = []components.Charter{scatterChart(p, cfg)}
		}
		page.AddCharts(cs...)
		added += len(cs)
	}
	if added == 0 {
		page.AddCharts(kpiChart(v, cfg))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// RenderToFile writes the page to path, creating parent directories.
func RenderToFile(path string, v *dashboard.View, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	return RenderView(f, v, cfg)
}

func trendCharts(t aggregator.Trend, cfg Config) []components.Charter {
	var out []components.Charter
	for i, s := range t.Series {
		line := charts.NewLine()
		line.SetGlobalOptions(append(cfg.globals(s.Metric, t.Player),
			charts.WithYAxisOpts(opts.YAxis{Name: "Distance (M)"}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Game"}),
		)...)

		data := make([]opts.LineData, len(s.Points))
		for j, p := range s.Points {
			if !p.OK {
				// echarts treats "-" as a gap
				data[j] = opts.LineData{Value: "-"}
				continue
			}
			data[j] = opts.LineData{Value: p.Value}
		}
		line.SetXAxis(t.Games).
			AddSeries(s.Metric, data).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.color(s.Metric, i)}),
			)
		out = append(out, line)
	}
	return out
}

func compositionCharts(c aggregator.Composition, cfg Config) []components.Charter {
	var out []components.Charter
	for _, g := range c.Games {
		pie := charts.NewPie()
		pie.SetGlobalOptions(cfg.globals(fmt.Sprintf("%s - %s", c.Player, g.Game), "Distance Types")...)

		data := make([]opts.PieData, 0, len(g.Slices))
		for i, s := range g.Slices {
			data = append(data, opts.PieData{
				Name:      s.Category,
				Value:     s.Percent,
				ItemStyle: &opts.ItemStyle{Color: cfg.color(s.Category, i)},
			})
		}
		pie.AddSeries(g.Game, data).
			SetSeriesOptions(charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}%",
			}))
		out = append(out, pie)
	}
	return out
}

func pizzaChart(p dashboard.Panel, cfg Config) components.Charter {
	res := p.Percentile.Result
	radar := charts.NewRadar()

	indicators := make([]*opts.Indicator, 0, len(res.Metrics))
	for _, m := range res.Metrics {
		indicators = append(indicators, &opts.Indicator{Name: m, Max: 100, Min: 0})
	}
	radar.SetGlobalOptions(append(cfg.globals(p.Title, fmt.Sprintf("cohort n=%d", res.CohortSize)),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator:   indicators,
			Shape:       "polygon",
			SplitNumber: 5,
		}),
	)...)

	// echarts closes the polygon itself, so the repeated first vertex is dropped.
	series := p.Percentile.Series
	if len(series) > 0 {
		series = series[:len(series)-1]
	}
	values := make([]float64, len(series))
	for i, pt := range series {
		values[i] = pt.Radius
	}
	radar.AddSeries(p.Player, []opts.RadarData{{Name: p.Player, Value: values}}).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{c}"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.color("Distance", 0)}),
		)
	return radar
}

func scatterChart(p dashboard.Panel, cfg Config) components.Charter {
	s := p.Scatter
	sc := charts.NewScatter()
	sc.SetGlobalOptions(append(cfg.globals(p.Title, "season totals"),
		charts.WithXAxisOpts(opts.XAxis{Name: s.X, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.Y, Type: "value"}),
	)...)

	highlighted := make(map[string]bool, len(s.Highlight))
	for _, h := range s.Highlight {
		highlighted[h] = true
	}
	var team, focus []opts.ScatterData
	for _, pt := range s.Points {
		d := opts.ScatterData{Name: pt.Player, Value: []float64{pt.X, pt.Y}, SymbolSize: 12}
		if highlighted[pt.Player] {
			focus = append(focus, d)
			continue
		}
		team = append(team, d)
	}
	sc.AddSeries("Players", team).
		SetSeriesOptions(charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.color("", 0)}))
	if len(focus) > 0 {
		sc.AddSeries("Selected", focus,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.color("Sprint Distance", 0)}))
	}
	return sc
}

// kpiChart draws the KPI totals as a bar chart so a view without panels still renders.
func kpiChart(v *dashboard.View, cfg Config) components.Charter {
	bar := charts.NewBar()
	bar.SetGlobalOptions(cfg.globals("KPIs for "+v.Scope, fmt.Sprintf("%d records", v.KPIs.Records))...)
	bar.SetXAxis([]string{"Total Distance", "Average Team Distance", "Sprint Distance", "HI Distance"}).
		AddSeries("M", []opts.BarData{
			{Value: v.KPIs.TotalDistance},
			{Value: v.KPIs.AverageDistance},
			{Value: v.KPIs.TotalSprint},
			{Value: v.KPIs.TotalHI},
		})
	return bar
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
