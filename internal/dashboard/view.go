// Package dashboard turns a Dataset plus a FilterSpec into a renderable View:
// KPIs, a scope label, and the panels for the selected chart mode.
package dashboard

import (
	"github.com/pable/go-gps-metrics/internal/aggregator"
	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/percentile"
)

// Options are the per-mode settings that do not come from the user's selection.
type Options struct {
	PizzaMetrics          []string `toml:"pizza_metrics" json:"pizza_metrics" split_words:"true"`
	TrendMetrics          []string `toml:"trend_metrics" json:"trend_metrics" split_words:"true"`
	CompositionCategories []string `toml:"composition_categories" json:"composition_categories" split_words:"true"`
	TrendGames            int      `toml:"trend_games" json:"trend_games" split_words:"true"`
	ScatterX              string   `toml:"scatter_x" json:"scatter_x" split_words:"true"`
	ScatterY              string   `toml:"scatter_y" json:"scatter_y" split_words:"true"`
}

// DefaultOptions mirrors the dashboard's stock chart setup.
func DefaultOptions() Options {
	return Options{
		PizzaMetrics: []string{
			model.MetricRunningDistance,
			model.MetricHSDistance,
			model.MetricHIDistance,
			model.MetricSprintDistance,
			model.MetricDistance,
		},
		TrendMetrics: []string{
			model.MetricDistance,
			model.MetricRunningDistance,
			model.MetricHIDistance,
			model.MetricHSDistance,
			model.MetricSprintDistance,
		},
		CompositionCategories: []string{
			model.MetricRunningDistance,
			model.MetricHIDistance,
			model.MetricHSDistance,
			model.MetricSprintDistance,
		},
		TrendGames: 5,
		ScatterX:   model.MetricDistance,
		ScatterY:   model.MetricSprintDistance,
	}
}

// Notice is a non-fatal condition surfaced next to the panels.
type Notice struct {
	Player  string `json:"player,omitempty"`
	Message string `json:"message"`
}

// PercentilePanel is one pizza chart.
type PercentilePanel struct {
	Result model.PercentileResult   `json:"result"`
	Series []percentile.RadialPoint `json:"series"`
}

// ScatterPanel is the cohort scatter plot, with the selected players highlighted.
type ScatterPanel struct {
	aggregator.Scatter
	Highlight []string `json:"highlight,omitempty"`
}

// Panel is one chart. Exactly one of the payload fields is set, matching Kind.
type Panel struct {
	Kind        model.ChartMode         `json:"kind"`
	Title       string                  `json:"title"`
	Player      string                  `json:"player,omitempty"`
	Trend       *aggregator.Trend       `json:"trend,omitempty"`
	Composition *aggregator.Composition `json:"composition,omitempty"`
	Percentile  *PercentilePanel        `json:"percentile,omitempty"`
	Scatter     *ScatterPanel           `json:"scatter,omitempty"`
}

// View is everything a renderer needs for one selection.
type View struct {
	Filter  model.FilterSpec `json:"filter"`
	Scope   string           `json:"scope"`
	KPIs    aggregator.KPIs  `json:"kpis"`
	Panels  []Panel          `json:"panels"`
	Notices []Notice         `json:"notices"`
}
