package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pable/go-gps-metrics/internal/aggregator"
	"github.com/pable/go-gps-metrics/internal/filter"
	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/percentile"
)

// ErrUnknownMode is returned for a chart mode with no registered strategy.
var ErrUnknownMode = errors.New("unknown chart mode")

// input is what every strategy sees.
type input struct {
	views   filter.Views
	opts    Options
	players []string
}

// strategy builds the panels for one chart mode.
type strategy func(in input) ([]Panel, []Notice, error)

var strategies = map[model.ChartMode]strategy{
	model.ModeNone:        func(input) ([]Panel, []Notice, error) { return nil, nil, nil },
	model.ModeTrend:       buildTrend,
	model.ModeComposition: buildComposition,
	model.ModePercentile:  buildPercentile,
	model.ModeScatter:     buildScatter,
}

// Build applies spec to ds and assembles the View. Missing data never fails the
// build; it shows up as Notices. The only errors are an unknown mode and an
// empty pizza metric list.
func Build(ds *model.Dataset, spec model.FilterSpec, opts Options) (*View, error) {
	spec = spec.Normalize()
	strat, ok := strategies[spec.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, spec.Mode)
	}

	views := filter.Apply(ds, spec)
	v := &View{
		Filter:  spec,
		Scope:   ScopeLabel(spec),
		KPIs:    aggregator.ComputeKPIs(views.Final, views.Game),
		Panels:  []Panel{},
		Notices: []Notice{},
	}

	panels, notices, err := strat(input{views: views, opts: opts, players: spec.Players})
	if err != nil {
		return nil, fmt.Errorf("build %s view: %w", spec.Mode, err)
	}
	v.Panels = append(v.Panels, panels...)
	v.Notices = append(v.Notices, notices...)
	return v, nil
}

// ScopeLabel describes whom the KPIs cover.
func ScopeLabel(spec model.FilterSpec) string {
	switch {
	case len(spec.Players) > 0:
		return "Player(s): " + strings.Join(spec.Players, ", ")
	case len(spec.Positions) > 0:
		return "Position(s): " + strings.Join(spec.Positions, ", ")
	}
	return "Entire Team"
}

// forEachPlayer runs fn for every selected player, collecting panels. When fn
// reports no data the player gets a notice instead.
func forEachPlayer(players []string, noData string, fn func(player string) ([]Panel, []Notice, bool)) ([]Panel, []Notice) {
	var panels []Panel
	var notices []Notice
	for _, p := range players {
		ps, ns, ok := fn(p)
		notices = append(notices, ns...)
		if !ok {
			notices = append(notices, Notice{Player: p, Message: fmt.Sprintf("%s %s", noData, p)})
			continue
		}
		panels = append(panels, ps...)
	}
	return panels, notices
}

func buildTrend(in input) ([]Panel, []Notice, error) {
	panels, notices := forEachPlayer(in.players, "No data for", func(player string) ([]Panel, []Notice, bool) {
		tr := aggregator.BuildTrend(in.views.Game, player, in.opts.TrendMetrics, in.opts.TrendGames)
		if len(tr.Games) == 0 || len(tr.Series) == 0 {
			return nil, nil, false
		}
		return []Panel{{Kind: model.ModeTrend, Title: player, Player: player, Trend: &tr}}, nil, true
	})
	return panels, notices, nil
}

func buildComposition(in input) ([]Panel, []Notice, error) {
	panels, notices := forEachPlayer(in.players, "No data for pie chart:", func(player string) ([]Panel, []Notice, bool) {
		c := aggregator.BuildComposition(in.views.Game, player, in.opts.CompositionCategories, in.opts.TrendGames)
		var ns []Notice
		for _, g := range c.SkippedGames {
			ns = append(ns, Notice{Player: player, Message: fmt.Sprintf("Skipping %s for %s", g, player)})
		}
		if len(c.Games) == 0 {
			return nil, ns, len(c.SkippedGames) > 0
		}
		return []Panel{{Kind: model.ModeComposition, Title: player, Player: player, Composition: &c}}, ns, true
	})
	return panels, notices, nil
}

func buildPercentile(in input) ([]Panel, []Notice, error) {
	if len(in.opts.PizzaMetrics) == 0 {
		return nil, nil, percentile.ErrNoMetrics
	}
	// Cohort totals cover the selected games only; position and player
	// filters pick whom to chart, not whom to compare against.
	totals := aggregator.Aggregate(in.views.Game, in.opts.PizzaMetrics)

	type cohortFn func(player string) (model.Cohort, error)
	cohorts := []struct {
		label string
		pick  cohortFn
	}{
		{"same position", func(p string) (model.Cohort, error) { return percentile.SamePosition(totals, p) }},
		{"all players", func(string) (model.Cohort, error) { return percentile.AllPlayers(totals) }},
	}

	var notices []Notice
	var players []string
	for _, p := range in.players {
		if _, ok := totals.Lookup(p); !ok {
			notices = append(notices, Notice{Player: p, Message: "No data for " + p})
			continue
		}
		players = append(players, p)
	}

	var panels []Panel
	for _, c := range cohorts {
		ps, ns := forEachPlayer(players, "No data for", func(player string) ([]Panel, []Notice, bool) {
			pt, _ := totals.Lookup(player)
			cohort, err := c.pick(player)
			if err != nil {
				return nil, []Notice{{Player: player, Message: fmt.Sprintf("No %s cohort for %s", c.label, player)}}, true
			}
			res := percentile.Profile(pt, cohort, in.opts.PizzaMetrics)
			series, err := percentile.RadialSeries(res.Metrics, res.Scores)
			if err != nil {
				return nil, []Notice{{Player: player, Message: fmt.Sprintf("No pizza metrics with data for %s vs %s", player, cohort.Name)}}, true
			}
			return []Panel{{
				Kind:       model.ModePercentile,
				Title:      pizzaTitle(player, cohort),
				Player:     player,
				Percentile: &PercentilePanel{Result: res, Series: series},
			}}, nil, true
		})
		panels = append(panels, ps...)
		notices = append(notices, ns...)
	}
	return panels, notices, nil
}

func pizzaTitle(player string, c model.Cohort) string {
	if c.Name == model.CohortAllPlayers {
		return player + " vs All Players"
	}
	return player + " vs " + c.Name + "s"
}

func buildScatter(in input) ([]Panel, []Notice, error) {
	x, y := in.opts.ScatterX, in.opts.ScatterY
	totals := aggregator.Aggregate(in.views.Position, []string{x, y})
	s, ok := aggregator.BuildScatter(totals, x, y)
	if !ok || len(s.Points) == 0 {
		return nil, []Notice{{Message: fmt.Sprintf("No data for scatter: %s vs %s", x, y)}}, nil
	}
	return []Panel{{
		Kind:    model.ModeScatter,
		Title:   fmt.Sprintf("%s vs %s", y, x),
		Scatter: &ScatterPanel{Scatter: s, Highlight: in.players},
	}}, nil, nil
}
