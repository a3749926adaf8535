// Package percentile ranks a player's season totals against a cohort of players.
//
// Ranks use the midpoint rule for ties:
//
//	pct = (count(v < x) + 0.5*count(v == x)) / N * 100
//
// where the cohort includes the player. A cohort of one scores 100.
package percentile

import (
	"errors"
	"fmt"
	"math"

	"github.com/pable/go-gps-metrics/internal/model"
)

var (
	// ErrNoData means the player is unknown or the cohort is empty.
	ErrNoData = errors.New("no data")
	// ErrNoMetrics means a radial series was requested for zero metrics.
	ErrNoMetrics = errors.New("no metrics")
)

// Rank returns the percentile of value within cohort, in [0,100].
// A singleton cohort yields 100; an empty one yields 0.
func Rank(value float64, cohort []float64) float64 {
	n := len(cohort)
	switch n {
	case 0:
		return 0
	case 1:
		return 100
	}
	var below, equal int
	for _, v := range cohort {
		switch {
		case v < value:
			below++
		case v == value:
			equal++
		}
	}
	return (float64(below) + 0.5*float64(equal)) / float64(n) * 100
}

// AllPlayers is the whole-team cohort.
func AllPlayers(totals model.Totals) (model.Cohort, error) {
	if len(totals) == 0 {
		return model.Cohort{}, fmt.Errorf("all players cohort: %w", ErrNoData)
	}
	return model.Cohort{Name: model.CohortAllPlayers, Members: totals}, nil
}

// SamePosition is the cohort of players sharing player's resolved position.
// Unknown players and players without a position have no such cohort.
func SamePosition(totals model.Totals, player string) (model.Cohort, error) {
	p, ok := totals.Lookup(player)
	if !ok {
		return model.Cohort{}, fmt.Errorf("player %q: %w", player, ErrNoData)
	}
	if p.Position == "" {
		return model.Cohort{}, fmt.Errorf("player %q has no position: %w", player, ErrNoData)
	}
	c := model.Cohort{Name: p.Position}
	for _, t := range totals {
		if t.Position == p.Position {
			c.Members = append(c.Members, t)
		}
	}
	return c, nil
}

// Profile ranks player on each metric against cohort. Metrics never observed
// for any cohort member are listed in Skipped and get no score; metrics observed
// for some members still rank everyone, with missing totals counted as 0.
func Profile(player model.PlayerTotals, cohort model.Cohort, metrics []string) model.PercentileResult {
	res := model.PercentileResult{
		Player:     player.Player,
		Position:   player.Position,
		Cohort:     cohort.Name,
		CohortSize: cohort.Size(),
		Scores:     make(map[string]float64, len(metrics)),
		Values:     make(map[string]float64, len(metrics)),
	}
	for _, m := range metrics {
		if !cohort.Members.Observed(m) {
			res.Skipped = append(res.Skipped, m)
			continue
		}
		res.Metrics = append(res.Metrics, m)
		res.Values[m] = player.Total(m)
		res.Scores[m] = Rank(player.Total(m), cohort.Values(m))
	}
	return res
}

// RadialPoint is one vertex of a pizza chart polygon.
type RadialPoint struct {
	Metric string  `json:"metric"`
	Angle  float64 `json:"angle"`  // radians
	Radius float64 `json:"radius"` // percentile
}

// RadialSeries places metric i at angle 2πi/len(metrics) with its score as the
// radius, then repeats the first point so the polygon closes. Metrics without a
// score sit at radius 0.
func RadialSeries(metrics []string, scores map[string]float64) ([]RadialPoint, error) {
	if len(metrics) == 0 {
		return nil, ErrNoMetrics
	}
	step := 2 * math.Pi / float64(len(metrics))
	out := make([]RadialPoint, 0, len(metrics)+1)
	for i, m := range metrics {
		out = append(out, RadialPoint{Metric: m, Angle: step * float64(i), Radius: scores[m]})
	}
	return append(out, out[0]), nil
}
