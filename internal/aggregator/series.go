package aggregator

import (
	"sort"

	"github.com/pable/go-gps-metrics/internal/model"
)

// ---- Trend ----

// TrendPoint is one game's value; OK is false when the record lacked the metric.
type TrendPoint struct {
	Game  string  `json:"game"`
	Value float64 `json:"value"`
	OK    bool    `json:"ok"`
}

// TrendSeries is one metric across a player's most recent games.
type TrendSeries struct {
	Metric string       `json:"metric"`
	Points []TrendPoint `json:"points"`
}

// Trend is a player's per-game series.
type Trend struct {
	Player  string        `json:"player"`
	Games   []string      `json:"games"`
	Series  []TrendSeries `json:"series"`
	Skipped []string      `json:"skipped,omitempty"` // metrics with no value in the window
}

// PlayerGames returns the player's records ordered by game (natural order,
// import order within a game), keeping only the last lastN when lastN > 0.
func PlayerGames(ds *model.Dataset, player string, lastN int) []model.Record {
	var recs []model.Record
	for _, r := range ds.Records() {
		if r.Player == player {
			recs = append(recs, r)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool { return model.GameLess(recs[i].Game, recs[j].Game) })
	if lastN > 0 && len(recs) > lastN {
		recs = recs[len(recs)-lastN:]
	}
	return recs
}

// BuildTrend returns one series per metric over the player's last lastN games.
// A metric with no value in any of those games is listed in Skipped instead.
// A player with no records yields a Trend with no games.
func BuildTrend(ds *model.Dataset, player string, metrics []string, lastN int) Trend {
	recs := PlayerGames(ds, player, lastN)
	t := Trend{Player: player}
	for _, r := range recs {
		t.Games = append(t.Games, r.Game)
	}
	if len(recs) == 0 {
		return t
	}
	for _, m := range metrics {
		s := TrendSeries{Metric: m}
		seen := false
		for _, r := range recs {
			v, ok := r.Value(m)
			seen = seen || ok
			s.Points = append(s.Points, TrendPoint{Game: r.Game, Value: v, OK: ok})
		}
		if !seen {
			t.Skipped = append(t.Skipped, m)
			continue
		}
		t.Series = append(t.Series, s)
	}
	return t
}

// ---- Composition ----

// Slice is one category's share of a game's total distance.
type Slice struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Percent  float64 `json:"percent"`
}

// GameComposition breaks one game's Distance down by category.
type GameComposition struct {
	Game     string   `json:"game"`
	Distance float64  `json:"distance"`
	Slices   []Slice  `json:"slices"`
	Missing  []string `json:"missing,omitempty"` // categories absent from the record
}

// Composition is a player's per-game distance breakdown.
type Composition struct {
	Player       string            `json:"player"`
	Games        []GameComposition `json:"games"`
	SkippedGames []string          `json:"skipped_games,omitempty"` // Distance missing or zero
}

// BuildComposition computes, for each of the player's last lastN games, each
// category as a percentage of that game's Distance. Games whose Distance is
// missing or zero are listed in SkippedGames rather than divided by.
func BuildComposition(ds *model.Dataset, player string, categories []string, lastN int) Composition {
	c := Composition{Player: player}
	for _, r := range PlayerGames(ds, player, lastN) {
		total, ok := r.Value(model.MetricDistance)
		if !ok || total == 0 {
			c.SkippedGames = append(c.SkippedGames, r.Game)
			continue
		}
		g := GameComposition{Game: r.Game, Distance: total}
		for _, cat := range categories {
			v, ok := r.Value(cat)
			if !ok {
				g.Missing = append(g.Missing, cat)
				continue
			}
			g.Slices = append(g.Slices, Slice{Category: cat, Value: v, Percent: v / total * 100})
		}
		c.Games = append(c.Games, g)
	}
	return c
}

// ---- Scatter ----

// ScatterPoint is one player's season totals on two metrics.
type ScatterPoint struct {
	Player   string  `json:"player"`
	Position string  `json:"position"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Scatter plots every player in totals on metrics X and Y.
type Scatter struct {
	X      string         `json:"x"`
	Y      string         `json:"y"`
	Points []ScatterPoint `json:"points"`
}

// BuildScatter returns one point per player. ok is false when either metric
// was never observed across totals, in which case the chart is skipped.
func BuildScatter(totals model.Totals, x, y string) (Scatter, bool) {
	s := Scatter{X: x, Y: y}
	if !totals.Observed(x) || !totals.Observed(y) {
		return s, false
	}
	for _, p := range totals {
		s.Points = append(s.Points, ScatterPoint{
			Player: p.Player, Position: p.Position,
			X: p.Total(x), Y: p.Total(y),
		})
	}
	return s, true
}
