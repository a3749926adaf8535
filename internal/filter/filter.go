// Package filter applies a FilterSpec to a Dataset the way the dashboard
// selectors cascade: games, then positions, then players.
package filter

import (
	"github.com/samber/lo"

	"github.com/pable/go-gps-metrics/internal/model"
)

// Views holds the dataset at each stage of the cascade.
type Views struct {
	Game     *model.Dataset // records in the selected games
	Position *model.Dataset // Game restricted to the selected positions
	Final    *model.Dataset // Position restricted to the selected players
}

// Options lists the values each selector may offer given the upstream selections.
type Options struct {
	Games     []string `json:"games"`
	Positions []string `json:"positions"`
	Players   []string `json:"players"`
}

// Apply runs the cascade. An empty set selects everything at that stage; a
// non-empty position set drops records without a position.
func Apply(ds *model.Dataset, spec model.FilterSpec) Views {
	var v Views
	v.Game = ByGames(ds, spec.Games)
	v.Position = ByPositions(v.Game, spec.Positions)
	v.Final = ByPlayers(v.Position, spec.Players)
	return v
}

// ByGames keeps records whose game is in games; empty keeps all.
func ByGames(ds *model.Dataset, games []string) *model.Dataset {
	if len(games) == 0 {
		return ds
	}
	return ds.Where(func(r *model.Record) bool { return lo.Contains(games, r.Game) })
}

// ByPositions keeps records whose position is in positions; empty keeps all.
func ByPositions(ds *model.Dataset, positions []string) *model.Dataset {
	if len(positions) == 0 {
		return ds
	}
	return ds.Where(func(r *model.Record) bool { return lo.Contains(positions, r.Position) })
}

// ByPlayers keeps records for the named players; empty keeps all.
func ByPlayers(ds *model.Dataset, players []string) *model.Dataset {
	if len(players) == 0 {
		return ds
	}
	return ds.Where(func(r *model.Record) bool { return lo.Contains(players, r.Player) })
}

// ListOptions returns the cascading selector values: every game, the positions
// present in the selected games, and the players present in the selected positions.
// Games are naturally ordered; positions and players keep first-seen order.
func ListOptions(ds *model.Dataset, games, positions []string) Options {
	allGames := ds.Games()
	model.SortGames(allGames)
	gameView := ByGames(ds, games)
	posView := ByPositions(gameView, positions)
	return Options{
		Games:     lo.Ternary(allGames == nil, []string{}, allGames),
		Positions: emptyIfNil(gameView.Positions()),
		Players:   emptyIfNil(posView.Players()),
	}
}

// Unknown returns the entries of selected that are not in available.
func Unknown(selected, available []string) []string {
	return lo.Filter(lo.Uniq(selected), func(s string, _ int) bool { return !lo.Contains(available, s) })
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
