// Package aggregator derives per-player season totals and the chart series
// (trend, composition, scatter) from a filtered Dataset.
package aggregator

import (
	"sort"

	"github.com/pable/go-gps-metrics/internal/model"
)

// Aggregate groups ds by player and sums each requested metric over the
// player's records. Missing values contribute 0; Observed records which metrics
// were present at least once. Rows are sorted by player name, so the same input
// always yields the same output.
func Aggregate(ds *model.Dataset, metrics []string) model.Totals {
	type acc struct {
		row       model.PlayerTotals
		positions map[string]positionTally
	}
	byPlayer := make(map[string]*acc)

	for _, r := range ds.Records() {
		a, ok := byPlayer[r.Player]
		if !ok {
			a = &acc{
				row: model.PlayerTotals{
					Player:   r.Player,
					Totals:   make(map[string]float64, len(metrics)),
					Observed: make(map[string]bool, len(metrics)),
				},
				positions: make(map[string]positionTally),
			}
			for _, m := range metrics {
				a.row.Totals[m] = 0
			}
			byPlayer[r.Player] = a
		}
		a.row.Games++
		if r.Position != "" {
			t := a.positions[r.Position]
			t.count++
			if r.Seq >= t.lastSeq {
				t.lastSeq = r.Seq
			}
			a.positions[r.Position] = t
		}
		for _, m := range metrics {
			if v, ok := r.Metrics[m]; ok {
				a.row.Totals[m] += v
				a.row.Observed[m] = true
			}
		}
	}

	out := make(model.Totals, 0, len(byPlayer))
	for _, a := range byPlayer {
		a.row.Position = resolvePosition(a.positions)
		out = append(out, a.row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player < out[j].Player })
	return out
}

type positionTally struct {
	count   int
	lastSeq int
}

// resolvePosition picks the most frequent position; ties go to the one seen
// most recently (highest Seq). No positions resolves to "".
func resolvePosition(tally map[string]positionTally) string {
	best := ""
	var bestT positionTally
	for pos, t := range tally {
		if best == "" || t.count > bestT.count || (t.count == bestT.count && t.lastSeq > bestT.lastSeq) {
			best, bestT = pos, t
		}
	}
	return best
}
