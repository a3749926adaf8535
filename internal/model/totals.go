package model

import "sort"

// ---- Derived per-player values ----

// PlayerTotals holds one player's summed metrics across the included games.
type PlayerTotals struct {
	Player   string
	Position string // resolved position; "" when none was observed
	Games    int    // number of included records
	Totals   map[string]float64
	Observed map[string]bool // metric present in at least one included record
}

// Total returns the summed value for metric (0 when absent).
func (p PlayerTotals) Total(metric string) float64 {
	return p.Totals[metric]
}

// Totals is the aggregator output, sorted by player name.
type Totals []PlayerTotals

// Lookup returns the row for player, if present.
func (t Totals) Lookup(player string) (PlayerTotals, bool) {
	i := sort.Search(len(t), func(i int) bool { return t[i].Player >= player })
	if i < len(t) && t[i].Player == player {
		return t[i], true
	}
	// fall back to a scan for slices that were built by hand and not sorted
	for _, p := range t {
		if p.Player == player {
			return p, true
		}
	}
	return PlayerTotals{}, false
}

// Observed reports whether any row observed the metric.
func (t Totals) Observed(metric string) bool {
	for _, p := range t {
		if p.Observed[metric] {
			return true
		}
	}
	return false
}

// Cohort is a named comparison group for percentile ranking.
type Cohort struct {
	Name    string
	Members Totals
}

// CohortAllPlayers is the name of the whole-team cohort.
const CohortAllPlayers = "All Players"

// Size returns the number of members.
func (c Cohort) Size() int { return len(c.Members) }

// Values returns the metric column across the cohort, in member order.
func (c Cohort) Values(metric string) []float64 {
	out := make([]float64, len(c.Members))
	for i, m := range c.Members {
		out[i] = m.Totals[metric]
	}
	return out
}

// PercentileResult is one player's percentile profile against one cohort.
type PercentileResult struct {
	Player     string             `json:"player"`
	Position   string             `json:"position"`
	Cohort     string             `json:"cohort"`
	CohortSize int                `json:"cohort_size"`
	Metrics    []string           `json:"metrics"`
	Scores     map[string]float64 `json:"scores"`
	Values     map[string]float64 `json:"values"`
	Skipped    []string           `json:"skipped,omitempty"`
}
