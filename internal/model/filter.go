package model

import (
	"fmt"
	"sort"
	"strings"
)

// ChartMode selects which panel set a view renders.
type ChartMode string

const (
	ModeNone        ChartMode = "none"
	ModeTrend       ChartMode = "trend"
	ModeComposition ChartMode = "composition"
	ModePercentile  ChartMode = "percentile"
	ModeScatter     ChartMode = "scatter"
)

// ChartModes lists every valid mode.
var ChartModes = []ChartMode{ModeNone, ModeTrend, ModeComposition, ModePercentile, ModeScatter}

// ParseChartMode accepts a mode name plus the aliases "pie" and "pizza".
// The empty string is ModeNone.
func ParseChartMode(s string) (ChartMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "trend":
		return ModeTrend, nil
	case "composition", "pie":
		return ModeComposition, nil
	case "percentile", "pizza":
		return ModePercentile, nil
	case "scatter":
		return ModeScatter, nil
	}
	return ModeNone, fmt.Errorf("unknown chart mode %q (want none, trend, composition, percentile or scatter)", s)
}

// FilterSpec is the user's selection. Empty sets mean "all".
type FilterSpec struct {
	Games     []string  `json:"games,omitempty"`
	Positions []string  `json:"positions,omitempty"`
	Players   []string  `json:"players,omitempty"`
	Mode      ChartMode `json:"mode,omitempty"`
}

// Normalize returns a copy with trimmed, de-duplicated sets and a concrete
// mode. Selection order is kept: players are shown in the order they were picked.
func (f FilterSpec) Normalize() FilterSpec {
	mode := f.Mode
	if mode == "" {
		mode = ModeNone
	}
	return FilterSpec{
		Games:     uniqueSet(f.Games),
		Positions: uniqueSet(f.Positions),
		Players:   uniqueSet(f.Players),
		Mode:      mode,
	}
}

// Canonical is Normalize with every set sorted, so equal selections compare
// identically regardless of order.
func (f FilterSpec) Canonical() FilterSpec {
	c := f.Normalize()
	sort.Strings(c.Games)
	sort.Strings(c.Positions)
	sort.Strings(c.Players)
	return c
}

// Key is a stable textual form of the spec. Games and positions are keyed as
// sets; players keep their order since it decides panel order.
func (f FilterSpec) Key() string {
	c := f.Normalize()
	sort.Strings(c.Games)
	sort.Strings(c.Positions)
	return strings.Join([]string{
		"g=" + strings.Join(c.Games, "\x1f"),
		"p=" + strings.Join(c.Positions, "\x1f"),
		"n=" + strings.Join(c.Players, "\x1f"),
		"m=" + string(c.Mode),
	}, "\x1e")
}

func uniqueSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
