package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pable/go-gps-metrics/internal/model"
)

var (
	playerHeaders   = []string{"name", "player", "player name"}
	gameHeaders     = []string{"game", "match"}
	positionHeaders = []string{"position", "pos"}
	// text columns that never carry metrics
	ignoredHeaders = []string{"date", "team", "opponent", "session", "notes"}
)

type columns struct {
	player, game, position int
	metrics                map[int]string // column index -> canonical metric
}

func mapHeader(header []string) (columns, error) {
	c := columns{player: -1, game: -1, position: -1, metrics: make(map[int]string)}
	seen := make(map[string]bool)
	for i, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case h == "":
			continue
		case c.player < 0 && oneOf(h, playerHeaders):
			c.player = i
		case c.game < 0 && oneOf(h, gameHeaders):
			c.game = i
		case c.position < 0 && oneOf(h, positionHeaders):
			c.position = i
		case oneOf(h, ignoredHeaders):
		default:
			m := model.CanonicalMetric(raw)
			// first occurrence wins when an alias duplicates a column
			if !seen[m] {
				seen[m] = true
				c.metrics[i] = m
			}
		}
	}
	if c.player < 0 {
		return c, fmt.Errorf("no player column (want one of %v): %w", playerHeaders, ErrMissingColumn)
	}
	if c.game < 0 {
		return c, fmt.Errorf("no game column (want one of %v): %w", gameHeaders, ErrMissingColumn)
	}
	return c, nil
}

func oneOf(h string, names []string) bool {
	for _, n := range names {
		if h == n {
			return true
		}
	}
	return false
}

// parseNumber reads a metric cell; empty and non-numeric cells are missing.
// NaN and infinities count as non-numeric.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
