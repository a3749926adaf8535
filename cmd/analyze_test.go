package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/percentile"
)

func analyzeFixture() *model.Dataset {
	m := func(d, sprint float64) map[string]float64 {
		return map[string]float64{model.MetricDistance: d, model.MetricSprintDistance: sprint}
	}
	return model.MustDataset([]model.Record{
		{Player: "Alice", Position: "FW", Game: "Game 1", Metrics: m(5000, 200)},
		{Player: "Bob", Position: "FW", Game: "Game 1", Metrics: m(4000, 100)},
		{Player: "Alice", Position: "FW", Game: "Game 10", Metrics: m(5100, 220)},
		{Player: "Alice", Position: "FW", Game: "Game 2", Metrics: m(5200, 210)},
		{Player: "Dan", Game: "Game 2", Metrics: m(3000, 20)},
	})
}

func TestBuildPlayerContext(t *testing.T) {
	out, err := buildPlayerContext(analyzeFixture(), "Alice", []string{model.MetricDistance, model.MetricHIDistance}, 2)
	if err != nil {
		t.Fatalf("buildPlayerContext: %v", err)
	}

	var doc struct {
		Player       string             `json:"player"`
		Position     string             `json:"position"`
		GamesPlayed  int                `json:"games_played"`
		SeasonTotals map[string]float64 `json:"season_totals"`
		PerGame      []struct {
			Game string `json:"game"`
		} `json:"per_game"`
		Percentiles []struct {
			Cohort      string             `json:"cohort"`
			CohortSize  int                `json:"cohort_size"`
			Percentiles map[string]float64 `json:"percentiles"`
			Skipped     []string           `json:"skipped"`
		} `json:"percentiles"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("context is not json: %v", err)
	}

	if doc.Player != "Alice" || doc.Position != "FW" || doc.GamesPlayed != 3 {
		t.Errorf("header = %q %q %d", doc.Player, doc.Position, doc.GamesPlayed)
	}
	if got := doc.SeasonTotals[model.MetricDistance]; got != 15300 {
		t.Errorf("distance total = %v, want 15300", got)
	}
	if len(doc.PerGame) != 2 || doc.PerGame[0].Game != "Game 2" || doc.PerGame[1].Game != "Game 10" {
		t.Errorf("per_game = %+v, want last two games in natural order", doc.PerGame)
	}
	if len(doc.Percentiles) != 2 {
		t.Fatalf("got %d profiles, want same position and all players", len(doc.Percentiles))
	}
	fw := doc.Percentiles[0]
	if fw.Cohort != "FW" || fw.CohortSize != 2 || fw.Percentiles[model.MetricDistance] != 75 {
		t.Errorf("FW profile = %+v", fw)
	}
	if len(fw.Skipped) != 1 || fw.Skipped[0] != model.MetricHIDistance {
		t.Errorf("skipped = %v", fw.Skipped)
	}
}

func TestBuildPlayerContextPositionless(t *testing.T) {
	out, err := buildPlayerContext(analyzeFixture(), "Dan", []string{model.MetricDistance}, 0)
	if err != nil {
		t.Fatalf("buildPlayerContext: %v", err)
	}
	var doc struct {
		Percentiles []struct {
			Cohort string `json:"cohort"`
		} `json:"percentiles"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Percentiles) != 1 || doc.Percentiles[0].Cohort != model.CohortAllPlayers {
		t.Errorf("profiles = %+v, want only all players", doc.Percentiles)
	}
}

func TestBuildPlayerContextUnknownPlayer(t *testing.T) {
	_, err := buildPlayerContext(analyzeFixture(), "Zed", []string{model.MetricDistance}, 0)
	if !errors.Is(err, percentile.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"week1.csv", 32, "week1.csv"},
		{"/data/exports/season/week1.csv", 10, "…week1.csv"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
