package model

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func rec(player, pos, game string, metrics map[string]float64) Record {
	return Record{Player: player, Position: pos, Game: game, Metrics: metrics}
}

func TestNewDatasetAssignsSeqAndValidates(t *testing.T) {
	ds, err := NewDataset([]Record{
		rec("A", "FW", "Game 1", nil),
		rec(" B ", "", "Game 1", map[string]float64{MetricDistance: 10}),
	})
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	recs := ds.Records()
	if recs[0].Seq != 0 || recs[1].Seq != 1 {
		t.Errorf("Seq = %d,%d, want 0,1", recs[0].Seq, recs[1].Seq)
	}
	if recs[1].Player != "B" {
		t.Errorf("player not trimmed: %q", recs[1].Player)
	}
	if recs[0].Metrics == nil {
		t.Error("nil metrics map should be replaced")
	}

	_, err = NewDataset([]Record{rec("", "FW", "Game 1", nil)})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("missing player: err = %v, want ErrInvalidRecord", err)
	}
	_, err = NewDataset([]Record{rec("A", "FW", "  ", nil)})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("missing game: err = %v, want ErrInvalidRecord", err)
	}
}

func TestDatasetDistinctLists(t *testing.T) {
	ds := MustDataset([]Record{
		rec("B", "DF", "Game 2", map[string]float64{MetricDistance: 1}),
		rec("A", "", "Game 1", map[string]float64{"Top Speed": 30}),
		rec("B", "MF", "Game 1", map[string]float64{MetricSprintDistance: 2}),
	})
	if got, want := ds.Games(), []string{"Game 2", "Game 1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Games = %v, want %v", got, want)
	}
	if got, want := ds.Positions(), []string{"DF", "MF"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Positions = %v, want %v", got, want)
	}
	if got, want := ds.Players(), []string{"B", "A"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Players = %v, want %v", got, want)
	}
	if got, want := ds.Metrics(), []string{MetricDistance, MetricSprintDistance, "Top Speed"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Metrics = %v, want %v", got, want)
	}
	if !ds.HasMetric(MetricSprintDistance) || ds.HasMetric(MetricHIDistance) {
		t.Error("HasMetric mismatch")
	}
}

func TestDatasetWherePreservesSeq(t *testing.T) {
	ds := MustDataset([]Record{
		rec("A", "FW", "Game 1", nil),
		rec("B", "FW", "Game 2", nil),
		rec("C", "FW", "Game 2", nil),
	})
	sub := ds.Where(func(r *Record) bool { return r.Game == "Game 2" })
	if sub.Len() != 2 {
		t.Fatalf("Len = %d, want 2", sub.Len())
	}
	if sub.Records()[0].Seq != 1 || sub.Records()[1].Seq != 2 {
		t.Errorf("Seq not preserved: %+v", sub.Records())
	}
}

func TestCanonicalMetric(t *testing.T) {
	cases := map[string]string{
		"High Speed Distance": MetricHSDistance,
		" hs distance ":       MetricHSDistance,
		"distance":            MetricDistance,
		"Sprint Efforts":      MetricSprintEfforts,
		" Top Speed ":         "Top Speed",
	}
	for in, want := range cases {
		if got := CanonicalMetric(in); got != want {
			t.Errorf("CanonicalMetric(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortGamesNatural(t *testing.T) {
	games := []string{"Game 10", "Game 2", "Game 1", "Cup Final", "Game 02"}
	SortGames(games)
	want := []string{"Cup Final", "Game 1", "Game 2", "Game 02", "Game 10"}
	if !reflect.DeepEqual(games, want) {
		t.Errorf("SortGames = %v, want %v", games, want)
	}
}

func TestParseChartMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ChartMode
		wantErr bool
	}{
		{"", ModeNone, false},
		{"pizza", ModePercentile, false},
		{"Pie", ModeComposition, false},
		{"scatter", ModeScatter, false},
		{"heatmap", ModeNone, true},
	}
	for _, tt := range tests {
		got, err := ParseChartMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChartMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseChartMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterSpecKeyIsOrderInsensitive(t *testing.T) {
	a := FilterSpec{Games: []string{"Game 2", "Game 1"}, Players: []string{"X"}}
	b := FilterSpec{Games: []string{"Game 1", "Game 2", "Game 1"}, Players: []string{" X "}, Mode: ModeNone}
	if a.Key() != b.Key() {
		t.Errorf("keys differ:\n%q\n%q", a.Key(), b.Key())
	}
	c := FilterSpec{Games: []string{"Game 1"}}
	if a.Key() == c.Key() {
		t.Error("different selections share a key")
	}
}

func TestFilterSpecNormalizeKeepsPlayerOrder(t *testing.T) {
	f := FilterSpec{Games: []string{"Game 2", "Game 1"}, Players: []string{"Zoe", " Adam", "Zoe", ""}}

	n := f.Normalize()
	if got := strings.Join(n.Players, ","); got != "Zoe,Adam" {
		t.Errorf("Normalize players = %q, want Zoe,Adam", got)
	}
	if got := strings.Join(n.Games, ","); got != "Game 2,Game 1" {
		t.Errorf("Normalize games = %q, want selection order", got)
	}
	if n.Mode != ModeNone {
		t.Errorf("Normalize mode = %q, want %q", n.Mode, ModeNone)
	}
	if got := strings.Join(f.Canonical().Players, ","); got != "Adam,Zoe" {
		t.Errorf("Canonical players = %q, want Adam,Zoe", got)
	}

	swapped := FilterSpec{Games: []string{"Game 1", "Game 2"}, Players: []string{"Adam", "Zoe"}}
	if f.Key() == swapped.Key() {
		t.Error("player order should be part of the key")
	}
}

func TestTotalsLookup(t *testing.T) {
	tot := Totals{{Player: "A"}, {Player: "C"}, {Player: "E"}}
	if _, ok := tot.Lookup("C"); !ok {
		t.Error("expected C")
	}
	if _, ok := tot.Lookup("B"); ok {
		t.Error("unexpected B")
	}
}
