package filter

import (
	"reflect"
	"testing"

	"github.com/pable/go-gps-metrics/internal/model"
)

func fixture() *model.Dataset {
	m := func(d float64) map[string]float64 { return map[string]float64{model.MetricDistance: d} }
	return model.MustDataset([]model.Record{
		{Player: "Alice", Position: "FW", Game: "Game 1", Metrics: m(100)},
		{Player: "Bob", Position: "DF", Game: "Game 1", Metrics: m(200)},
		{Player: "Cara", Position: "", Game: "Game 2", Metrics: m(300)},
		{Player: "Alice", Position: "FW", Game: "Game 10", Metrics: m(400)},
		{Player: "Dan", Position: "MF", Game: "Game 2", Metrics: m(500)},
	})
}

func TestApplyEmptySpecKeepsEverything(t *testing.T) {
	ds := fixture()
	v := Apply(ds, model.FilterSpec{})
	if v.Game.Len() != 5 || v.Position.Len() != 5 || v.Final.Len() != 5 {
		t.Errorf("lens = %d/%d/%d, want 5/5/5", v.Game.Len(), v.Position.Len(), v.Final.Len())
	}
}

func TestApplyCascade(t *testing.T) {
	ds := fixture()
	v := Apply(ds, model.FilterSpec{
		Games:     []string{"Game 1", "Game 2"},
		Positions: []string{"FW", "MF"},
		Players:   []string{"Alice"},
	})
	if v.Game.Len() != 4 {
		t.Errorf("game view = %d, want 4", v.Game.Len())
	}
	// Cara has no position and is dropped once positions are selected.
	if got := v.Position.Players(); !reflect.DeepEqual(got, []string{"Alice", "Dan"}) {
		t.Errorf("position view players = %v", got)
	}
	if v.Final.Len() != 1 || v.Final.Records()[0].Game != "Game 1" {
		t.Errorf("final view = %+v", v.Final.Records())
	}
}

func TestListOptionsCascade(t *testing.T) {
	ds := fixture()

	all := ListOptions(ds, nil, nil)
	if want := []string{"Game 1", "Game 2", "Game 10"}; !reflect.DeepEqual(all.Games, want) {
		t.Errorf("Games = %v, want %v", all.Games, want)
	}
	if want := []string{"FW", "DF", "MF"}; !reflect.DeepEqual(all.Positions, want) {
		t.Errorf("Positions = %v, want %v", all.Positions, want)
	}

	o := ListOptions(ds, []string{"Game 2"}, []string{"MF"})
	if want := []string{"MF"}; !reflect.DeepEqual(o.Positions, want) {
		t.Errorf("Positions = %v, want %v", o.Positions, want)
	}
	if want := []string{"Dan"}; !reflect.DeepEqual(o.Players, want) {
		t.Errorf("Players = %v, want %v", o.Players, want)
	}

	none := ListOptions(ds, []string{"Game 99"}, nil)
	if none.Positions == nil || len(none.Positions) != 0 || len(none.Players) != 0 {
		t.Errorf("expected empty non-nil lists, got %+v", none)
	}
}

func TestUnknown(t *testing.T) {
	got := Unknown([]string{"Alice", "Zed", "Zed"}, []string{"Alice", "Bob"})
	if !reflect.DeepEqual(got, []string{"Zed"}) {
		t.Errorf("Unknown = %v", got)
	}
}
