package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pable/go-gps-metrics/internal/dashboard"
	"github.com/pable/go-gps-metrics/internal/model"
)

func fixture() *model.Dataset {
	m := func(d, hi, sprint float64) map[string]float64 {
		return map[string]float64{model.MetricDistance: d, model.MetricHIDistance: hi, model.MetricSprintDistance: sprint}
	}
	return model.MustDataset([]model.Record{
		{Player: "Alice", Position: "FW", Game: "Game 1", Metrics: m(5000, 700, 200)},
		{Player: "Bob", Position: "FW", Game: "Game 1", Metrics: m(4000, 500, 100)},
		{Player: "Alice", Position: "FW", Game: "Game 2", Metrics: m(5200, 750, 210)},
	})
}

func render(t *testing.T, mode model.ChartMode) string {
	t.Helper()
	v, err := dashboard.Build(fixture(), model.FilterSpec{Mode: mode, Players: []string{"Alice"}}, dashboard.DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderView(&buf, v, DefaultConfig()); err != nil {
		t.Fatalf("RenderView: %v", err)
	}
	return buf.String()
}

func TestRenderViewPerMode(t *testing.T) {
	tests := []struct {
		mode model.ChartMode
		want []string
	}{
		{model.ModeNone, []string{"KPIs for Player(s): Alice"}},
		{model.ModeTrend, []string{"Sprint Distance", "Game 2"}},
		{model.ModeComposition, []string{"Alice - Game 1", "Distance Types"}},
		{model.ModePercentile, []string{"Alice vs FWs", "Alice vs All Players", "polygon"}},
		{model.ModeScatter, []string{"Selected", "season totals"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			out := render(t, tt.mode)
			if !strings.Contains(out, "<html") {
				t.Fatalf("not an html page:\n%.200s", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q", w)
				}
			}
		})
	}
}

func TestRenderToFileCreatesDirs(t *testing.T) {
	v, err := dashboard.Build(fixture(), model.FilterSpec{}, dashboard.DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	path := filepath.Join(t.TempDir(), "nested", "view.html")
	if err := RenderToFile(path, v, DefaultConfig()); err != nil {
		t.Fatalf("RenderToFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("empty chart file")
	}
}

func TestConfigColor(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.color(model.MetricSprintDistance, 3); got != "#d62728" {
		t.Errorf("sprint color = %q", got)
	}
	if got := cfg.color("Top Speed", 1); got != cfg.Colors[1] {
		t.Errorf("fallback color = %q", got)
	}
	if got := (Config{}).color("Top Speed", 1); got != "" {
		t.Errorf("empty palette color = %q", got)
	}
}
