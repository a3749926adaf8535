package percentile

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pable/go-gps-metrics/internal/aggregator"
	"github.com/pable/go-gps-metrics/internal/model"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRankExamples(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		cohort []float64
		want   float64
	}{
		{"tied middle", 20, []float64{10, 20, 20, 30}, 50},
		{"strict minimum", 1, []float64{1, 2, 3, 4, 5}, 10},
		{"strict maximum", 5, []float64{1, 2, 3, 4, 5}, 90},
		{"all equal", 7, []float64{7, 7, 7}, 50},
		{"singleton", 42, []float64{42}, 100},
		{"singleton zero", 0, []float64{0}, 100},
		{"empty cohort", 3, nil, 0},
		{"zeros from missing metric", 0, []float64{0, 0, 10, 20}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rank(tt.value, tt.cohort); !near(got, tt.want) {
				t.Errorf("Rank(%v, %v) = %v, want %v", tt.value, tt.cohort, got, tt.want)
			}
		})
	}
}

func TestRankProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 500; iter++ {
		n := 2 + rng.Intn(30)
		cohort := make([]float64, n)
		for i := range cohort {
			// small range forces plenty of ties
			cohort[i] = float64(rng.Intn(10))
		}
		for _, v := range cohort {
			got := Rank(v, cohort)
			if got < 0 || got > 100 {
				t.Fatalf("Rank(%v, %v) = %v out of [0,100]", v, cohort, got)
			}
		}

		distinct := rng.Perm(n)
		vals := make([]float64, n)
		for i, p := range distinct {
			vals[i] = float64(p)
		}
		if got := Rank(0, vals); !near(got, 50/float64(n)) {
			t.Fatalf("min of %d distinct = %v, want %v", n, got, 50/float64(n))
		}
	}
}

func TestRankStrictExtremesNoTies(t *testing.T) {
	// The player's own value counts as one tie, so the extremes sit half a
	// slot inside the range.
	cohort := []float64{10, 20, 30, 40}
	if got := Rank(10, cohort); !near(got, 12.5) {
		t.Errorf("strict min = %v, want 12.5", got)
	}
	if got := Rank(40, cohort); !near(got, 87.5) {
		t.Errorf("strict max = %v, want 87.5", got)
	}
	// Ranked against the other members only, the same values give 0 and 100.
	if got := Rank(10, []float64{20, 30, 40}); got != 0 {
		t.Errorf("min vs others = %v, want 0", got)
	}
	if got := Rank(40, []float64{10, 20, 30}); got != 100 {
		t.Errorf("max vs others = %v, want 100", got)
	}
}

func totalsFixture() model.Totals {
	ds := model.MustDataset([]model.Record{
		{Player: "A", Position: "FW", Game: "Game 1", Metrics: map[string]float64{model.MetricDistance: 100, model.MetricHIDistance: 10}},
		{Player: "B", Position: "FW", Game: "Game 1", Metrics: map[string]float64{model.MetricDistance: 200}},
		{Player: "C", Position: "DF", Game: "Game 1", Metrics: map[string]float64{model.MetricDistance: 300, model.MetricHIDistance: 30}},
		{Player: "D", Position: "", Game: "Game 1", Metrics: map[string]float64{model.MetricDistance: 50}},
	})
	return aggregator.Aggregate(ds, []string{model.MetricDistance, model.MetricHIDistance, model.MetricSprintDistance})
}

func TestSamePositionCohort(t *testing.T) {
	totals := totalsFixture()

	c, err := SamePosition(totals, "A")
	if err != nil {
		t.Fatalf("SamePosition: %v", err)
	}
	if c.Name != "FW" || c.Size() != 2 {
		t.Errorf("cohort = %s/%d, want FW/2", c.Name, c.Size())
	}

	if _, err := SamePosition(totals, "Nobody"); !errors.Is(err, ErrNoData) {
		t.Errorf("unknown player: err = %v, want ErrNoData", err)
	}
	if _, err := SamePosition(totals, "D"); !errors.Is(err, ErrNoData) {
		t.Errorf("positionless player: err = %v, want ErrNoData", err)
	}
}

func TestAllPlayersCohort(t *testing.T) {
	c, err := AllPlayers(totalsFixture())
	if err != nil {
		t.Fatalf("AllPlayers: %v", err)
	}
	if c.Name != model.CohortAllPlayers || c.Size() != 4 {
		t.Errorf("cohort = %s/%d", c.Name, c.Size())
	}
	if _, err := AllPlayers(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("empty totals: err = %v, want ErrNoData", err)
	}
}

func TestProfile(t *testing.T) {
	totals := totalsFixture()
	all, _ := AllPlayers(totals)
	b, _ := totals.Lookup("B")

	res := Profile(b, all, []string{model.MetricDistance, model.MetricHIDistance, model.MetricSprintDistance})

	if res.CohortSize != 4 || res.Cohort != model.CohortAllPlayers {
		t.Errorf("cohort = %s/%d", res.Cohort, res.CohortSize)
	}
	// Distance: 50,100,200,300 -> B=200 has 2 below, 1 equal: 2.5/4
	if !near(res.Scores[model.MetricDistance], 62.5) {
		t.Errorf("Distance pct = %v, want 62.5", res.Scores[model.MetricDistance])
	}
	// HI: B and D missing -> 0,0,10,30 -> B=0: 0 below, 2 equal: 1/4
	if !near(res.Scores[model.MetricHIDistance], 25) {
		t.Errorf("HI pct = %v, want 25", res.Scores[model.MetricHIDistance])
	}
	// Sprint never observed in the cohort.
	if len(res.Skipped) != 1 || res.Skipped[0] != model.MetricSprintDistance {
		t.Errorf("Skipped = %v", res.Skipped)
	}
	if _, ok := res.Scores[model.MetricSprintDistance]; ok {
		t.Error("skipped metric should have no score")
	}
	if len(res.Metrics) != 2 || res.Metrics[0] != model.MetricDistance {
		t.Errorf("Metrics = %v", res.Metrics)
	}
}

func TestProfileSingletonCohort(t *testing.T) {
	totals := totalsFixture()
	c, _ := SamePosition(totals, "C")
	p, _ := totals.Lookup("C")
	res := Profile(p, c, []string{model.MetricDistance, model.MetricHIDistance})
	for _, m := range res.Metrics {
		if res.Scores[m] != 100 {
			t.Errorf("%s = %v, want 100 for singleton cohort", m, res.Scores[m])
		}
	}
}

func TestRadialSeries(t *testing.T) {
	pts, err := RadialSeries([]string{"A", "B", "C"}, map[string]float64{"A": 10, "B": 50, "C": 90})
	if err != nil {
		t.Fatalf("RadialSeries: %v", err)
	}
	if len(pts) != 4 {
		t.Fatalf("len = %d, want 4", len(pts))
	}
	wantAngles := []float64{0, 2 * math.Pi / 3, 4 * math.Pi / 3, 0}
	wantRadii := []float64{10, 50, 90, 10}
	for i, p := range pts {
		if !near(p.Angle, wantAngles[i]) || p.Radius != wantRadii[i] {
			t.Errorf("point %d = (%v, %v), want (%v, %v)", i, p.Angle, p.Radius, wantAngles[i], wantRadii[i])
		}
	}
	if pts[3] != pts[0] {
		t.Error("last point should repeat the first")
	}
}

func TestRadialSeriesMissingScoreAndEmpty(t *testing.T) {
	pts, err := RadialSeries([]string{"A", "B"}, map[string]float64{"A": 40})
	if err != nil {
		t.Fatalf("RadialSeries: %v", err)
	}
	if pts[1].Radius != 0 {
		t.Errorf("unscored metric radius = %v, want 0", pts[1].Radius)
	}

	if _, err := RadialSeries(nil, nil); !errors.Is(err, ErrNoMetrics) {
		t.Errorf("empty metrics: err = %v, want ErrNoMetrics", err)
	}
}
