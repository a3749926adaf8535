package aggregator

import (
	"math"

	"github.com/pable/go-gps-metrics/internal/model"
)

// KPIs are the headline figures shown above every view.
type KPIs struct {
	TotalDistance   float64 `json:"total_distance"`
	AverageDistance float64 `json:"average_distance"` // per record, over the game view
	TotalSprint     float64 `json:"total_sprint_distance"`
	TotalHI         float64 `json:"total_hi_distance"`
	Records         int     `json:"records"`
	HasAverage      bool    `json:"has_average"`
}

// ComputeKPIs sums distance, sprint and HI distance over view, and averages
// Distance over gameView (the records in the selected games, before position
// and player filters). The average ignores missing values and is rounded to
// one decimal.
func ComputeKPIs(view, gameView *model.Dataset) KPIs {
	var k KPIs
	for _, r := range view.Records() {
		k.TotalDistance += r.ValueOrZero(model.MetricDistance)
		k.TotalSprint += r.ValueOrZero(model.MetricSprintDistance)
		k.TotalHI += r.ValueOrZero(model.MetricHIDistance)
		k.Records++
	}

	var sum float64
	var n int
	for _, r := range gameView.Records() {
		if v, ok := r.Value(model.MetricDistance); ok {
			sum += v
			n++
		}
	}
	if n > 0 {
		k.AverageDistance = round1(sum / float64(n))
		k.HasAverage = true
	}
	return k
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
