// Package model holds the GPS tracking data types shared by ingestion, aggregation,
// the percentile engine and the renderers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// Metric column names as they appear in the tracking exports.
const (
	MetricDistance          = "Distance"
	MetricSprintDistance    = "Sprint Distance"
	MetricHIDistance        = "HI Distance"
	MetricRunningDistance   = "Running Distance"
	MetricHSDistance        = "HS Distance"
	MetricStandingDistance  = "Standing Distance"
	MetricWalkingDistance   = "Walking Distance"
	MetricJoggingDistance   = "Jogging Distance"
	MetricSprintEfforts     = "Sprint Efforts"
	MetricHighSpeedEfforts  = "High Speed Efforts"
	metricHighSpeedDistance = "High Speed Distance"
)

// KnownMetrics lists the metric vocabulary in display order.
var KnownMetrics = []string{
	MetricDistance,
	MetricRunningDistance,
	MetricHIDistance,
	MetricHSDistance,
	MetricSprintDistance,
	MetricStandingDistance,
	MetricWalkingDistance,
	MetricJoggingDistance,
	MetricSprintEfforts,
	MetricHighSpeedEfforts,
}

// ErrInvalidRecord is returned when a record lacks a player name or game identifier.
var ErrInvalidRecord = errors.New("invalid record")

// CanonicalMetric maps a raw column header onto the metric vocabulary.
// Matching is case-insensitive; "High Speed Distance" is folded into "HS Distance".
// Unknown headers are returned trimmed.
func CanonicalMetric(header string) string {
	h := strings.TrimSpace(header)
	if strings.EqualFold(h, metricHighSpeedDistance) {
		return MetricHSDistance
	}
	for _, m := range KnownMetrics {
		if strings.EqualFold(h, m) {
			return m
		}
	}
	return h
}

// Record is one player's performance in one game. Metrics holds only the values
// present in the source; an absent key means the metric is missing for the row.
type Record struct {
	Seq      int
	Player   string
	Position string // "" when the source had no position
	Game     string
	Source   string
	Metrics  map[string]float64
}

// Value returns the metric value and whether it was present.
func (r *Record) Value(metric string) (float64, bool) {
	v, ok := r.Metrics[metric]
	return v, ok
}

// ValueOrZero returns the metric value, or 0 when missing.
func (r *Record) ValueOrZero(metric string) float64 {
	return r.Metrics[metric]
}

// Dataset is an ordered, read-only collection of records.
type Dataset struct {
	records []Record
}

// NewDataset validates the records and assigns each its position in the dataset.
// The slice is copied; callers may reuse theirs.
func NewDataset(records []Record) (*Dataset, error) {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Player = strings.TrimSpace(r.Player)
		r.Game = strings.TrimSpace(r.Game)
		r.Position = strings.TrimSpace(r.Position)
		if r.Player == "" || r.Game == "" {
			return nil, fmt.Errorf("record %d (%s): %w: player and game are required", i, r.Source, ErrInvalidRecord)
		}
		r.Seq = i
		if r.Metrics == nil {
			r.Metrics = map[string]float64{}
		}
		out[i] = r
	}
	return &Dataset{records: out}, nil
}

// MustDataset is NewDataset for fixtures; it panics on invalid input.
func MustDataset(records []Record) *Dataset {
	ds, err := NewDataset(records)
	if err != nil {
		panic(err)
	}
	return ds
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns the records in dataset order. The slice must not be modified.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return d.records
}

// Where returns a new dataset holding the records accepted by keep, preserving Seq.
func (d *Dataset) Where(keep func(r *Record) bool) *Dataset {
	out := &Dataset{}
	for i := range d.Records() {
		if keep(&d.records[i]) {
			out.records = append(out.records, d.records[i])
		}
	}
	return out
}

// Games returns distinct game identifiers in first-seen order.
func (d *Dataset) Games() []string {
	return d.distinct(func(r *Record) string { return r.Game })
}

// Positions returns distinct non-empty positions in first-seen order.
func (d *Dataset) Positions() []string {
	return d.distinct(func(r *Record) string { return r.Position })
}

// Players returns distinct player names in first-seen order.
func (d *Dataset) Players() []string {
	return d.distinct(func(r *Record) string { return r.Player })
}

// Metrics returns every metric present in at least one record, known metrics first.
func (d *Dataset) Metrics() []string {
	seen := make(map[string]bool)
	var extra []string
	for i := range d.Records() {
		for m := range d.records[i].Metrics {
			if !seen[m] {
				seen[m] = true
				extra = append(extra, m)
			}
		}
	}
	out := make([]string, 0, len(seen))
	for _, m := range KnownMetrics {
		if seen[m] {
			out = append(out, m)
		}
	}
	for _, m := range extra {
		if !isKnown(m) {
			out = append(out, m)
		}
	}
	return out
}

// HasMetric reports whether any record carries the metric.
func (d *Dataset) HasMetric(metric string) bool {
	for i := range d.Records() {
		if _, ok := d.records[i].Metrics[metric]; ok {
			return true
		}
	}
	return false
}

func (d *Dataset) distinct(key func(r *Record) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range d.Records() {
		k := key(&d.records[i])
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func isKnown(metric string) bool {
	for _, m := range KnownMetrics {
		if m == metric {
			return true
		}
	}
	return false
}
