package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Overview summarises what the store holds.
type Overview struct {
	Sources   int
	Records   int
	Games     int
	Players   int
	Positions int
	Coverage  []MetricCoverage
}

// MetricCoverage is how many records carry a metric.
type MetricCoverage struct {
	Metric  string
	Records int
}

// MetricRow is one (record, metric) cell in long format, used by the CSV exporter.
type MetricRow struct {
	Game     string
	Player   string
	Position string
	Metric   string
	Value    float64
}

// Overview returns record, game, player and position counts plus per-metric coverage.
func (db *DB) Overview() (Overview, error) {
	var o Overview
	err := db.conn.QueryRow(`
		SELECT
			(SELECT COUNT(1) FROM sources),
			(SELECT COUNT(1) FROM records),
			(SELECT COUNT(DISTINCT game) FROM records),
			(SELECT COUNT(DISTINCT name) FROM records),
			(SELECT COUNT(DISTINCT position) FROM records WHERE position != '')`).
		Scan(&o.Sources, &o.Records, &o.Games, &o.Players, &o.Positions)
	if err != nil {
		return o, fmt.Errorf("count records: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT metric, COUNT(1) FROM record_metrics
		GROUP BY metric ORDER BY COUNT(1) DESC, metric`)
	if err != nil {
		return o, fmt.Errorf("metric coverage: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c MetricCoverage
		if err := rows.Scan(&c.Metric, &c.Records); err != nil {
			return o, err
		}
		o.Coverage = append(o.Coverage, c)
	}
	return o, rows.Err()
}

// MetricRows returns stored metric cells in long format, restricted to the given
// games when any are passed, ordered by import order then metric.
func (db *DB) MetricRows(games []string) ([]MetricRow, error) {
	query := `
		SELECT r.game, r.name, r.position, m.metric, m.value
		FROM records r JOIN record_metrics m ON m.record_id = r.id`
	args := make([]any, 0, len(games))
	if len(games) > 0 {
		query += " WHERE r.game IN (" + placeholders(len(games)) + ")"
		for _, g := range games {
			args = append(args, g)
		}
	}
	query += " ORDER BY r.id, m.metric"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MetricRow
	for rows.Next() {
		var m MetricRow
		if err := rows.Scan(&m.Game, &m.Player, &m.Position, &m.Metric, &m.Value); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names plus stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = formatValue(v)
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case sql.RawBytes:
		return string(x)
	}
	return fmt.Sprint(v)
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
