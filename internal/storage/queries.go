package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pable/go-gps-metrics/internal/model"
)

// SourceInfo describes one imported table (a CSV file or a workbook sheet).
type SourceInfo struct {
	Hash       string
	Path       string
	Sheet      string
	ImportedAt time.Time
	Rows       int
	Skipped    int
}

// SourceExists returns true if a source with the given hash is already stored.
func (db *DB) SourceExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM sources WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ImportSource stores a source and its records in one transaction. An existing
// source with the same hash is replaced, records included.
func (db *DB) ImportSource(info SourceInfo, records []model.Record) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// A replaced source keeps its first import time, and with it its place in
	// the loaded dataset.
	var prev string
	err = tx.QueryRow("SELECT imported_at FROM sources WHERE hash = ?", info.Hash).Scan(&prev)
	switch {
	case err == nil:
		if t, perr := time.Parse(time.RFC3339Nano, prev); perr == nil {
			info.ImportedAt = t
		}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("lookup source %s: %w", info.Hash, err)
	}
	if _, err := tx.Exec("DELETE FROM sources WHERE hash = ?", info.Hash); err != nil {
		return fmt.Errorf("replace source %s: %w", info.Hash, err)
	}
	if info.ImportedAt.IsZero() {
		info.ImportedAt = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO sources(hash, path, sheet, imported_at, row_count, skipped)
		VALUES (?, ?, ?, ?, ?, ?)`,
		info.Hash, info.Path, info.Sheet, info.ImportedAt.UTC().Format(time.RFC3339Nano),
		len(records), info.Skipped,
	)
	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO records(source_hash, row_index, game, name, position)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer recStmt.Close()

	metricStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO record_metrics(record_id, metric, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer metricStmt.Close()

	for i, r := range records {
		res, err := recStmt.Exec(info.Hash, i, r.Game, r.Player, r.Position)
		if err != nil {
			return fmt.Errorf("insert record %s/%s: %w", r.Player, r.Game, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for metric, v := range r.Metrics {
			if _, err := metricStmt.Exec(id, metric, v); err != nil {
				return fmt.Errorf("insert metric %s for %s: %w", metric, r.Player, err)
			}
		}
	}
	return tx.Commit()
}

// DeleteSource removes a source and its records. Deleting an unknown hash is not an error.
func (db *DB) DeleteSource(hash string) error {
	_, err := db.conn.Exec("DELETE FROM sources WHERE hash = ?", hash)
	return err
}

// ListSources returns all stored sources, most recently imported first.
func (db *DB) ListSources() ([]SourceInfo, error) {
	rows, err := db.conn.Query(`
		SELECT hash, path, sheet, imported_at, row_count, skipped
		FROM sources ORDER BY imported_at DESC, path, sheet`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceInfo
	for rows.Next() {
		var s SourceInfo
		var ts string
		if err := rows.Scan(&s.Hash, &s.Path, &s.Sheet, &ts, &s.Rows, &s.Skipped); err != nil {
			return nil, err
		}
		s.ImportedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

// LoadDataset reads every stored record, in import order, into a Dataset.
// Sources are ordered by first import time and rows keep their file order.
// Metrics never stored for a record stay missing.
func (db *DB) LoadDataset() (*model.Dataset, error) {
	rows, err := db.conn.Query(`
		SELECT r.id, r.game, r.name, r.position, s.path, s.sheet, m.metric, m.value
		FROM records r
		JOIN sources s ON s.hash = r.source_hash
		LEFT JOIN record_metrics m ON m.record_id = r.id
		ORDER BY s.imported_at, r.source_hash, r.row_index, r.id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var (
		records []model.Record
		lastID  int64 = -1
	)
	for rows.Next() {
		var id int64
		var game, name, pos, path, sh string
		var metric sql.NullString
		var value sql.NullFloat64
		if err := rows.Scan(&id, &game, &name, &pos, &path, &sh, &metric, &value); err != nil {
			return nil, err
		}
		if id != lastID {
			src := path
			if sh != "" {
				src = path + "#" + sh
			}
			records = append(records, model.Record{
				Player: name, Position: pos, Game: game, Source: src,
				Metrics: make(map[string]float64),
			})
			lastID = id
		}
		if metric.Valid && value.Valid {
			records[len(records)-1].Metrics[metric.String] = value.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return model.NewDataset(records)
}
