// Package ingest reads GPS tracking exports (CSV or XLSX workbooks, optionally
// gzip or zstd compressed) into model records.
package ingest

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-gps-metrics/internal/model"
)

var (
	// ErrMissingColumn is returned when a sheet has no player or game column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnsupportedFormat is returned for file extensions ingest cannot read.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Source is one ingested table: a CSV file or a single workbook sheet.
type Source struct {
	Path    string
	Sheet   string // "" for CSV
	Hash    string // content fingerprint of the decompressed table
	Records []model.Record
	Skipped int // rows dropped for lacking a player or game
}

// Label identifies the source in logs and tables.
func (s Source) Label() string {
	if s.Sheet == "" {
		return filepath.Base(s.Path)
	}
	return filepath.Base(s.Path) + "#" + s.Sheet
}

// ReadFile reads one file. Workbooks yield one Source per non-empty sheet in workbook order.
func ReadFile(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read reads a table from r; name is used to pick the decompressor and the format.
func Read(r io.Reader, name string) ([]Source, error) {
	src, base, err := decompress(r, name)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	switch strings.ToLower(filepath.Ext(base)) {
	case ".csv", ".tsv", ".txt":
		s, err := ReadCSV(bytes.NewReader(data), name)
		if err != nil {
			return nil, err
		}
		return []Source{s}, nil
	case ".xlsx", ".xlsm":
		return ReadWorkbook(bytes.NewReader(data), name)
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
}

// ReadFiles reads every path in parallel and returns the sources in argument order.
func ReadFiles(ctx context.Context, paths []string) ([]Source, error) {
	results := make([][]Source, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, p := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			srcs, err := ReadFile(p)
			if err != nil {
				return err
			}
			results[i] = srcs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	var out []Source
	for _, srcs := range results {
		out = append(out, srcs...)
	}
	return out, nil
}

// Concat stacks the sources' records into one dataset, in source order.
func Concat(sources []Source) (*model.Dataset, error) {
	var recs []model.Record
	for _, s := range sources {
		recs = append(recs, s.Records...)
	}
	ds, err := model.NewDataset(recs)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	return ds, nil
}

// Load reads the files and concatenates them.
func Load(ctx context.Context, paths []string) (*model.Dataset, error) {
	sources, err := ReadFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	return Concat(sources)
}

func decompress(r io.Reader, name string) (io.ReadCloser, string, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, "", fmt.Errorf("zstd: %w", err)
		}
		return dec.IOReadCloser(), name[:len(name)-len(".zst")], nil
	case strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, "", fmt.Errorf("gzip: %w", err)
		}
		return gz, name[:len(name)-len(".gz")], nil
	}
	return io.NopCloser(r), name, nil
}

func fingerprint(data []byte) string {
	h := xxh3.Hash128(data).Bytes()
	return fmt.Sprintf("%x", h[:])
}

// parseRows turns a header row plus data rows into records.
func parseRows(path, sheet string, rows [][]string) (Source, error) {
	src := Source{Path: path, Sheet: sheet}
	if len(rows) == 0 {
		return src, fmt.Errorf("%s: empty table: %w", src.Label(), ErrMissingColumn)
	}
	cols, err := mapHeader(rows[0])
	if err != nil {
		return src, fmt.Errorf("%s: %w", src.Label(), err)
	}
	label := src.Label()
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		player := cell(row, cols.player)
		game := cell(row, cols.game)
		if player == "" || game == "" {
			src.Skipped++
			log.Warn().Str("source", label).Int("row", i+2).Msg("skipping row without player or game")
			continue
		}
		r := model.Record{
			Player:   player,
			Game:     game,
			Position: cell(row, cols.position),
			Source:   label,
			Metrics:  make(map[string]float64, len(cols.metrics)),
		}
		for idx, metric := range cols.metrics {
			if v, ok := parseNumber(cell(row, idx)); ok {
				r.Metrics[metric] = v
			}
		}
		src.Records = append(src.Records, r)
	}
	return src, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
