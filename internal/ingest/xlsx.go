package ingest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads every sheet of an XLSX workbook, in workbook order.
// Sheets with no rows are skipped.
func ReadWorkbook(r io.Reader, path string) ([]Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	fileHash := fingerprint(data)
	var out []Source
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s/%s: %w", path, sheet, err)
		}
		if len(rows) == 0 {
			log.Debug().Str("file", path).Str("sheet", sheet).Msg("skipping empty sheet")
			continue
		}
		src, err := parseRows(path, sheet, rows)
		if err != nil {
			return nil, err
		}
		src.Hash = fingerprint([]byte(fileHash + "\x00" + sheet))
		out = append(out, src)
	}
	return out, nil
}
