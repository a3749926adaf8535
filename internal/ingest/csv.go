package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads a delimited table. The delimiter (comma, semicolon or tab) is
// detected from the header line.
func ReadCSV(r io.Reader, path string) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Source{Path: path}, fmt.Errorf("read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Source{Path: path}, fmt.Errorf("parse csv %s: %w", path, err)
	}

	src, err := parseRows(path, "", rows)
	if err != nil {
		return src, err
	}
	src.Hash = fingerprint(data)
	return src, nil
}

func detectDelimiter(data []byte) rune {
	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
