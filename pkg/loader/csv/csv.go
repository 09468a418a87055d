package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// Record is one CSV row keyed by its trimmed header cell.
type Record map[string]string

// Get returns the first non-empty value among the given column names,
// compared case-insensitively.
func (r Record) Get(columns ...string) string {
	for _, c := range columns {
		if v, ok := r[c]; ok && v != "" {
			return v
		}
	}
	for k, v := range r {
		if v == "" {
			continue
		}
		for _, c := range columns {
			if strings.EqualFold(k, c) {
				return v
			}
		}
	}
	return ""
}

// ParseRecords reads a headered CSV file. Ragged rows are tolerated, rows
// the reader cannot parse and blank rows are skipped, and cells are trimmed.
func ParseRecords(content []byte) ([]Record, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var header []string
	var out []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		if isBlank(row) {
			continue
		}
		if header == nil {
			header = make([]string, len(row))
			for i, h := range row {
				header[i] = strings.TrimSpace(h)
			}
			continue
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if h == "" || i >= len(row) {
				continue
			}
			rec[h] = strings.TrimSpace(row[i])
		}
		out = append(out, rec)
	}
	if header == nil {
		return nil, errors.New("CSV file is empty or contains no valid data")
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
