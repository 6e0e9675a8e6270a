// Package histogram reads bin populations from the text layouts used by the
// molecular dynamics data sets.
package histogram

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrEmpty = errors.New("histogram: no populations found")

// Format describes the layout of a histogram file.
type Format struct {
	Comma      bool // comma-delimited; otherwise whitespace-delimited
	SkipHeader int
	Column     int // -1 keeps every field in row order
}

var (
	// CSV is a comma-delimited table with one header line, flattened row by row.
	CSV = Format{Comma: true, SkipHeader: 1, Column: -1}
	// Dat is a whitespace-delimited table with a header, populations in column 1.
	Dat = Format{SkipHeader: 1, Column: 1}
)

func Load(path string, format Format) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pops, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pops, nil
}

func Read(r io.Reader, format Format) ([]float64, error) {
	rows, err := records(r, format)
	if err != nil {
		return nil, err
	}
	if format.SkipHeader >= len(rows) {
		return nil, ErrEmpty
	}

	var pops []float64
	for n, row := range rows[format.SkipHeader:] {
		line := n + format.SkipHeader + 1
		fields := row
		if format.Column >= 0 {
			if format.Column >= len(row) {
				return nil, fmt.Errorf("line %d: no column %d", line, format.Column)
			}
			fields = row[format.Column : format.Column+1]
		}
		for _, field := range fields {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			pops = append(pops, v)
		}
	}
	if len(pops) == 0 {
		return nil, ErrEmpty
	}
	return pops, nil
}

func records(r io.Reader, format Format) ([][]string, error) {
	if format.Comma {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		return cr.ReadAll()
	}

	var rows [][]string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
	}
	return rows, sc.Err()
}
