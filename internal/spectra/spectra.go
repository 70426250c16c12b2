// Package spectra loads Raman spectra exports and moves them between the
// instrument's whitespace layout and a per-spectrum CSV table.
package spectra

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// DefaultInterval is the acquisition interval between spectra, in seconds.
const DefaultInterval = 0.04562

// TimeColumn is the name of the column added by AddTimestamps.
const TimeColumn = "time"

var (
	// ErrEmptyTable is returned when the input has no data rows.
	ErrEmptyTable = errors.New("spectra: no data")

	// ErrRaggedTable is returned when rows have different numbers of fields.
	ErrRaggedTable = errors.New("spectra: rows have different numbers of fields")

	// ErrUnknownColumn is returned when a named column does not exist.
	ErrUnknownColumn = errors.New("spectra: unknown column")
)

// Table is a numeric table with named columns. Each row is one observation.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// LoadSpectra reads the instrument export: one line per Raman shift, the
// shift in the first field followed by one intensity per spectrum. The
// result has one row per spectrum and one column per shift, named by the
// shift value. Blank lines and lines starting with '#' are skipped.
func LoadSpectra(r io.Reader) (*Table, error) {
	var shifts []float64
	var intensities [][]float64 // per shift, one value per spectrum

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		values := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("spectra: line %d field %d: %w", line, i+1, err)
			}
			values[i] = v
		}
		if len(values) < 2 {
			return nil, fmt.Errorf("spectra: line %d: need a shift and at least one intensity", line)
		}
		if len(intensities) > 0 && len(values)-1 != len(intensities[0]) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d",
				ErrRaggedTable, line, len(values), len(intensities[0])+1)
		}
		shifts = append(shifts, values[0])
		intensities = append(intensities, values[1:])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("spectra: reading input: %w", err)
	}
	if len(shifts) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{Columns: make([]string, len(shifts))}
	for i, s := range shifts {
		t.Columns[i] = formatValue(s)
	}
	nSpectra := len(intensities[0])
	t.Rows = make([][]float64, nSpectra)
	for s := range t.Rows {
		row := make([]float64, len(shifts))
		for i := range shifts {
			row[i] = intensities[i][s]
		}
		t.Rows[s] = row
	}
	return t, nil
}

// AddTimestamps prepends a TimeColumn holding i*interval for row i.
func (t *Table) AddTimestamps(interval float64) {
	t.Columns = append([]string{TimeColumn}, t.Columns...)
	for i, row := range t.Rows {
		t.Rows[i] = append([]float64{float64(i) * interval}, row...)
	}
}

// WriteCSV writes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("spectra: writing header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d values for %d columns", ErrRaggedTable, i, len(row), len(t.Columns))
		}
		for j, v := range row {
			record[j] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("spectra: writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV, or any CSV with a header row
// and numeric fields.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("spectra: reading header: %w", err)
	}

	t := &Table{Columns: slices.Clone(header)}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: %v", ErrRaggedTable, err)
			}
			return nil, fmt.Errorf("spectra: reading csv: %w", err)
		}
		row := make([]float64, len(record))
		for j, f := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("spectra: row %d column %q: %w", len(t.Rows)+1, header[j], err)
			}
			row[j] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

// Features returns a copy of the rows without the named columns.
func (t *Table) Features(drop ...string) ([][]float64, error) {
	keep, err := t.keep(drop)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]float64, len(keep))
		for j, c := range keep {
			r[j] = row[c]
		}
		out[i] = r
	}
	return out, nil
}

// Matrix is Features as a dense matrix.
func (t *Table) Matrix(drop ...string) (*mat.Dense, error) {
	rows, err := t.Features(drop...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyTable
	}
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m, nil
}

// HasColumn reports whether the table has a column named name.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

func (t *Table) keep(drop []string) ([]int, error) {
	for _, d := range drop {
		if !t.HasColumn(d) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, d)
		}
	}
	var keep []int
	for j, c := range t.Columns {
		if !slices.Contains(drop, c) {
			keep = append(keep, j)
		}
	}
	return keep, nil
}

func formatValue(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
