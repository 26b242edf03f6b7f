// Package excel reads test-day records from spreadsheet and CSV files,
// resolving flexible column names to the canonical day / yield / lactation
// identifier fields.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"golact/domain/core"
	"golact/ports"
)

// Column aliases, matched case-insensitively against the header row.
var (
	dayAliases   = []string{"daysinmilk", "dim", "testday"}
	yieldAliases = []string{"milkingyield", "testdaymilkyield", "milkyield", "yield", "milkproduction", "milk_yield"}
	idAliases    = []string{"testid", "animalid", "id"}
)

// Overrides pins a logical field to an explicit column name instead of the
// alias list. Empty fields fall back to alias matching.
type Overrides struct {
	DayColumn   string
	YieldColumn string
	IDColumn    string
}

// RecordReader reads test-day records from .xlsx or .csv files.
type RecordReader struct {
	overrides Overrides
}

// NewRecordReader creates a reader with default column resolution.
func NewRecordReader() *RecordReader {
	return &RecordReader{}
}

// NewRecordReaderWithOverrides creates a reader with pinned column names.
func NewRecordReaderWithOverrides(overrides Overrides) *RecordReader {
	return &RecordReader{overrides: overrides}
}

// Read loads records from the file; the format is picked by extension.
func (r *RecordReader) Read(path string) ([]ports.TestDayRecord, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return r.readCSV(path)
	default:
		return r.readExcel(path)
	}
}

func (r *RecordReader) readExcel(path string) ([]ports.TestDayRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return r.parseRows(rows)
}

func (r *RecordReader) readCSV(path string) ([]ports.TestDayRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return r.parseRows(rows)
}

func (r *RecordReader) parseRows(rows [][]string) ([]ports.TestDayRecord, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("input must have a header row and at least one data row")
	}

	header := rows[0]
	dayCol, err := resolveColumn(header, r.overrides.DayColumn, dayAliases, core.ErrMissingDayColumn)
	if err != nil {
		return nil, err
	}
	yieldCol, err := resolveColumn(header, r.overrides.YieldColumn, yieldAliases, core.ErrMissingYieldColumn)
	if err != nil {
		return nil, err
	}
	// The identifier column is optional; without one every row belongs to
	// a single default lactation.
	idCol, _ := resolveColumn(header, r.overrides.IDColumn, idAliases, nil)

	records := make([]ports.TestDayRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		day, ok1 := cellFloat(row, dayCol)
		yield, ok2 := cellFloat(row, yieldCol)
		if !ok1 || !ok2 {
			continue
		}
		rec := ports.TestDayRecord{Day: day, Yield: yield}
		if idCol >= 0 && idCol < len(row) {
			rec.LactationID = strings.TrimSpace(row[idCol])
		}
		records = append(records, rec)
	}
	return records, nil
}

// resolveColumn finds the index of a logical field in the header row. An
// explicit override must match a real column; otherwise the alias list is
// tried in order, case-insensitively.
func resolveColumn(header []string, override string, aliases []string, missing error) (int, error) {
	lookup := make(map[string]int, len(header))
	for i, name := range header {
		lookup[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if override != "" {
		if idx, ok := lookup[strings.ToLower(override)]; ok {
			return idx, nil
		}
		return -1, fmt.Errorf("column %q not found", override)
	}
	for _, alias := range aliases {
		if idx, ok := lookup[alias]; ok {
			return idx, nil
		}
	}
	if missing != nil {
		return -1, missing
	}
	return -1, nil
}

func cellFloat(row []string, col int) (float64, bool) {
	if col < 0 || col >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
