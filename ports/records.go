package ports

import "context"

// TestDayRecord is one test-day measurement, optionally tagged with a
// lactation identifier.
type TestDayRecord struct {
	Day         float64
	Yield       float64
	LactationID string
}

// LactationYield is the estimated 305-day total for one lactation.
type LactationYield struct {
	LactationID string
	Total       float64
}

// RecordReader loads test-day records from an external source (e.g. a
// spreadsheet), resolving flexible column names to the canonical fields.
type RecordReader interface {
	Read(path string) ([]TestDayRecord, error)
}

// YieldRepository persists test-day records and computed 305-day totals.
type YieldRepository interface {
	SaveRecords(ctx context.Context, records []TestDayRecord) error
	SaveYields(ctx context.Context, yields []LactationYield) error
	ListYields(ctx context.Context, limit int) ([]LactationYield, error)
}
