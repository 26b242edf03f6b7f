package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"golact/ports"
)

// Connect opens a Postgres connection pool and verifies it with a ping.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// yieldRepository implements the YieldRepository interface
type yieldRepository struct {
	db *sqlx.DB
}

// NewYieldRepository creates a new yield repository
func NewYieldRepository(db *sqlx.DB) ports.YieldRepository {
	return &yieldRepository{db: db}
}

// EnsureSchema creates the tables used by the repository if they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS test_day_records (
		id BIGSERIAL PRIMARY KEY,
		lactation_id TEXT NOT NULL,
		day DOUBLE PRECISION NOT NULL,
		yield DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS lactation_yields (
		lactation_id TEXT PRIMARY KEY,
		total DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveRecords inserts test-day records in a single transaction.
func (r *yieldRepository) SaveRecords(ctx context.Context, records []ports.TestDayRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO test_day_records (lactation_id, day, yield) VALUES ($1, $2, $3)`
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, query, rec.LactationID, rec.Day, rec.Yield); err != nil {
			return fmt.Errorf("failed to insert test-day record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// SaveYields upserts computed 305-day totals keyed by lactation identifier.
func (r *yieldRepository) SaveYields(ctx context.Context, yields []ports.LactationYield) error {
	if len(yields) == 0 {
		return nil
	}

	query := `INSERT INTO lactation_yields (lactation_id, total, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (lactation_id) DO UPDATE SET total = EXCLUDED.total, updated_at = NOW()`

	for _, y := range yields {
		if _, err := r.db.ExecContext(ctx, query, y.LactationID, y.Total); err != nil {
			return fmt.Errorf("failed to upsert yield for lactation %s: %w", y.LactationID, err)
		}
	}
	return nil
}

// ListYields returns the most recently updated totals, up to limit.
func (r *yieldRepository) ListYields(ctx context.Context, limit int) ([]ports.LactationYield, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT lactation_id, total FROM lactation_yields ORDER BY updated_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query yields: %w", err)
	}
	defer rows.Close()

	var yields []ports.LactationYield
	for rows.Next() {
		var y ports.LactationYield
		if err := rows.Scan(&y.LactationID, &y.Total); err != nil {
			return nil, fmt.Errorf("failed to scan yield: %w", err)
		}
		yields = append(yields, y)
	}
	return yields, nil
}
