// Package audit keeps a local SQLite history of report runs so the
// operator can see which months were already produced and when.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	month         INTEGER NOT NULL,
	year          INTEGER NOT NULL,
	row_count     INTEGER NOT NULL,
	invoice_count INTEGER NOT NULL,
	output_path   TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_runs_year_month ON report_runs(year, month);
`

// RunRecord is one processed month's outcome.
type RunRecord struct {
	RunID        string
	Month        int
	Year         int
	RowCount     int
	InvoiceCount int
	OutputPath   string
	CreatedAt    time.Time
}

// Store wraps the SQLite run-history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the audit database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts one processed month.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_runs (run_id, month, year, row_count, invoice_count, output_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Month, rec.Year, rec.RowCount, rec.InvoiceCount, rec.OutputPath,
		rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// ListRuns returns the recorded runs for a year, newest first.
func (s *Store) ListRuns(ctx context.Context, year int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, month, year, row_count, invoice_count, output_path, created_at
		 FROM report_runs WHERE year = ? ORDER BY id DESC`, year)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var createdAt string
		if err := rows.Scan(&rec.RunID, &rec.Month, &rec.Year, &rec.RowCount,
			&rec.InvoiceCount, &rec.OutputPath, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}
