package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/health-risk-server/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite assessment store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		patient_ref TEXT DEFAULT '',
		record TEXT NOT NULL,
		result TEXT NOT NULL,
		composite_score REAL NOT NULL,
		risk_level TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_patient_ref ON assessments(patient_ref);
	CREATE INDEX IF NOT EXISTS idx_assessments_risk_level ON assessments(risk_level);
	CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanAssessment scans a row into an Assessment, decoding the JSON columns.
func scanAssessment(s scanner) (*Assessment, error) {
	a := &Assessment{}
	var recordJSON, resultJSON, riskLevel string

	err := s.Scan(
		&a.ID, &a.PatientRef, &recordJSON, &resultJSON,
		&a.CompositeScore, &riskLevel, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(recordJSON), &a.Record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &a.Result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	a.RiskLevel = domain.RiskLevel(riskLevel)
	return a, nil
}

// Save persists a completed assessment.
func (s *SQLiteStore) Save(ctx context.Context, assessment *Assessment) error {
	recordJSON, err := json.Marshal(assessment.Record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	resultJSON, err := json.Marshal(assessment.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, patient_ref, record, result, composite_score, risk_level, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		assessment.ID,
		assessment.PatientRef,
		string(recordJSON),
		string(resultJSON),
		assessment.CompositeScore,
		string(assessment.RiskLevel),
		assessment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// Get retrieves an assessment by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_ref, record, result, composite_score, risk_level, created_at
		FROM assessments
		WHERE id = ?
	`, id)

	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("assessment %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}
	return a, nil
}

// List returns assessments in reverse chronological order with pagination.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_ref, record, result, composite_score, risk_level, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var result []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Count returns the total number of stored assessments.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	return count, err
}

// Delete removes an assessment by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = ?", id)
	return err
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON writes all assessments to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list assessments: %w", err)
	}

	export := &AssessmentExport{
		Version:     "1.0",
		ExportedAt:  time.Now(),
		Count:       len(all),
		Assessments: all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON reads assessments from a JSON reader, skipping existing IDs.
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export AssessmentExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, a := range export.Assessments {
		var exists int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM assessments WHERE id = ?", a.ID).Scan(&exists)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}
		if exists > 0 {
			skipped++
			continue
		}

		if err := s.Save(ctx, a); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
