package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"

	"github.com/health-risk-server/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// pgSchema is applied idempotently at startup.
const pgSchema = `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		patient_ref TEXT DEFAULT '',
		record JSONB NOT NULL,
		result JSONB NOT NULL,
		composite_score DOUBLE PRECISION NOT NULL,
		risk_level TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_patient_ref ON assessments(patient_ref);
	CREATE INDEX IF NOT EXISTS idx_assessments_risk_level ON assessments(risk_level);
	CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
`

// NewPostgresStore creates a new PostgreSQL assessment store on an existing
// connection and ensures the schema is in place.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(pgSchema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL assessment store from a
// connection URL using the given pool settings.
func NewPostgresStoreFromURL(databaseURL string, cfg *domain.DatabaseConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save persists a completed assessment.
func (s *PostgresStore) Save(ctx context.Context, assessment *Assessment) error {
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
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
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	return nil
}

// Get retrieves an assessment by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_ref, record, result, composite_score, risk_level, created_at
		FROM assessments
		WHERE id = $1
	`, id)

	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("assessment %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

// List returns assessments in reverse chronological order with pagination.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_ref, record, result, composite_score, risk_level, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
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
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

// Delete removes an assessment by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	return nil
}

// ExportJSON writes all assessments to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
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
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export AssessmentExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, a := range export.Assessments {
		var exists int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM assessments WHERE id = $1", a.ID).Scan(&exists)
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
