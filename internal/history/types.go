// Package history provides persistent storage for completed risk
// assessments, so past composite results can be retrieved, listed and
// exported for longitudinal review.
package history

import (
	"context"
	"io"
	"time"

	"github.com/health-risk-server/internal/domain"
)

// Assessment is one persisted scoring run: the input marker record, the full
// composite result and denormalized score/level columns for cheap listing.
type Assessment struct {
	ID             string                  `json:"id"`
	PatientRef     string                  `json:"patient_ref,omitempty"` // caller-supplied external identifier
	Record         domain.PatientRecord    `json:"record"`
	Result         *domain.CompositeResult `json:"result"`
	CompositeScore float64                 `json:"composite_score"`
	RiskLevel      domain.RiskLevel        `json:"risk_level"`
	CreatedAt      time.Time               `json:"created_at"`
}

// Store defines the interface for assessment history storage.
type Store interface {
	// Save persists a completed assessment.
	Save(ctx context.Context, assessment *Assessment) error

	// Get retrieves an assessment by ID. Returns domain.ErrNotFound when no
	// such assessment exists.
	Get(ctx context.Context, id string) (*Assessment, error)

	// List returns assessments in reverse chronological order with
	// pagination.
	List(ctx context.Context, limit, offset int) ([]*Assessment, error)

	// Count returns the total number of stored assessments.
	Count(ctx context.Context) (int64, error)

	// Delete removes an assessment by ID.
	Delete(ctx context.Context, id string) error

	// ExportJSON writes all assessments to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON reads assessments from a JSON reader, skipping IDs that
	// already exist. Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// AssessmentExport is the JSON export format.
type AssessmentExport struct {
	Version     string        `json:"version"`
	ExportedAt  time.Time     `json:"exported_at"`
	Count       int           `json:"count"`
	Assessments []*Assessment `json:"assessments"`
}
