// Package service implements the assessment workflow: validation, scoring,
// result caching and history persistence on top of the scoring engine.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/health-risk-server/internal/domain"
	"github.com/health-risk-server/internal/history"
	"github.com/health-risk-server/internal/scoring"
)

// AssessParams are the inputs for one assessment request.
type AssessParams struct {
	// PatientRef is an optional caller-supplied external identifier. It is
	// stored with the assessment but never influences scoring.
	PatientRef string `json:"patient_ref,omitempty"`

	// Markers maps NHANES-style marker codes to measured values.
	Markers map[string]float64 `json:"markers"`
}

// AssessResult is the outcome of one assessment request.
type AssessResult struct {
	AssessmentID   string                  `json:"assessment_id"`
	PatientRef     string                  `json:"patient_ref,omitempty"`
	Result         *domain.CompositeResult `json:"result"`
	Cached         bool                    `json:"cached"`
	ProcessingTime time.Duration           `json:"processing_time"`
	CreatedAt      time.Time               `json:"created_at"`
}

// BatchItem is one entry of a batch assessment response. Exactly one of
// Result and Error is set.
type BatchItem struct {
	Result *AssessResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// AssessmentService runs the full assessment workflow. Scoring itself is
// pure; the service adds input validation, an in-process result cache keyed
// by the marker set, and history persistence.
type AssessmentService struct {
	logger *logrus.Logger
	scorer *scoring.CompositeScorer
	store  history.Store
	cache  *lru.Cache[string, *domain.CompositeResult]
}

// NewAssessmentService creates the assessment service. store may be nil to
// run without persistence; the cache is disabled when cacheCfg.Enabled is
// false.
func NewAssessmentService(
	logger *logrus.Logger,
	scorer *scoring.CompositeScorer,
	store history.Store,
	cacheCfg domain.CacheConfig,
) (*AssessmentService, error) {
	s := &AssessmentService{
		logger: logger,
		scorer: scorer,
		store:  store,
	}

	if cacheCfg.Enabled {
		cache, err := lru.New[string, *domain.CompositeResult](cacheCfg.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// Assess validates the marker set, scores it and persists the outcome.
// Identical marker sets hit the result cache and skip rescoring, but every
// call produces its own assessment record and ID.
func (s *AssessmentService) Assess(ctx context.Context, params *AssessParams) (*AssessResult, error) {
	startTime := time.Now()

	if err := s.validateParams(params); err != nil {
		return nil, err
	}

	rec := domain.PatientRecord(params.Markers)
	key := s.cacheKey(params.Markers)

	var result *domain.CompositeResult
	cached := false
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			result = hit
			cached = true
		}
	}
	if result == nil {
		result = s.scorer.Calculate(rec)
		if s.cache != nil {
			s.cache.Add(key, result)
		}
	}

	assessment := &history.Assessment{
		ID:             uuid.New().String(),
		PatientRef:     params.PatientRef,
		Record:         rec,
		Result:         result,
		CompositeScore: result.CompositeScore,
		RiskLevel:      result.RiskLevel,
		CreatedAt:      time.Now(),
	}

	if s.store != nil {
		if err := s.store.Save(ctx, assessment); err != nil {
			return nil, fmt.Errorf("failed to persist assessment: %w", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"assessment_id":   assessment.ID,
		"patient_ref":     params.PatientRef,
		"composite_score": result.CompositeScore,
		"risk_level":      result.RiskLevel,
		"alerts":          len(result.Alerts),
		"cached":          cached,
		"processing_time": time.Since(startTime),
	}).Info("Assessment completed")

	return &AssessResult{
		AssessmentID:   assessment.ID,
		PatientRef:     params.PatientRef,
		Result:         result,
		Cached:         cached,
		ProcessingTime: time.Since(startTime),
		CreatedAt:      assessment.CreatedAt,
	}, nil
}

// AssessBatch scores a list of marker sets. Items fail independently: one
// invalid record reports its error in place without aborting the rest.
func (s *AssessmentService) AssessBatch(ctx context.Context, batch []*AssessParams) ([]*BatchItem, error) {
	if len(batch) == 0 {
		return nil, domain.NewValidationError("batch", "batch must contain at least one record", nil)
	}

	items := make([]*BatchItem, 0, len(batch))
	failures := 0
	for _, params := range batch {
		result, err := s.Assess(ctx, params)
		if err != nil {
			failures++
			items = append(items, &BatchItem{Error: err.Error()})
			continue
		}
		items = append(items, &BatchItem{Result: result})
	}

	s.logger.WithFields(logrus.Fields{
		"batch_size": len(batch),
		"failures":   failures,
	}).Info("Batch assessment completed")

	return items, nil
}

// GetAssessment retrieves a stored assessment by ID.
func (s *AssessmentService) GetAssessment(ctx context.Context, id string) (*history.Assessment, error) {
	if s.store == nil {
		return nil, fmt.Errorf("assessment %s: %w", id, domain.ErrNotFound)
	}
	return s.store.Get(ctx, id)
}

// ListAssessments returns stored assessments, newest first.
func (s *AssessmentService) ListAssessments(ctx context.Context, limit, offset int) ([]*history.Assessment, int64, error) {
	if s.store == nil {
		return nil, 0, nil
	}

	list, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return list, count, nil
}

// validateParams rejects requests the scoring engine cannot meaningfully
// handle. Unknown marker codes are allowed and ignored by the scorers.
func (s *AssessmentService) validateParams(params *AssessParams) error {
	if params == nil || len(params.Markers) == 0 {
		return domain.NewValidationError("markers", "at least one marker is required", nil)
	}
	for code, value := range params.Markers {
		// Non-finite values cannot be persisted as JSON. Library callers
		// can still pass NaN-for-missing records to the scorer directly.
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return domain.NewValidationError("markers", "marker value must be finite", fmt.Sprintf("%s=%v", code, value))
		}
	}
	return nil
}

// cacheKey derives a stable digest of the marker set. Go's JSON encoder
// sorts map keys, so equal marker sets always produce equal keys.
func (s *AssessmentService) cacheKey(markers map[string]float64) string {
	payload, err := json.Marshal(markers)
	if err != nil {
		// Unreachable for a map[string]float64 with finite values.
		return fmt.Sprintf("unkeyed-%d", time.Now().UnixNano())
	}
	hash := sha256.Sum256(payload)
	return hex.EncodeToString(hash[:])
}
