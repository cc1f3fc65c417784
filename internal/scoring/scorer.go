// Package scoring implements the risk scoring and aggregation engine: five
// organ-system domain scorers and the composite aggregator that weights,
// combines and classifies their outputs.
//
// Every scoring function is a pure computation over an immutable patient
// record and a shared read-only threshold configuration. Missing markers
// contribute zero and never fail; the engine is safe for concurrent use
// without locking.
package scoring

import (
	"math"

	"github.com/health-risk-server/internal/domain"
)

// DomainScorer is the contract shared by the five organ-system scorers.
// Each scorer additionally exposes one domain-specific assessment method on
// its concrete type (10-year CVD risk, diabetes status, CKD stage, fibrosis
// risk, anemia type).
type DomainScorer interface {
	// Key identifies the scorer's domain.
	Key() domain.DomainKey

	// CalculateScore produces the domain risk score in [0,100], rounded to
	// one decimal. Markers absent from the record contribute nothing.
	CalculateScore(rec domain.PatientRecord) float64

	// IdentifyRiskFactors re-evaluates the scoring thresholds to emit one
	// structured finding per marker that contributed risk weight.
	IdentifyRiskFactors(rec domain.PatientRecord) []domain.RiskFactor

	// GenerateRecommendations produces tiered free-text advice for the
	// given domain score.
	GenerateRecommendations(rec domain.PatientRecord, score float64) []string
}

// finalizeScore applies the domain age multiplier, clamps to [0,100] and
// rounds to one decimal. The multiplier is applied before clamping, so an
// age-adjusted score can saturate at 100.
func finalizeScore(raw float64, bands domain.AgeBands, rec domain.PatientRecord) float64 {
	age, ok := rec.Age()
	raw *= bands.MultiplierFor(age, ok)
	return round1(clamp01(raw))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
