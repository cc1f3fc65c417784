package scoring

import (
	"fmt"

	"github.com/health-risk-server/internal/domain"
)

// Diabetes staging outcomes returned by AssessDiabetesStatus.
const (
	DiabetesStatusDiabetes     = "diabetes"
	DiabetesStatusPrediabetes  = "prediabetes"
	DiabetesStatusNormal       = "normal"
	DiabetesStatusInsufficient = "insufficient_data"
)

// MetabolicScorer evaluates glycemic markers: fasting glucose, HbA1c and the
// HOMA-IR insulin-resistance index.
type MetabolicScorer struct {
	cfg *domain.ThresholdConfig
}

// NewMetabolicScorer creates a metabolic scorer sharing the given threshold
// configuration.
func NewMetabolicScorer(cfg *domain.ThresholdConfig) *MetabolicScorer {
	return &MetabolicScorer{cfg: cfg}
}

// Key implements DomainScorer.
func (s *MetabolicScorer) Key() domain.DomainKey {
	return domain.Metabolic
}

// CalculateScore implements DomainScorer.
func (s *MetabolicScorer) CalculateScore(rec domain.PatientRecord) float64 {
	t := &s.cfg.Metabolic
	score := 0.0

	if glucose, ok := rec.Value(domain.MarkerGlucose); ok {
		score += t.GlucoseBands.WeightAtOrAbove(glucose)
	}
	if hba1c, ok := rec.Value(domain.MarkerHbA1c); ok {
		score += t.HbA1cBands.WeightAtOrAbove(hba1c)
	}
	if homaIR, ok := rec.Value(domain.MarkerHOMAIR); ok {
		score += t.HOMAIRBands.WeightAtOrAbove(homaIR)
	}

	return finalizeScore(score, t.AgeBands, rec)
}

// IdentifyRiskFactors implements DomainScorer.
func (s *MetabolicScorer) IdentifyRiskFactors(rec domain.PatientRecord) []domain.RiskFactor {
	t := &s.cfg.Metabolic
	factors := make([]domain.RiskFactor, 0, 3)

	if glucose, ok := rec.Value(domain.MarkerGlucose); ok {
		switch {
		case glucose >= t.GlucoseBands[0].Threshold:
			factors = append(factors, domain.RiskFactor{
				Marker: "Fasting glucose", Value: glucose, Unit: "mg/dL",
				Severity: domain.SeverityVeryHigh, Category: "diabetes",
				Description: fmt.Sprintf("Fasting glucose: %.1f mg/dL (diabetic range: >=%g)", glucose, t.GlucoseBands[0].Threshold),
			})
		case glucose >= t.GlucoseBands[1].Threshold:
			factors = append(factors, domain.RiskFactor{
				Marker: "Fasting glucose", Value: glucose, Unit: "mg/dL",
				Severity: domain.SeverityHigh, Category: "prediabetes",
				Description: fmt.Sprintf("Fasting glucose: %.1f mg/dL (prediabetic range: %g-%g)", glucose, t.GlucoseBands[1].Threshold, t.GlucoseBands[0].Threshold-1),
			})
		}
	}

	if hba1c, ok := rec.Value(domain.MarkerHbA1c); ok {
		switch {
		case hba1c >= t.HbA1cBands[0].Threshold:
			factors = append(factors, domain.RiskFactor{
				Marker: "HbA1c", Value: hba1c, Unit: "%",
				Severity: domain.SeverityVeryHigh, Category: "diabetes",
				Description: fmt.Sprintf("HbA1c: %.1f%% (diabetic range: >=%g%%)", hba1c, t.HbA1cBands[0].Threshold),
			})
		case hba1c >= t.HbA1cBands[1].Threshold:
			factors = append(factors, domain.RiskFactor{
				Marker: "HbA1c", Value: hba1c, Unit: "%",
				Severity: domain.SeverityHigh, Category: "prediabetes",
				Description: fmt.Sprintf("HbA1c: %.1f%% (prediabetic range: %g-%g%%)", hba1c, t.HbA1cBands[1].Threshold, t.HbA1cBands[0].Threshold-0.1),
			})
		}
	}

	if homaIR, ok := rec.Value(domain.MarkerHOMAIR); ok {
		switch {
		case homaIR >= t.HOMAIRBands[0].Threshold:
			factors = append(factors, domain.RiskFactor{
				Marker: "HOMA-IR", Value: homaIR, Unit: "index",
				Severity: domain.SeverityVeryHigh, Category: "insulin_resistance",
				Description: fmt.Sprintf("HOMA-IR: %.2f (severe insulin resistance: >=%g)", homaIR, t.HOMAIRBands[0].Threshold),
			})
		case homaIR >= t.HOMAIRBands[1].Threshold:
			factors = append(factors, domain.RiskFactor{
				Marker: "HOMA-IR", Value: homaIR, Unit: "index",
				Severity: domain.SeverityHigh, Category: "insulin_resistance",
				Description: fmt.Sprintf("HOMA-IR: %.2f (insulin resistance: >=%g)", homaIR, t.HOMAIRBands[1].Threshold),
			})
		}
	}

	return factors
}

// GenerateRecommendations implements DomainScorer. Diabetic-range markers
// escalate to the urgent tier regardless of the numeric score.
func (s *MetabolicScorer) GenerateRecommendations(rec domain.PatientRecord, score float64) []string {
	var recs []string

	switch {
	case score >= 80 || s.AssessDiabetesStatus(rec) == DiabetesStatusDiabetes:
		recs = append(recs,
			"URGENT: diagnostic workup for diabetes",
			"Referral to endocrinology/diabetes specialist",
			"75g oral glucose tolerance test (OGTT)",
			"Diabetes complication screening (retinopathy, nephropathy, neuropathy)",
			"Enrollment in a diabetes education program",
			"Start dietary and exercise therapy",
		)
	case score >= 60:
		recs = append(recs,
			"Prediabetes management",
			"Lifestyle counseling (low glycemic index diet, aerobic exercise)",
			"Weight management (target 5-10% reduction)",
			"Glucose monitoring every 3-6 months",
		)
	case score >= 40:
		recs = append(recs,
			"Lifestyle review",
			"Maintain healthy body weight",
			"Regular exercise (at least 150 min/week)",
			"Annual glucose screening",
		)
	default:
		recs = append(recs,
			"Maintain current health status",
			"Balanced diet",
			"Annual checkup",
		)
	}

	t := &s.cfg.Metabolic
	if homaIR, ok := rec.Value(domain.MarkerHOMAIR); ok && homaIR >= t.HOMAIRBands[1].Threshold {
		recs = append(recs, "Insulin resistance: consider metformin, weight reduction program")
	}

	return recs
}

// AssessDiabetesStatus classifies glycemic status from fasting glucose and
// HbA1c, independent of the numeric score. The diabetes check runs before
// the prediabetes check, so a diabetic-range value on either marker wins
// over a prediabetic value on the other.
func (s *MetabolicScorer) AssessDiabetesStatus(rec domain.PatientRecord) string {
	t := &s.cfg.Metabolic
	glucose, hasGlucose := rec.Value(domain.MarkerGlucose)
	hba1c, hasHbA1c := rec.Value(domain.MarkerHbA1c)

	if (hasGlucose && glucose >= t.GlucoseDiabetes) || (hasHbA1c && hba1c >= t.HbA1cDiabetes) {
		return DiabetesStatusDiabetes
	}

	if (hasGlucose && glucose >= t.GlucosePrediabetes && glucose < t.GlucoseDiabetes) ||
		(hasHbA1c && hba1c >= t.HbA1cPrediabetes && hba1c < t.HbA1cDiabetes) {
		return DiabetesStatusPrediabetes
	}

	if (hasGlucose && glucose < t.GlucosePrediabetes) || (hasHbA1c && hba1c < t.HbA1cPrediabetes) {
		return DiabetesStatusNormal
	}

	return DiabetesStatusInsufficient
}
