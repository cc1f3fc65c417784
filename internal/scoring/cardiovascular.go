package scoring

import (
	"fmt"

	"github.com/health-risk-server/internal/domain"
)

// CardiovascularScorer evaluates lipid-panel markers: LDL, HDL (inverse,
// gender-split), triglycerides and the TC/HDL ratio.
type CardiovascularScorer struct {
	cfg *domain.ThresholdConfig
}

// NewCardiovascularScorer creates a cardiovascular scorer sharing the given
// threshold configuration.
func NewCardiovascularScorer(cfg *domain.ThresholdConfig) *CardiovascularScorer {
	return &CardiovascularScorer{cfg: cfg}
}

// Key implements DomainScorer.
func (s *CardiovascularScorer) Key() domain.DomainKey {
	return domain.Cardiovascular
}

// CalculateScore implements DomainScorer.
func (s *CardiovascularScorer) CalculateScore(rec domain.PatientRecord) float64 {
	t := &s.cfg.Cardiovascular
	score := 0.0

	if ldl, ok := rec.Value(domain.MarkerLDL); ok {
		score += t.LDLBands.WeightAtOrAbove(ldl)
	}

	if hdl, ok := rec.Value(domain.MarkerHDL); ok {
		limit := t.HDL.Limit.For(rec)
		switch {
		case hdl < limit:
			score += t.HDL.LowWeight
		case hdl < t.HDL.ProtectiveMin:
			score += t.HDL.MidWeight
		default:
			// High HDL is protective; the running score may go negative
			// here and is clamped at the end.
			score -= t.HDL.ProtectiveBonus
		}
	}

	if tg, ok := rec.Value(domain.MarkerTriglycerides); ok {
		score += t.TriglycerideBands.WeightAtOrAbove(tg)
	}

	if ratio, ok := rec.Value(domain.MarkerTCHDLRatio); ok {
		score += t.TCHDLRatioBands.WeightAbove(ratio)
	}

	return finalizeScore(score, t.AgeBands, rec)
}

// IdentifyRiskFactors implements DomainScorer. The factor list mirrors the
// scoring bands: every marker that contributed positive weight is reported,
// graded by the band it landed in.
func (s *CardiovascularScorer) IdentifyRiskFactors(rec domain.PatientRecord) []domain.RiskFactor {
	t := &s.cfg.Cardiovascular
	factors := make([]domain.RiskFactor, 0, 4)

	if ldl, ok := rec.Value(domain.MarkerLDL); ok {
		switch {
		case ldl >= t.LDLBands[0].Threshold:
			factors = append(factors, ldlFactor(ldl, domain.SeverityVeryHigh,
				fmt.Sprintf("LDL: %.1f mg/dL (very high: >=%g)", ldl, t.LDLBands[0].Threshold)))
		case ldl >= t.LDLBands[1].Threshold:
			factors = append(factors, ldlFactor(ldl, domain.SeverityHigh,
				fmt.Sprintf("LDL: %.1f mg/dL (high: %g-%g)", ldl, t.LDLBands[1].Threshold, t.LDLBands[0].Threshold-1)))
		case ldl >= t.LDLBands[2].Threshold:
			factors = append(factors, ldlFactor(ldl, domain.SeverityBorderline,
				fmt.Sprintf("LDL: %.1f mg/dL (borderline: %g-%g)", ldl, t.LDLBands[2].Threshold, t.LDLBands[1].Threshold-1)))
		case ldl >= t.LDLBands[3].Threshold:
			factors = append(factors, ldlFactor(ldl, domain.SeverityModerate,
				fmt.Sprintf("LDL: %.1f mg/dL (above optimal: %g-%g)", ldl, t.LDLBands[3].Threshold, t.LDLBands[2].Threshold-1)))
		}
	}

	if hdl, ok := rec.Value(domain.MarkerHDL); ok {
		limit := t.HDL.Limit.For(rec)
		genderLabel := "male"
		if rec.IsFemale() {
			genderLabel = "female"
		}
		switch {
		case hdl < limit:
			factors = append(factors, domain.RiskFactor{
				Marker:      "HDL cholesterol",
				Value:       hdl,
				Unit:        "mg/dL",
				Severity:    domain.SeverityHigh,
				Category:    "dyslipidemia",
				Description: fmt.Sprintf("HDL: %.1f mg/dL (low for %s: <%g)", hdl, genderLabel, limit),
			})
		case hdl < t.HDL.ProtectiveMin:
			factors = append(factors, domain.RiskFactor{
				Marker:      "HDL cholesterol",
				Value:       hdl,
				Unit:        "mg/dL",
				Severity:    domain.SeverityModerate,
				Category:    "dyslipidemia",
				Description: fmt.Sprintf("HDL: %.1f mg/dL (suboptimal: <%g)", hdl, t.HDL.ProtectiveMin),
			})
		}
	}

	if tg, ok := rec.Value(domain.MarkerTriglycerides); ok {
		switch {
		case tg >= t.TriglycerideBands[0].Threshold:
			factors = append(factors, tgFactor(tg, domain.SeverityVeryHigh,
				fmt.Sprintf("Triglycerides: %.1f mg/dL (very high: >=%g)", tg, t.TriglycerideBands[0].Threshold)))
		case tg >= t.TriglycerideBands[1].Threshold:
			factors = append(factors, tgFactor(tg, domain.SeverityHigh,
				fmt.Sprintf("Triglycerides: %.1f mg/dL (high: %g-%g)", tg, t.TriglycerideBands[1].Threshold, t.TriglycerideBands[0].Threshold-1)))
		case tg >= t.TriglycerideBands[2].Threshold:
			factors = append(factors, tgFactor(tg, domain.SeverityModerate,
				fmt.Sprintf("Triglycerides: %.1f mg/dL (borderline: %g-%g)", tg, t.TriglycerideBands[2].Threshold, t.TriglycerideBands[1].Threshold-1)))
		}
	}

	if ratio, ok := rec.Value(domain.MarkerTCHDLRatio); ok {
		switch {
		case ratio > t.TCHDLRatioBands[0].Threshold:
			factors = append(factors, ratioFactor(ratio, domain.SeverityHigh,
				fmt.Sprintf("TC/HDL ratio: %.2f (high risk: >%g)", ratio, t.TCHDLRatioBands[0].Threshold)))
		case ratio > t.TCHDLRatioBands[1].Threshold:
			factors = append(factors, ratioFactor(ratio, domain.SeverityModerate,
				fmt.Sprintf("TC/HDL ratio: %.2f (elevated: >%g)", ratio, t.TCHDLRatioBands[1].Threshold)))
		case ratio > t.TCHDLRatioBands[2].Threshold:
			factors = append(factors, ratioFactor(ratio, domain.SeverityBorderline,
				fmt.Sprintf("TC/HDL ratio: %.2f (borderline: >%g)", ratio, t.TCHDLRatioBands[2].Threshold)))
		}
	}

	return factors
}

func ldlFactor(v float64, sev domain.Severity, desc string) domain.RiskFactor {
	return domain.RiskFactor{
		Marker: "LDL cholesterol", Value: v, Unit: "mg/dL",
		Severity: sev, Category: "dyslipidemia", Description: desc,
	}
}

func tgFactor(v float64, sev domain.Severity, desc string) domain.RiskFactor {
	return domain.RiskFactor{
		Marker: "Triglycerides", Value: v, Unit: "mg/dL",
		Severity: sev, Category: "dyslipidemia", Description: desc,
	}
}

func ratioFactor(v float64, sev domain.Severity, desc string) domain.RiskFactor {
	return domain.RiskFactor{
		Marker: "TC/HDL ratio", Value: v, Unit: "ratio",
		Severity: sev, Category: "dyslipidemia", Description: desc,
	}
}

// GenerateRecommendations implements DomainScorer.
func (s *CardiovascularScorer) GenerateRecommendations(rec domain.PatientRecord, score float64) []string {
	var recs []string

	switch {
	case score >= 80:
		recs = append(recs,
			"URGENT: immediate referral to a cardiologist",
			"Consider starting statin therapy",
			"Atherosclerosis workup (carotid ultrasound, cardiac CT)",
			"Intensive lifestyle modification counseling",
		)
	case score >= 60:
		recs = append(recs,
			"Referral to a cardiologist recommended",
			"Consider statin therapy",
			"Lifestyle counseling (low-fat diet, aerobic exercise)",
			"Repeat lipid panel in 3 months",
		)
	case score >= 40:
		recs = append(recs,
			"Lifestyle counseling (dietary and exercise therapy)",
			"Repeat lipid panel in 6 months",
			"Consider pharmacotherapy if no improvement",
		)
	case score >= 20:
		recs = append(recs,
			"Maintain and improve current lifestyle",
			"Annual lipid screening",
		)
	default:
		recs = append(recs,
			"Maintain current health status",
			"Annual checkup",
		)
	}

	t := &s.cfg.Cardiovascular
	if ldl, ok := rec.Value(domain.MarkerLDL); ok && ldl >= t.LDLBands[0].Threshold {
		recs = append(recs, fmt.Sprintf("LDL-C >=%g: rule out familial hypercholesterolemia", t.LDLBands[0].Threshold))
	}
	if tg, ok := rec.Value(domain.MarkerTriglycerides); ok && tg >= t.TriglycerideBands[0].Threshold {
		recs = append(recs, fmt.Sprintf("TG >=%g: acute pancreatitis risk, consider fibrate therapy", t.TriglycerideBands[0].Threshold))
	}

	return recs
}

// Calculate10YrCVDRisk maps the cardiovascular score to a coarse 10-year
// cardiovascular disease risk percentage, adjusted upward for older
// patients. It is a heuristic estimate, not a pooled-cohort equation.
// Returns ok=false when age is missing.
func (s *CardiovascularScorer) Calculate10YrCVDRisk(rec domain.PatientRecord) (float64, bool) {
	age, ok := rec.Age()
	if !ok {
		return 0, false
	}

	t := &s.cfg.Cardiovascular
	score := s.CalculateScore(rec)

	base := t.CVDRiskBase.WeightAtOrAbove(score)
	if base == 0 {
		base = t.CVDRiskFloor
	}

	base *= t.CVDRiskAgeBands.MultiplierFor(age, true)
	if base > 100 {
		base = 100
	}
	return base, true
}
