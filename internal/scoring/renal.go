package scoring

import (
	"fmt"

	"github.com/health-risk-server/internal/domain"
)

// RenalScorer evaluates kidney-function markers: eGFR (severity rising as
// filtration falls) and the urine albumin-to-creatinine ratio.
type RenalScorer struct {
	cfg *domain.ThresholdConfig
}

// NewRenalScorer creates a renal scorer sharing the given threshold
// configuration.
func NewRenalScorer(cfg *domain.ThresholdConfig) *RenalScorer {
	return &RenalScorer{cfg: cfg}
}

// Key implements DomainScorer.
func (s *RenalScorer) Key() domain.DomainKey {
	return domain.Renal
}

// CalculateScore implements DomainScorer.
func (s *RenalScorer) CalculateScore(rec domain.PatientRecord) float64 {
	t := &s.cfg.Renal
	score := 0.0

	if egfr, ok := rec.Value(domain.MarkerEGFR); ok {
		score += t.EGFRBands.WeightBelow(egfr)
	}
	if acr, ok := rec.Value(domain.MarkerACR); ok {
		score += t.ACRBands.WeightAtOrAbove(acr)
	}

	return finalizeScore(score, t.AgeBands, rec)
}

// IdentifyRiskFactors implements DomainScorer. Elevated serum creatinine is
// reported as a supplementary finding even though it does not carry score
// weight (eGFR already encodes filtration).
func (s *RenalScorer) IdentifyRiskFactors(rec domain.PatientRecord) []domain.RiskFactor {
	t := &s.cfg.Renal
	factors := make([]domain.RiskFactor, 0, 3)

	if egfr, ok := rec.Value(domain.MarkerEGFR); ok {
		switch {
		case egfr < t.EGFRBands[0].Threshold:
			factors = append(factors, egfrFactor(egfr, domain.SeverityCritical, "kidney_failure",
				fmt.Sprintf("eGFR: %.1f (G5: kidney failure)", egfr)))
		case egfr < t.EGFRBands[1].Threshold:
			factors = append(factors, egfrFactor(egfr, domain.SeverityVeryHigh, "severe_ckd",
				fmt.Sprintf("eGFR: %.1f (G4: severely decreased)", egfr)))
		case egfr < t.EGFRBands[2].Threshold:
			factors = append(factors, egfrFactor(egfr, domain.SeverityHigh, "moderate_ckd",
				fmt.Sprintf("eGFR: %.1f (G3b: moderately to severely decreased)", egfr)))
		case egfr < t.EGFRBands[3].Threshold:
			factors = append(factors, egfrFactor(egfr, domain.SeverityModerate, "mild_ckd",
				fmt.Sprintf("eGFR: %.1f (G3a: mildly to moderately decreased)", egfr)))
		case egfr < t.EGFRBands[4].Threshold:
			factors = append(factors, egfrFactor(egfr, domain.SeverityBorderline, "mildly_decreased_gfr",
				fmt.Sprintf("eGFR: %.1f (G2: mildly decreased)", egfr)))
		}
	}

	if acr, ok := rec.Value(domain.MarkerACR); ok {
		switch {
		case acr >= t.ACRBands[0].Threshold:
			factors = append(factors, domain.RiskFactor{
				Marker: "ACR", Value: acr, Unit: "mg/g",
				Severity: domain.SeverityVeryHigh, Category: "macroalbuminuria",
				Description: fmt.Sprintf("ACR: %.1f mg/g (A3: macroalbuminuria)", acr),
			})
		case acr >= t.ACRBands[1].Threshold:
			factors = append(factors, domain.RiskFactor{
				Marker: "ACR", Value: acr, Unit: "mg/g",
				Severity: domain.SeverityHigh, Category: "microalbuminuria",
				Description: fmt.Sprintf("ACR: %.1f mg/g (A2: microalbuminuria)", acr),
			})
		}
	}

	if creatinine, ok := rec.Value(domain.MarkerCreatinine); ok {
		if limit := t.CreatinineLimit.For(rec); creatinine > limit {
			factors = append(factors, domain.RiskFactor{
				Marker: "Creatinine", Value: creatinine, Unit: "mg/dL",
				Severity: domain.SeverityHigh, Category: "elevated_creatinine",
				Description: fmt.Sprintf("Creatinine: %.2f mg/dL (above reference limit %g)", creatinine, limit),
			})
		}
	}

	return factors
}

func egfrFactor(v float64, sev domain.Severity, category, desc string) domain.RiskFactor {
	return domain.RiskFactor{
		Marker: "eGFR", Value: v, Unit: "mL/min/1.73m²",
		Severity: sev, Category: category, Description: desc,
	}
}

// GenerateRecommendations implements DomainScorer.
func (s *RenalScorer) GenerateRecommendations(rec domain.PatientRecord, score float64) []string {
	var recs []string

	switch {
	case score >= 80:
		recs = append(recs,
			"URGENT: immediate referral to a nephrologist",
			"Evaluate for dialysis or transplantation",
			"Full CKD complication workup (anemia, mineral bone disorder)",
			"Intensify renoprotective therapy",
			"Adjust drug dosing for renal function",
		)
	case score >= 60:
		recs = append(recs,
			"Referral to a nephrologist",
			"Stage-appropriate CKD management",
			"Renoprotection with ACE inhibitor/ARB",
			"Blood pressure control (target <130/80 mmHg)",
			"Protein restriction (0.6-0.8 g/kg/day)",
			"Monitoring every 3 months",
		)
	case score >= 40:
		recs = append(recs,
			"Lifestyle modification to slow CKD progression",
			"Strict blood pressure and glucose control",
			"Sodium restriction (<6 g/day)",
			"Avoid nephrotoxic drugs (NSAIDs)",
			"Renal function check every 6 months",
		)
	case score >= 20:
		recs = append(recs,
			"Periodic renal function monitoring",
			"Manage hypertension and diabetes",
			"Adequate hydration",
			"Annual testing",
		)
	default:
		recs = append(recs,
			"Maintain current renal function",
			"Continue observation at routine checkups",
		)
	}

	// Confirmed CKD: reduced filtration plus albuminuria.
	egfr, hasEGFR := rec.Value(domain.MarkerEGFR)
	acr, hasACR := rec.Value(domain.MarkerACR)
	if hasEGFR && egfr < 60 && hasACR && acr >= s.cfg.Renal.ACRBands[1].Threshold {
		recs = append(recs, "CKD confirmed: initiate patient education and structured follow-up")
	}

	return recs
}

// CKDStage is the KDIGO-style staging result: a GFR stage (G1-G5), an
// albuminuria stage (A1-A3), their concatenation and the heat-map risk
// category. Stages that cannot be derived report "unknown".
type CKDStage struct {
	GFRStage         string `json:"gfr_stage"`
	AlbuminuriaStage string `json:"albuminuria_stage"`
	CKDStage         string `json:"ckd_stage"`
	RiskCategory     string `json:"risk_category"`
}

// kdigoRiskMatrix is the fixed KDIGO prognosis heat map. It is a clinical
// classification independent of the numeric renal score.
var kdigoRiskMatrix = map[string]string{
	"G1A1": "low", "G1A2": "moderate", "G1A3": "high",
	"G2A1": "low", "G2A2": "moderate", "G2A3": "high",
	"G3aA1": "moderate", "G3aA2": "high", "G3aA3": "very_high",
	"G3bA1": "high", "G3bA2": "very_high", "G3bA3": "very_high",
	"G4A1": "very_high", "G4A2": "very_high", "G4A3": "very_high",
	"G5A1": "very_high", "G5A2": "very_high", "G5A3": "very_high",
}

// AssessCKDStage derives the KDIGO CKD stage from raw eGFR and ACR.
func (s *RenalScorer) AssessCKDStage(rec domain.PatientRecord) CKDStage {
	result := CKDStage{
		GFRStage:         "unknown",
		AlbuminuriaStage: "unknown",
		CKDStage:         "unknown",
		RiskCategory:     "unknown",
	}

	if egfr, ok := rec.Value(domain.MarkerEGFR); ok {
		switch {
		case egfr >= 90:
			result.GFRStage = "G1"
		case egfr >= 60:
			result.GFRStage = "G2"
		case egfr >= 45:
			result.GFRStage = "G3a"
		case egfr >= 30:
			result.GFRStage = "G3b"
		case egfr >= 15:
			result.GFRStage = "G4"
		default:
			result.GFRStage = "G5"
		}
	}

	if acr, ok := rec.Value(domain.MarkerACR); ok {
		switch {
		case acr < 30:
			result.AlbuminuriaStage = "A1"
		case acr < 300:
			result.AlbuminuriaStage = "A2"
		default:
			result.AlbuminuriaStage = "A3"
		}
	}

	if result.GFRStage != "unknown" && result.AlbuminuriaStage != "unknown" {
		result.CKDStage = result.GFRStage + result.AlbuminuriaStage
		if category, ok := kdigoRiskMatrix[result.CKDStage]; ok {
			result.RiskCategory = category
		}
	}

	return result
}
