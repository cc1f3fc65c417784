package scoring

import (
	"fmt"

	"github.com/health-risk-server/internal/domain"
)

// Anemia morphology classes returned by ClassifyAnemiaType.
const (
	AnemiaMicrocytic  = "microcytic"
	AnemiaNormocytic  = "normocytic"
	AnemiaMacrocytic  = "macrocytic"
	AnemiaTypeUnknown = "anemia_type_unknown"
)

// HematologicScorer evaluates complete-blood-count markers: hemoglobin
// (gender-split anemia bands plus polycythemia), white cells, platelets and
// mean corpuscular volume.
type HematologicScorer struct {
	cfg *domain.ThresholdConfig
}

// NewHematologicScorer creates a hematologic scorer sharing the given
// threshold configuration.
func NewHematologicScorer(cfg *domain.ThresholdConfig) *HematologicScorer {
	return &HematologicScorer{cfg: cfg}
}

// Key implements DomainScorer.
func (s *HematologicScorer) Key() domain.DomainKey {
	return domain.Hematologic
}

// CalculateScore implements DomainScorer.
func (s *HematologicScorer) CalculateScore(rec domain.PatientRecord) float64 {
	t := &s.cfg.Hematologic
	score := 0.0

	if hgb, ok := rec.Value(domain.MarkerHemoglobin); ok {
		limit := t.HemoglobinLimit.For(rec)
		// Anemia bands are expressed as offsets from the gender limit.
		if w := t.AnemiaDeficitBands.WeightBelow(hgb - limit); w > 0 {
			score += w
		} else if hgb > t.Polycythemia.Threshold {
			score += t.Polycythemia.Weight
		}
	}

	if wbc, ok := rec.Value(domain.MarkerWBC); ok {
		if w := t.WBCLowBands.WeightBelow(wbc); w > 0 {
			score += w
		} else {
			score += t.WBCHighBands.WeightAbove(wbc)
		}
	}

	if plt, ok := rec.Value(domain.MarkerPlatelets); ok {
		if w := t.PlateletLowBands.WeightBelow(plt); w > 0 {
			score += w
		} else {
			score += t.PlateletHighBands.WeightAbove(plt)
		}
	}

	if mcv, ok := rec.Value(domain.MarkerMCV); ok {
		if w := t.MCVLowBands.WeightBelow(mcv); w > 0 {
			score += w
		} else {
			score += t.MCVHighBands.WeightAbove(mcv)
		}
	}

	return finalizeScore(score, t.AgeBands, rec)
}

// IdentifyRiskFactors implements DomainScorer.
func (s *HematologicScorer) IdentifyRiskFactors(rec domain.PatientRecord) []domain.RiskFactor {
	t := &s.cfg.Hematologic
	factors := make([]domain.RiskFactor, 0, 4)

	if hgb, ok := rec.Value(domain.MarkerHemoglobin); ok {
		limit := t.HemoglobinLimit.For(rec)
		genderLabel := "male"
		if rec.IsFemale() {
			genderLabel = "female"
		}
		if hgb < limit {
			severity := domain.SeverityHigh
			grade := "mild anemia"
			switch {
			case hgb < limit-3:
				severity = domain.SeverityCritical
				grade = "severe anemia"
			case hgb < limit-2:
				severity = domain.SeverityVeryHigh
				grade = "moderate anemia"
			}
			factors = append(factors, domain.RiskFactor{
				Marker: "Hemoglobin", Value: hgb, Unit: "g/dL",
				Severity: severity, Category: "anemia",
				Description: fmt.Sprintf("Hemoglobin: %.1f g/dL (%s, %s reference: <%g)", hgb, grade, genderLabel, limit),
			})
		} else if hgb > t.Polycythemia.Threshold {
			factors = append(factors, domain.RiskFactor{
				Marker: "Hemoglobin", Value: hgb, Unit: "g/dL",
				Severity: domain.SeverityModerate, Category: "polycythemia",
				Description: fmt.Sprintf("Hemoglobin: %.1f g/dL (polycythemia suspected: >%g)", hgb, t.Polycythemia.Threshold),
			})
		}
	}

	if wbc, ok := rec.Value(domain.MarkerWBC); ok {
		if wbc < t.WBCLowBands[1].Threshold {
			severity := domain.SeverityHigh
			if wbc < t.WBCLowBands[0].Threshold {
				severity = domain.SeverityVeryHigh
			}
			factors = append(factors, domain.RiskFactor{
				Marker: "WBC", Value: wbc, Unit: "10³/μL",
				Severity: severity, Category: "leukopenia",
				Description: fmt.Sprintf("WBC: %.1f 10³/μL (leukopenia: <%g)", wbc, t.WBCLowBands[1].Threshold),
			})
		} else if wbc > t.WBCHighBands[1].Threshold {
			severity := domain.SeverityModerate
			if wbc > t.WBCHighBands[0].Threshold {
				severity = domain.SeverityVeryHigh
			}
			factors = append(factors, domain.RiskFactor{
				Marker: "WBC", Value: wbc, Unit: "10³/μL",
				Severity: severity, Category: "leukocytosis",
				Description: fmt.Sprintf("WBC: %.1f 10³/μL (leukocytosis: >%g)", wbc, t.WBCHighBands[1].Threshold),
			})
		}
	}

	if plt, ok := rec.Value(domain.MarkerPlatelets); ok {
		if plt < t.PlateletLowBands[2].Threshold {
			severity := domain.SeverityHigh
			grade := "mild thrombocytopenia"
			switch {
			case plt < t.PlateletLowBands[0].Threshold:
				severity = domain.SeverityCritical
				grade = "severe thrombocytopenia"
			case plt < t.PlateletLowBands[1].Threshold:
				severity = domain.SeverityVeryHigh
				grade = "moderate thrombocytopenia"
			}
			factors = append(factors, domain.RiskFactor{
				Marker: "Platelets", Value: plt, Unit: "10³/μL",
				Severity: severity, Category: "thrombocytopenia",
				Description: fmt.Sprintf("Platelets: %.0f 10³/μL (%s: <%g)", plt, grade, t.PlateletLowBands[2].Threshold),
			})
		} else if plt > t.PlateletHighBands[0].Threshold {
			factors = append(factors, domain.RiskFactor{
				Marker: "Platelets", Value: plt, Unit: "10³/μL",
				Severity: domain.SeverityModerate, Category: "thrombocytosis",
				Description: fmt.Sprintf("Platelets: %.0f 10³/μL (thrombocytosis: >%g)", plt, t.PlateletHighBands[0].Threshold),
			})
		}
	}

	if mcv, ok := rec.Value(domain.MarkerMCV); ok {
		if mcv < t.MicrocyticMax {
			severity := domain.SeverityModerate
			if mcv < t.MCVLowBands[0].Threshold {
				severity = domain.SeverityHigh
			}
			factors = append(factors, domain.RiskFactor{
				Marker: "MCV", Value: mcv, Unit: "fL",
				Severity: severity, Category: "microcytic_anemia",
				Description: fmt.Sprintf("MCV: %.1f fL (microcytosis: <%g, consider iron deficiency or thalassemia)", mcv, t.MicrocyticMax),
			})
		} else if mcv > t.MacrocyticMin {
			factors = append(factors, domain.RiskFactor{
				Marker: "MCV", Value: mcv, Unit: "fL",
				Severity: domain.SeverityModerate, Category: "macrocytic_anemia",
				Description: fmt.Sprintf("MCV: %.1f fL (macrocytosis: >%g, consider B12/folate deficiency)", mcv, t.MacrocyticMin),
			})
		}
	}

	return factors
}

// GenerateRecommendations implements DomainScorer.
func (s *HematologicScorer) GenerateRecommendations(rec domain.PatientRecord, score float64) []string {
	var recs []string

	switch {
	case score >= 80:
		recs = append(recs,
			"URGENT: immediate referral to hematology",
			"Full blood count workup (blood film, reticulocytes)",
			"Consider bone marrow examination",
			"Assess and manage bleeding and infection risk",
		)
	case score >= 60:
		recs = append(recs,
			"Referral to hematology",
			"Anemia workup (iron studies, B12, folate, ferritin)",
			"Peripheral blood film review",
			"Additional testing as indicated (bone marrow)",
		)
	case score >= 40:
		recs = append(recs,
			"Investigate cause of blood count abnormality",
			"Exclude iron deficiency (serum iron, TIBC, ferritin)",
			"Evaluate for anemia of chronic disease",
			"Repeat count in 3 months",
		)
	case score >= 20:
		recs = append(recs,
			"Observation of mild abnormality",
			"Assess nutritional status",
			"Repeat count in 6 months",
		)
	default:
		recs = append(recs,
			"Within normal limits",
			"Continue observation at routine checkups",
		)
	}

	t := &s.cfg.Hematologic

	// Microcytic anemia points at iron deficiency.
	hgb, hasHgb := rec.Value(domain.MarkerHemoglobin)
	mcv, hasMCV := rec.Value(domain.MarkerMCV)
	if hasHgb && hasMCV && hgb < t.HemoglobinLimit.For(rec) && mcv < t.MicrocyticMax {
		recs = append(recs, "Microcytic anemia: consider iron supplementation, exclude GI bleeding")
	}

	if plt, ok := rec.Value(domain.MarkerPlatelets); ok && plt < t.PlateletLowBands[0].Threshold {
		recs = append(recs, "Severe thrombocytopenia: high bleeding risk, avoid trauma, review antiplatelet drugs")
	}

	return recs
}

// ClassifyAnemiaType classifies anemia morphology from hemoglobin, gender
// and MCV. ok is false when hemoglobin or gender is missing. An empty class
// with ok=true means no anemia; a present anemia with missing MCV reports
// AnemiaTypeUnknown.
func (s *HematologicScorer) ClassifyAnemiaType(rec domain.PatientRecord) (string, bool) {
	t := &s.cfg.Hematologic

	hgb, hasHgb := rec.Value(domain.MarkerHemoglobin)
	if !hasHgb || rec.Gender() == domain.GenderUnknown {
		return "", false
	}

	if hgb >= t.HemoglobinLimit.For(rec) {
		return "", true // no anemia
	}

	mcv, hasMCV := rec.Value(domain.MarkerMCV)
	if !hasMCV {
		return AnemiaTypeUnknown, true
	}

	switch {
	case mcv < t.MicrocyticMax:
		return AnemiaMicrocytic, true
	case mcv <= t.MacrocyticMin:
		return AnemiaNormocytic, true
	default:
		return AnemiaMacrocytic, true
	}
}
