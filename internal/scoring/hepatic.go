package scoring

import (
	"fmt"

	"github.com/health-risk-server/internal/domain"
)

// Fibrosis risk outcomes returned by AssessFibrosisRisk.
const (
	FibrosisRiskHigh         = "high"
	FibrosisRiskIntermediate = "intermediate"
	FibrosisRiskLow          = "low"
	FibrosisRiskInsufficient = "insufficient_data"
)

// HepaticScorer evaluates liver-panel markers: AST and ALT against
// gender-split reference limits (banded at 1x/2x/3x the limit), the FIB-4
// fibrosis index, the AST/ALT ratio, albumin and bilirubin.
type HepaticScorer struct {
	cfg *domain.ThresholdConfig
}

// NewHepaticScorer creates a hepatic scorer sharing the given threshold
// configuration.
func NewHepaticScorer(cfg *domain.ThresholdConfig) *HepaticScorer {
	return &HepaticScorer{cfg: cfg}
}

// Key implements DomainScorer.
func (s *HepaticScorer) Key() domain.DomainKey {
	return domain.Hepatic
}

// CalculateScore implements DomainScorer.
func (s *HepaticScorer) CalculateScore(rec domain.PatientRecord) float64 {
	t := &s.cfg.Hepatic
	score := 0.0

	if ast, ok := rec.Value(domain.MarkerAST); ok {
		score += t.ASTMultiples.WeightAbove(ast / t.ASTLimit.For(rec))
	}
	if alt, ok := rec.Value(domain.MarkerALT); ok {
		score += t.ALTMultiples.WeightAbove(alt / t.ALTLimit.For(rec))
	}
	if fib4, ok := rec.Value(domain.MarkerFIB4); ok {
		score += t.FIB4Bands.WeightAbove(fib4)
	}
	if ratio, ok := rec.Value(domain.MarkerASTALTRatio); ok {
		score += t.ASTALTRatio.WeightAbove(ratio)
	}
	if albumin, ok := rec.Value(domain.MarkerAlbumin); ok && albumin < t.AlbuminLow.Threshold {
		score += t.AlbuminLow.Weight
	}
	if bilirubin, ok := rec.Value(domain.MarkerBilirubin); ok && bilirubin > t.BilirubinHigh.Threshold {
		score += t.BilirubinHigh.Weight
	}

	return finalizeScore(score, t.AgeBands, rec)
}

// IdentifyRiskFactors implements DomainScorer.
func (s *HepaticScorer) IdentifyRiskFactors(rec domain.PatientRecord) []domain.RiskFactor {
	t := &s.cfg.Hepatic
	factors := make([]domain.RiskFactor, 0, 4)

	if ast, ok := rec.Value(domain.MarkerAST); ok {
		if limit := t.ASTLimit.For(rec); ast > limit {
			severity := domain.SeverityHigh
			if ast > limit*2 {
				severity = domain.SeverityVeryHigh
			}
			factors = append(factors, domain.RiskFactor{
				Marker: "AST", Value: ast, Unit: "U/L",
				Severity: severity, Category: "hepatic_injury",
				Description: fmt.Sprintf("AST: %.1f U/L (reference: <%g)", ast, limit),
			})
		}
	}

	if alt, ok := rec.Value(domain.MarkerALT); ok {
		if limit := t.ALTLimit.For(rec); alt > limit {
			severity := domain.SeverityHigh
			if alt > limit*2 {
				severity = domain.SeverityVeryHigh
			}
			factors = append(factors, domain.RiskFactor{
				Marker: "ALT", Value: alt, Unit: "U/L",
				Severity: severity, Category: "hepatic_injury",
				Description: fmt.Sprintf("ALT: %.1f U/L (reference: <%g)", alt, limit),
			})
		}
	}

	if fib4, ok := rec.Value(domain.MarkerFIB4); ok {
		switch {
		case fib4 > t.FIB4HighCutoff:
			factors = append(factors, domain.RiskFactor{
				Marker: "FIB-4 Index", Value: fib4, Unit: "index",
				Severity: domain.SeverityVeryHigh, Category: "advanced_fibrosis",
				Description: fmt.Sprintf("FIB-4: %.2f (high risk: >%g, advanced fibrosis suspected)", fib4, t.FIB4HighCutoff),
			})
		case fib4 > t.FIB4LowCutoff:
			factors = append(factors, domain.RiskFactor{
				Marker: "FIB-4 Index", Value: fib4, Unit: "index",
				Severity: domain.SeverityModerate, Category: "indeterminate_fibrosis",
				Description: fmt.Sprintf("FIB-4: %.2f (indeterminate: %g-%g)", fib4, t.FIB4LowCutoff, t.FIB4HighCutoff),
			})
		}
	}

	if ratio, ok := rec.Value(domain.MarkerASTALTRatio); ok && ratio > 1 {
		factors = append(factors, domain.RiskFactor{
			Marker: "AST/ALT ratio", Value: ratio, Unit: "ratio",
			Severity: domain.SeverityModerate, Category: "chronic_liver_disease",
			Description: fmt.Sprintf("AST/ALT ratio: %.2f (>1: cirrhosis or chronic liver disease suspected)", ratio),
		})
	}

	if albumin, ok := rec.Value(domain.MarkerAlbumin); ok && albumin < t.AlbuminLow.Threshold {
		factors = append(factors, domain.RiskFactor{
			Marker: "Albumin", Value: albumin, Unit: "g/dL",
			Severity: domain.SeverityHigh, Category: "hepatic_synthetic_dysfunction",
			Description: fmt.Sprintf("Albumin: %.1f g/dL (low: <%g)", albumin, t.AlbuminLow.Threshold),
		})
	}

	if bilirubin, ok := rec.Value(domain.MarkerBilirubin); ok && bilirubin > t.BilirubinHigh.Threshold {
		factors = append(factors, domain.RiskFactor{
			Marker: "Total bilirubin", Value: bilirubin, Unit: "mg/dL",
			Severity: domain.SeverityModerate, Category: "hyperbilirubinemia",
			Description: fmt.Sprintf("Total bilirubin: %.1f mg/dL (elevated: >%g)", bilirubin, t.BilirubinHigh.Threshold),
		})
	}

	return factors
}

// GenerateRecommendations implements DomainScorer. A high-risk FIB-4 value
// escalates to the urgent tier regardless of the numeric score.
func (s *HepaticScorer) GenerateRecommendations(rec domain.PatientRecord, score float64) []string {
	var recs []string

	fib4, hasFIB4 := rec.Value(domain.MarkerFIB4)

	switch {
	case score >= 80 || (hasFIB4 && fib4 > s.cfg.Hepatic.FIB4HighCutoff):
		recs = append(recs,
			"URGENT: immediate referral to a hepatologist",
			"Fibrosis staging (FibroScan, consider liver biopsy)",
			"Screen for cirrhosis complications (varices, hepatocellular carcinoma)",
			"Etiology workup (hepatitis B/C, NASH, alcohol-related)",
			"Start hepatoprotective therapy",
		)
	case score >= 60:
		recs = append(recs,
			"Referral to a hepatologist",
			"Abdominal ultrasound and CT",
			"Viral hepatitis serology (HBsAg, anti-HCV)",
			"Exclude autoimmune liver disease",
			"Lifestyle modification (alcohol cessation, weight loss)",
			"Liver panel every 3-6 months",
		)
	case score >= 40:
		recs = append(recs,
			"Investigate cause of liver enzyme elevation",
			"Abdominal ultrasound",
			"Review and limit alcohol intake",
			"Weight management (target BMI <25)",
			"Avoid hepatotoxic drugs",
			"Repeat testing in 6 months",
		)
	case score >= 20:
		recs = append(recs,
			"Lifestyle review",
			"Moderate alcohol intake",
			"Annual liver panel",
		)
	default:
		recs = append(recs,
			"Maintain current liver function",
			"Continue observation at routine checkups",
		)
	}

	// Elevated ALT with low-risk FIB-4 suggests NAFLD.
	if alt, ok := rec.Value(domain.MarkerALT); ok && alt > 40 && hasFIB4 && fib4 < s.cfg.Hepatic.FIB4LowCutoff {
		recs = append(recs, "Suspected NAFLD: manage metabolic risk factors, weight reduction")
	}

	return recs
}

// AssessFibrosisRisk grades liver-fibrosis risk purely from the FIB-4 value,
// using the same cut-points as the FIB-4 scoring bands but independent of
// the composite hepatic score.
func (s *HepaticScorer) AssessFibrosisRisk(rec domain.PatientRecord) string {
	fib4, ok := rec.Value(domain.MarkerFIB4)
	if !ok {
		return FibrosisRiskInsufficient
	}

	switch {
	case fib4 > s.cfg.Hepatic.FIB4HighCutoff:
		return FibrosisRiskHigh
	case fib4 > s.cfg.Hepatic.FIB4LowCutoff:
		return FibrosisRiskIntermediate
	default:
		return FibrosisRiskLow
	}
}
