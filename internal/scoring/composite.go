package scoring

import (
	"fmt"
	"strings"

	"github.com/health-risk-server/internal/domain"
)

// Domain score thresholds for alert emission. A domain at or above
// alertThreshold emits a HIGH alert; at or above criticalThreshold the alert
// escalates to CRITICAL.
const (
	alertThreshold    = 60.0
	criticalThreshold = 80.0
)

// CompositeScorer aggregates the five domain scorers into one composite
// health-risk assessment: weighted combination, age adjustment, multi-domain
// escalation, risk-level classification, alerts, modifiable factors and
// consolidated recommendations.
//
// A CompositeScorer is stateless after construction and safe for concurrent
// use; the same instance scores any number of records.
type CompositeScorer struct {
	cfg *domain.ThresholdConfig

	cardiovascular *CardiovascularScorer
	metabolic      *MetabolicScorer
	renal          *RenalScorer
	hepatic        *HepaticScorer
	hematologic    *HematologicScorer
}

// NewCompositeScorer validates the threshold configuration and constructs
// the aggregator with its five domain scorers. A structurally incomplete
// configuration is the engine's only hard failure.
func NewCompositeScorer(cfg *domain.ThresholdConfig) (*CompositeScorer, error) {
	if cfg == nil {
		cfg = domain.DefaultThresholdConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("threshold configuration rejected: %w", err)
	}

	return &CompositeScorer{
		cfg:            cfg,
		cardiovascular: NewCardiovascularScorer(cfg),
		metabolic:      NewMetabolicScorer(cfg),
		renal:          NewRenalScorer(cfg),
		hepatic:        NewHepaticScorer(cfg),
		hematologic:    NewHematologicScorer(cfg),
	}, nil
}

// Scorers returns the five domain scorers in fixed domain order.
func (c *CompositeScorer) Scorers() []DomainScorer {
	return []DomainScorer{c.cardiovascular, c.metabolic, c.renal, c.hepatic, c.hematologic}
}

// Calculate produces the full composite assessment for one patient record.
// It never fails: missing markers degrade to zero contribution and missing
// age or gender skip the respective adjustment.
func (c *CompositeScorer) Calculate(rec domain.PatientRecord) *domain.CompositeResult {
	domainScores := make(map[domain.DomainKey]float64, len(domain.DomainOrder))
	for _, scorer := range c.Scorers() {
		domainScores[scorer.Key()] = scorer.CalculateScore(rec)
	}

	composite := 0.0
	for key, score := range domainScores {
		composite += c.cfg.RiskWeights[key] * score
	}

	age, hasAge := rec.Age()
	ageMultiplier := c.cfg.CompositeAgeBands.MultiplierFor(age, hasAge)
	composite *= ageMultiplier

	// Multi-domain escalation counts unweighted domain scores.
	penalty := c.cfg.MultiDomainPenalty
	highRiskCount := 0
	for _, score := range domainScores {
		if score > penalty.ThresholdScore {
			highRiskCount++
		}
	}
	penaltyApplied := highRiskCount >= penalty.MinDomains
	if penaltyApplied {
		composite *= penalty.Multiplier
		if composite > 100 {
			composite = 100
		}
	}

	composite = clamp01(composite)

	// Classification uses the clamped, unrounded composite; the rounded
	// value is what callers see.
	level, label := c.classifyRisk(composite)
	alerts := c.buildAlerts(domainScores, rec)

	return &domain.CompositeResult{
		CompositeScore:            round1(composite),
		RiskLevel:                 level,
		RiskLabel:                 label,
		DomainScores:              domainScores,
		Alerts:                    alerts,
		ModifiableFactors:         c.identifyModifiableFactors(rec),
		Recommendations:           c.buildRecommendations(composite, domainScores),
		AgeAdjustedPercentile:     c.agePercentile(composite, age, hasAge),
		AgeMultiplier:             ageMultiplier,
		MultiDomainPenaltyApplied: penaltyApplied,
	}
}

// classifyRisk scans the configured risk-level bands in order and returns
// the first whose [min,max) range contains the score. A score beyond every
// band (the score==100 edge) falls back to the most severe classification.
func (c *CompositeScorer) classifyRisk(score float64) (domain.RiskLevel, string) {
	for _, band := range c.cfg.RiskLevels {
		if score >= band.Min && score < band.Max {
			return band.Level, band.Label
		}
	}
	return domain.RiskCritical, "要精査"
}

// buildAlerts emits one alert per domain whose score reaches the alert
// threshold, in fixed domain order, each populated with that domain's
// abnormal markers, recommendations and extra assessment.
func (c *CompositeScorer) buildAlerts(domainScores map[domain.DomainKey]float64, rec domain.PatientRecord) []domain.Alert {
	alerts := make([]domain.Alert, 0)

	for _, scorer := range c.Scorers() {
		key := scorer.Key()
		score := domainScores[key]
		if score < alertThreshold {
			continue
		}

		severity := domain.AlertHigh
		if score >= criticalThreshold {
			severity = domain.AlertCritical
		}

		factors := scorer.IdentifyRiskFactors(rec)
		markers := make([]string, 0, len(factors))
		for _, f := range factors {
			markers = append(markers, f.Description)
		}

		alerts = append(alerts, domain.Alert{
			Domain:          key.DisplayName(),
			DomainKey:       key,
			Severity:        severity,
			Score:           score,
			AbnormalMarkers: markers,
			Recommendations: scorer.GenerateRecommendations(rec, score),
			Details:         c.alertDetails(key, rec),
		})
	}

	return alerts
}

// alertDetails attaches the domain-specific extra assessment to an alert.
func (c *CompositeScorer) alertDetails(key domain.DomainKey, rec domain.PatientRecord) map[string]string {
	switch key {
	case domain.Cardiovascular:
		risk, ok := c.cardiovascular.Calculate10YrCVDRisk(rec)
		estimate := "N/A"
		if ok {
			estimate = fmt.Sprintf("%.1f%%", risk)
		}
		return map[string]string{"estimated_10yr_cvd_risk": estimate}

	case domain.Metabolic:
		return map[string]string{"diabetes_status": c.metabolic.AssessDiabetesStatus(rec)}

	case domain.Renal:
		stage := c.renal.AssessCKDStage(rec)
		return map[string]string{
			"ckd_stage":     stage.CKDStage,
			"risk_category": stage.RiskCategory,
		}

	case domain.Hepatic:
		return map[string]string{"fibrosis_risk": c.hepatic.AssessFibrosisRisk(rec)}

	case domain.Hematologic:
		anemiaType, ok := c.hematologic.ClassifyAnemiaType(rec)
		if !ok || anemiaType == "" {
			anemiaType = "none"
		}
		return map[string]string{"anemia_type": anemiaType}
	}
	return nil
}

// identifyModifiableFactors is a second, independent pass over the raw
// markers for factors the patient can act on. It deliberately re-checks raw
// thresholds rather than reusing domain scores, so it can flag a factor even
// when its domain stayed below the alert threshold.
func (c *CompositeScorer) identifyModifiableFactors(rec domain.PatientRecord) []string {
	factors := make([]string, 0)

	if ldl, ok := rec.Value(domain.MarkerLDL); ok && ldl >= 130 {
		factors = append(factors, "LDL cholesterol (dietary therapy, statins)")
	}
	if glucose, ok := rec.Value(domain.MarkerGlucose); ok && glucose >= 100 {
		factors = append(factors, "Fasting glucose (diet, exercise, pharmacotherapy)")
	}
	if hba1c, ok := rec.Value(domain.MarkerHbA1c); ok && hba1c >= 5.7 {
		factors = append(factors, "HbA1c (diabetes management)")
	}
	if tg, ok := rec.Value(domain.MarkerTriglycerides); ok && tg >= 150 {
		factors = append(factors, "Triglycerides (diet, exercise, fibrates)")
	}
	if hdl, ok := rec.Value(domain.MarkerHDL); ok && hdl < c.cfg.Cardiovascular.HDL.Limit.For(rec) {
		factors = append(factors, "HDL cholesterol (exercise, smoking cessation)")
	}
	if alt, ok := rec.Value(domain.MarkerALT); ok && alt > 40 {
		factors = append(factors, "Liver enzymes (weight loss, alcohol reduction)")
	}

	return factors
}

// buildRecommendations produces the tiered composite advice plus a note when
// multiple domains are individually high risk.
func (c *CompositeScorer) buildRecommendations(composite float64, domainScores map[domain.DomainKey]float64) []string {
	var recs []string

	switch {
	case composite >= 80:
		recs = append(recs,
			"[Overall assessment: detailed examination required]",
			"Referral to multiple specialists recommended",
			"Comprehensive diagnostic workup",
			"Start a multidisciplinary intervention program",
		)
	case composite >= 60:
		recs = append(recs,
			"[Overall assessment: high risk]",
			"Consider specialist referral",
			"Thorough lifestyle modification",
			"Follow-up every 3 months",
		)
	case composite >= 40:
		recs = append(recs,
			"[Overall assessment: moderate risk]",
			"Lifestyle modification counseling",
			"Reassessment in 6 months",
		)
	case composite >= 20:
		recs = append(recs,
			"[Overall assessment: low risk]",
			"Maintain current health status",
			"Annual checkup",
		)
	default:
		recs = append(recs,
			"[Overall assessment: optimal]",
			"Excellent health status",
			"Annual checkup",
		)
	}

	highRisk := make([]string, 0, len(domain.DomainOrder))
	for _, key := range domain.DomainOrder {
		if domainScores[key] >= alertThreshold {
			highRisk = append(highRisk, key.String())
		}
	}
	if len(highRisk) >= 2 {
		recs = append(recs, fmt.Sprintf(
			"Note: high risk detected in %d domains (%s) - integrated management required",
			len(highRisk), strings.Join(highRisk, ", ")))
	}

	return recs
}

// agePercentile converts the composite score into a deterministic
// age-adjusted percentile heuristic. It is not an epidemiological rank:
// older patients are graded against a relaxed baseline and younger patients
// against a stricter one.
func (c *CompositeScorer) agePercentile(composite float64, age float64, hasAge bool) int {
	if !hasAge {
		age = 50
	}

	adjusted := composite
	switch {
	case age >= 65:
		adjusted *= 0.9
	case age < 45:
		adjusted *= 1.1
	}

	percentile := int(adjusted)
	if percentile < 0 {
		percentile = 0
	}
	if percentile > 100 {
		percentile = 100
	}
	return percentile
}
