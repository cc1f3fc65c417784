package domain

// RiskFactor is a single abnormal-marker finding produced by a domain
// scorer. Factors mirror the scoring bands exactly: a factor is listed if and
// only if the marker contributed a non-zero weight to the domain score.
type RiskFactor struct {
	Marker      string   `json:"marker"`
	Value       float64  `json:"value"`
	Unit        string   `json:"unit"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
}

// Alert is emitted for each domain whose score reaches the alert threshold.
// Details carries the domain-specific extra assessment (10-year CVD risk,
// diabetes status, CKD stage, fibrosis risk, anemia type).
type Alert struct {
	Domain          string            `json:"domain"`
	DomainKey       DomainKey         `json:"domain_key"`
	Severity        AlertSeverity     `json:"severity"`
	Score           float64           `json:"score"`
	AbnormalMarkers []string          `json:"abnormal_markers"`
	Recommendations []string          `json:"recommendations"`
	Details         map[string]string `json:"details,omitempty"`
}

// CompositeResult is the full output of one composite scoring call.
// DomainScores always contains exactly the five fixed domain keys, even when
// most input markers are missing.
type CompositeResult struct {
	CompositeScore            float64               `json:"composite_score"`
	RiskLevel                 RiskLevel             `json:"risk_level"`
	RiskLabel                 string                `json:"risk_label"`
	DomainScores              map[DomainKey]float64 `json:"domain_scores"`
	Alerts                    []Alert               `json:"alerts"`
	ModifiableFactors         []string              `json:"modifiable_factors"`
	Recommendations           []string              `json:"recommendations"`
	AgeAdjustedPercentile     int                   `json:"age_adjusted_percentile"`
	AgeMultiplier             float64               `json:"age_multiplier"`
	MultiDomainPenaltyApplied bool                  `json:"multi_domain_penalty_applied"`
}
