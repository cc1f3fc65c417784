package domain

import (
	"fmt"
)

// Band is a single threshold band: crossing Threshold (in the direction the
// owning table is evaluated) contributes Weight to the domain score.
type Band struct {
	Threshold float64 `mapstructure:"threshold" json:"threshold"`
	Weight    float64 `mapstructure:"weight" json:"weight"`
}

// BandTable is an ordered list of mutually exclusive threshold bands,
// most severe first. Evaluation walks the table top-down and returns the
// weight of the first matching band, so band boundaries live in data rather
// than in chained conditionals.
type BandTable []Band

// WeightAtOrAbove returns the weight of the first band with v >= Threshold.
// Tables must be ordered by descending threshold.
func (t BandTable) WeightAtOrAbove(v float64) float64 {
	for _, b := range t {
		if v >= b.Threshold {
			return b.Weight
		}
	}
	return 0
}

// WeightAbove returns the weight of the first band with v > Threshold.
// Tables must be ordered by descending threshold.
func (t BandTable) WeightAbove(v float64) float64 {
	for _, b := range t {
		if v > b.Threshold {
			return b.Weight
		}
	}
	return 0
}

// WeightBelow returns the weight of the first band with v < Threshold.
// Tables must be ordered by ascending threshold, so the most severe
// (lowest) band is checked first.
func (t BandTable) WeightBelow(v float64) float64 {
	for _, b := range t {
		if v < b.Threshold {
			return b.Weight
		}
	}
	return 0
}

// AgeBand maps a minimum age to a score multiplier.
type AgeBand struct {
	MinAge     float64 `mapstructure:"min_age" json:"min_age"`
	Multiplier float64 `mapstructure:"multiplier" json:"multiplier"`
}

// AgeBands is an ordered list of age bands, oldest first. The final band
// conventionally carries MinAge 0 so every known age matches.
type AgeBands []AgeBand

// MultiplierFor returns the multiplier of the first band with age >= MinAge.
// A missing age (ok=false) skips age adjustment entirely.
func (a AgeBands) MultiplierFor(age float64, ok bool) float64 {
	if !ok {
		return 1.0
	}
	for _, b := range a {
		if age >= b.MinAge {
			return b.Multiplier
		}
	}
	return 1.0
}

// GenderLimit is a reference limit that differs by gender. Records with
// unknown gender use the male limit.
type GenderLimit struct {
	Male   float64 `mapstructure:"male" json:"male"`
	Female float64 `mapstructure:"female" json:"female"`
}

// For returns the limit applicable to the record's gender.
func (g GenderLimit) For(rec PatientRecord) float64 {
	if rec.IsFemale() {
		return g.Female
	}
	return g.Male
}

// FlatRule contributes a fixed weight when a marker crosses a single
// threshold (direction decided by the consuming scorer).
type FlatRule struct {
	Threshold float64 `mapstructure:"threshold" json:"threshold"`
	Weight    float64 `mapstructure:"weight" json:"weight"`
}

// HDLThresholds captures the inverse HDL scoring: below the gender limit is
// penalized, the mid band is mildly penalized, and at or above ProtectiveMin
// the ProtectiveBonus is subtracted from the running score.
type HDLThresholds struct {
	Limit           GenderLimit `mapstructure:"limit" json:"limit"`
	LowWeight       float64     `mapstructure:"low_weight" json:"low_weight"`
	ProtectiveMin   float64     `mapstructure:"protective_min" json:"protective_min"`
	MidWeight       float64     `mapstructure:"mid_weight" json:"mid_weight"`
	ProtectiveBonus float64     `mapstructure:"protective_bonus" json:"protective_bonus"`
}

// CardiovascularThresholds holds the lipid-panel band tables.
type CardiovascularThresholds struct {
	LDLBands          BandTable     `mapstructure:"ldl_bands" json:"ldl_bands"`
	HDL               HDLThresholds `mapstructure:"hdl" json:"hdl"`
	TriglycerideBands BandTable     `mapstructure:"triglyceride_bands" json:"triglyceride_bands"`
	TCHDLRatioBands   BandTable     `mapstructure:"tc_hdl_ratio_bands" json:"tc_hdl_ratio_bands"`
	AgeBands          AgeBands      `mapstructure:"age_bands" json:"age_bands"`
	// CVDRiskBase maps the cardiovascular score to a coarse 10-year CVD
	// risk percentage; CVDRiskFloor applies when no band matches.
	CVDRiskBase     BandTable `mapstructure:"cvd_risk_base" json:"cvd_risk_base"`
	CVDRiskFloor    float64   `mapstructure:"cvd_risk_floor" json:"cvd_risk_floor"`
	CVDRiskAgeBands AgeBands  `mapstructure:"cvd_risk_age_bands" json:"cvd_risk_age_bands"`
}

// MetabolicThresholds holds the glycemic band tables and the diagnostic
// cut-points used for diabetes staging.
type MetabolicThresholds struct {
	GlucoseBands       BandTable `mapstructure:"glucose_bands" json:"glucose_bands"`
	HbA1cBands         BandTable `mapstructure:"hba1c_bands" json:"hba1c_bands"`
	HOMAIRBands        BandTable `mapstructure:"homa_ir_bands" json:"homa_ir_bands"`
	AgeBands           AgeBands  `mapstructure:"age_bands" json:"age_bands"`
	GlucoseDiabetes    float64   `mapstructure:"glucose_diabetes" json:"glucose_diabetes"`
	GlucosePrediabetes float64   `mapstructure:"glucose_prediabetes" json:"glucose_prediabetes"`
	HbA1cDiabetes      float64   `mapstructure:"hba1c_diabetes" json:"hba1c_diabetes"`
	HbA1cPrediabetes   float64   `mapstructure:"hba1c_prediabetes" json:"hba1c_prediabetes"`
}

// RenalThresholds holds the kidney-function band tables. EGFRBands is
// evaluated downward: severity rises as eGFR falls.
type RenalThresholds struct {
	EGFRBands       BandTable   `mapstructure:"egfr_bands" json:"egfr_bands"`
	ACRBands        BandTable   `mapstructure:"acr_bands" json:"acr_bands"`
	AgeBands        AgeBands    `mapstructure:"age_bands" json:"age_bands"`
	CreatinineLimit GenderLimit `mapstructure:"creatinine_limit" json:"creatinine_limit"`
}

// HepaticThresholds holds the liver-panel band tables. ASTMultiples and
// ALTMultiples are evaluated against the value divided by the gender limit,
// so bands express 1x/2x/3x the upper reference limit.
type HepaticThresholds struct {
	ASTLimit       GenderLimit `mapstructure:"ast_limit" json:"ast_limit"`
	ALTLimit       GenderLimit `mapstructure:"alt_limit" json:"alt_limit"`
	ASTMultiples   BandTable   `mapstructure:"ast_multiples" json:"ast_multiples"`
	ALTMultiples   BandTable   `mapstructure:"alt_multiples" json:"alt_multiples"`
	FIB4Bands      BandTable   `mapstructure:"fib4_bands" json:"fib4_bands"`
	ASTALTRatio    BandTable   `mapstructure:"ast_alt_ratio_bands" json:"ast_alt_ratio_bands"`
	AlbuminLow     FlatRule    `mapstructure:"albumin_low" json:"albumin_low"`
	BilirubinHigh  FlatRule    `mapstructure:"bilirubin_high" json:"bilirubin_high"`
	AgeBands       AgeBands    `mapstructure:"age_bands" json:"age_bands"`
	FIB4HighCutoff float64     `mapstructure:"fib4_high_cutoff" json:"fib4_high_cutoff"`
	FIB4LowCutoff  float64     `mapstructure:"fib4_low_cutoff" json:"fib4_low_cutoff"`
}

// HematologicThresholds holds the complete-blood-count band tables.
// AnemiaDeficitBands is evaluated on hemoglobin minus the gender limit, so
// the bands express how far below the reference limit the value falls.
type HematologicThresholds struct {
	HemoglobinLimit    GenderLimit `mapstructure:"hemoglobin_limit" json:"hemoglobin_limit"`
	AnemiaDeficitBands BandTable   `mapstructure:"anemia_deficit_bands" json:"anemia_deficit_bands"`
	Polycythemia       FlatRule    `mapstructure:"polycythemia" json:"polycythemia"`
	WBCLowBands        BandTable   `mapstructure:"wbc_low_bands" json:"wbc_low_bands"`
	WBCHighBands       BandTable   `mapstructure:"wbc_high_bands" json:"wbc_high_bands"`
	PlateletLowBands   BandTable   `mapstructure:"platelet_low_bands" json:"platelet_low_bands"`
	PlateletHighBands  BandTable   `mapstructure:"platelet_high_bands" json:"platelet_high_bands"`
	MCVLowBands        BandTable   `mapstructure:"mcv_low_bands" json:"mcv_low_bands"`
	MCVHighBands       BandTable   `mapstructure:"mcv_high_bands" json:"mcv_high_bands"`
	MicrocyticMax      float64     `mapstructure:"microcytic_max" json:"microcytic_max"`
	MacrocyticMin      float64     `mapstructure:"macrocytic_min" json:"macrocytic_min"`
	AgeBands           AgeBands    `mapstructure:"age_bands" json:"age_bands"`
}

// RiskLevelBand maps a [Min,Max) composite score range to a risk level and
// its display label. Bands are scanned in configured order; a score matching
// no band falls back to the most severe classification.
type RiskLevelBand struct {
	Level RiskLevel `mapstructure:"level" json:"level"`
	Label string    `mapstructure:"label" json:"label"`
	Min   float64   `mapstructure:"min" json:"min"`
	Max   float64   `mapstructure:"max" json:"max"`
}

// MultiDomainPenalty escalates the composite when several domains are
// individually high risk: if at least MinDomains domains score strictly
// above ThresholdScore (unweighted), the composite is multiplied by
// Multiplier and clamped to 100.
type MultiDomainPenalty struct {
	ThresholdScore float64 `mapstructure:"threshold_score" json:"threshold_score"`
	MinDomains     int     `mapstructure:"min_domains" json:"min_domains"`
	Multiplier     float64 `mapstructure:"multiplier" json:"multiplier"`
}

// ThresholdConfig is the complete, immutable clinical threshold set shared by
// the five domain scorers and the composite aggregator. It is constructed
// once (from defaults, optionally overlaid by a threshold file) and shared
// read-only across any number of concurrent scoring calls.
//
// RiskWeights should sum to 1.0 by convention; the engine does not enforce
// this, it simply produces composites on a different scale if they do not.
type ThresholdConfig struct {
	Cardiovascular CardiovascularThresholds `mapstructure:"cardiovascular" json:"cardiovascular"`
	Metabolic      MetabolicThresholds      `mapstructure:"metabolic" json:"metabolic"`
	Renal          RenalThresholds          `mapstructure:"renal" json:"renal"`
	Hepatic        HepaticThresholds        `mapstructure:"hepatic" json:"hepatic"`
	Hematologic    HematologicThresholds    `mapstructure:"hematologic" json:"hematologic"`

	RiskWeights        map[DomainKey]float64 `mapstructure:"risk_weights" json:"risk_weights"`
	RiskLevels         []RiskLevelBand       `mapstructure:"risk_levels" json:"risk_levels"`
	MultiDomainPenalty MultiDomainPenalty    `mapstructure:"multi_domain_penalty" json:"multi_domain_penalty"`
	CompositeAgeBands  AgeBands              `mapstructure:"composite_age_bands" json:"composite_age_bands"`
}

// DefaultThresholdConfig returns the built-in clinical threshold set. The
// band boundaries follow ATP-III lipid cut-points, ADA glycemic criteria,
// KDIGO CKD staging and standard CBC reference ranges.
func DefaultThresholdConfig() *ThresholdConfig {
	return &ThresholdConfig{
		Cardiovascular: CardiovascularThresholds{
			LDLBands: BandTable{
				{Threshold: 190, Weight: 40},
				{Threshold: 160, Weight: 32},
				{Threshold: 130, Weight: 24},
				{Threshold: 100, Weight: 12},
			},
			HDL: HDLThresholds{
				Limit:           GenderLimit{Male: 40, Female: 50},
				LowWeight:       25,
				ProtectiveMin:   60,
				MidWeight:       10,
				ProtectiveBonus: 5,
			},
			TriglycerideBands: BandTable{
				{Threshold: 500, Weight: 20},
				{Threshold: 200, Weight: 16},
				{Threshold: 150, Weight: 8},
			},
			TCHDLRatioBands: BandTable{
				{Threshold: 5, Weight: 15},
				{Threshold: 4, Weight: 10},
				{Threshold: 3.5, Weight: 5},
			},
			AgeBands: AgeBands{
				{MinAge: 65, Multiplier: 1.3},
				{MinAge: 55, Multiplier: 1.15},
				{MinAge: 45, Multiplier: 1.0},
				{MinAge: 0, Multiplier: 0.8},
			},
			CVDRiskBase: BandTable{
				{Threshold: 80, Weight: 30},
				{Threshold: 60, Weight: 20},
				{Threshold: 40, Weight: 10},
				{Threshold: 20, Weight: 5},
			},
			CVDRiskFloor: 2,
			CVDRiskAgeBands: AgeBands{
				{MinAge: 65, Multiplier: 1.5},
				{MinAge: 55, Multiplier: 1.2},
				{MinAge: 0, Multiplier: 1.0},
			},
		},
		Metabolic: MetabolicThresholds{
			GlucoseBands: BandTable{
				{Threshold: 126, Weight: 40},
				{Threshold: 100, Weight: 20},
			},
			HbA1cBands: BandTable{
				{Threshold: 6.5, Weight: 40},
				{Threshold: 5.7, Weight: 20},
			},
			HOMAIRBands: BandTable{
				{Threshold: 5.0, Weight: 20},
				{Threshold: 2.5, Weight: 10},
			},
			AgeBands: AgeBands{
				{MinAge: 65, Multiplier: 1.2},
				{MinAge: 45, Multiplier: 1.1},
				{MinAge: 0, Multiplier: 1.0},
			},
			GlucoseDiabetes:    126,
			GlucosePrediabetes: 100,
			HbA1cDiabetes:      6.5,
			HbA1cPrediabetes:   5.7,
		},
		Renal: RenalThresholds{
			EGFRBands: BandTable{
				{Threshold: 15, Weight: 60},
				{Threshold: 30, Weight: 50},
				{Threshold: 45, Weight: 40},
				{Threshold: 60, Weight: 25},
				{Threshold: 90, Weight: 10},
			},
			ACRBands: BandTable{
				{Threshold: 300, Weight: 40},
				{Threshold: 30, Weight: 20},
			},
			AgeBands: AgeBands{
				{MinAge: 75, Multiplier: 1.15},
				{MinAge: 65, Multiplier: 1.1},
				{MinAge: 0, Multiplier: 1.0},
			},
			CreatinineLimit: GenderLimit{Male: 1.3, Female: 1.1},
		},
		Hepatic: HepaticThresholds{
			ASTLimit: GenderLimit{Male: 40, Female: 32},
			ALTLimit: GenderLimit{Male: 41, Female: 33},
			ASTMultiples: BandTable{
				{Threshold: 3, Weight: 20},
				{Threshold: 2, Weight: 15},
				{Threshold: 1, Weight: 8},
			},
			ALTMultiples: BandTable{
				{Threshold: 3, Weight: 25},
				{Threshold: 2, Weight: 18},
				{Threshold: 1, Weight: 10},
			},
			FIB4Bands: BandTable{
				{Threshold: 3.25, Weight: 35},
				{Threshold: 1.45, Weight: 18},
			},
			ASTALTRatio: BandTable{
				{Threshold: 2, Weight: 10},
				{Threshold: 1, Weight: 5},
			},
			AlbuminLow:    FlatRule{Threshold: 3.5, Weight: 5},
			BilirubinHigh: FlatRule{Threshold: 1.2, Weight: 5},
			AgeBands: AgeBands{
				{MinAge: 65, Multiplier: 1.1},
				{MinAge: 0, Multiplier: 1.0},
			},
			FIB4HighCutoff: 3.25,
			FIB4LowCutoff:  1.45,
		},
		Hematologic: HematologicThresholds{
			HemoglobinLimit: GenderLimit{Male: 13, Female: 12},
			AnemiaDeficitBands: BandTable{
				{Threshold: -3, Weight: 40},
				{Threshold: -2, Weight: 30},
				{Threshold: 0, Weight: 15},
			},
			Polycythemia: FlatRule{Threshold: 18, Weight: 10},
			WBCLowBands: BandTable{
				{Threshold: 3.0, Weight: 25},
				{Threshold: 4.0, Weight: 12},
			},
			WBCHighBands: BandTable{
				{Threshold: 15.0, Weight: 25},
				{Threshold: 11.0, Weight: 10},
			},
			PlateletLowBands: BandTable{
				{Threshold: 50, Weight: 25},
				{Threshold: 100, Weight: 20},
				{Threshold: 150, Weight: 10},
			},
			PlateletHighBands: BandTable{
				{Threshold: 450, Weight: 15},
			},
			MCVLowBands: BandTable{
				{Threshold: 70, Weight: 10},
				{Threshold: 80, Weight: 5},
			},
			MCVHighBands: BandTable{
				{Threshold: 100, Weight: 5},
			},
			MicrocyticMax: 80,
			MacrocyticMin: 100,
			AgeBands: AgeBands{
				{MinAge: 75, Multiplier: 1.1},
				{MinAge: 0, Multiplier: 1.0},
			},
		},
		RiskWeights: map[DomainKey]float64{
			Cardiovascular: 0.30,
			Metabolic:      0.25,
			Renal:          0.20,
			Hepatic:        0.15,
			Hematologic:    0.10,
		},
		RiskLevels: []RiskLevelBand{
			{Level: RiskOptimal, Label: "最適", Min: 0, Max: 20},
			{Level: RiskLow, Label: "低リスク", Min: 20, Max: 40},
			{Level: RiskModerate, Label: "中リスク", Min: 40, Max: 60},
			{Level: RiskHigh, Label: "高リスク", Min: 60, Max: 80},
			{Level: RiskCritical, Label: "要精査", Min: 80, Max: 100},
		},
		MultiDomainPenalty: MultiDomainPenalty{
			ThresholdScore: 70,
			MinDomains:     2,
			Multiplier:     1.15,
		},
		CompositeAgeBands: AgeBands{
			{MinAge: 75, Multiplier: 1.2},
			{MinAge: 65, Multiplier: 1.1},
			{MinAge: 0, Multiplier: 1.0},
		},
	}
}

// Validate ensures every required domain block and table is present. This is
// the only hard failure in the engine: a structurally incomplete threshold
// set is rejected at construction time rather than silently defaulted.
func (c *ThresholdConfig) Validate() error {
	type table struct {
		name  string
		empty bool
	}
	tables := []table{
		{"cardiovascular.ldl_bands", len(c.Cardiovascular.LDLBands) == 0},
		{"cardiovascular.triglyceride_bands", len(c.Cardiovascular.TriglycerideBands) == 0},
		{"cardiovascular.tc_hdl_ratio_bands", len(c.Cardiovascular.TCHDLRatioBands) == 0},
		{"metabolic.glucose_bands", len(c.Metabolic.GlucoseBands) == 0},
		{"metabolic.hba1c_bands", len(c.Metabolic.HbA1cBands) == 0},
		{"metabolic.homa_ir_bands", len(c.Metabolic.HOMAIRBands) == 0},
		{"renal.egfr_bands", len(c.Renal.EGFRBands) == 0},
		{"renal.acr_bands", len(c.Renal.ACRBands) == 0},
		{"hepatic.ast_multiples", len(c.Hepatic.ASTMultiples) == 0},
		{"hepatic.alt_multiples", len(c.Hepatic.ALTMultiples) == 0},
		{"hepatic.fib4_bands", len(c.Hepatic.FIB4Bands) == 0},
		{"hematologic.anemia_deficit_bands", len(c.Hematologic.AnemiaDeficitBands) == 0},
		{"hematologic.wbc_low_bands", len(c.Hematologic.WBCLowBands) == 0},
		{"hematologic.platelet_low_bands", len(c.Hematologic.PlateletLowBands) == 0},
	}
	for _, t := range tables {
		if t.empty {
			return fmt.Errorf("%w: %s", ErrMissingThresholds, t.name)
		}
	}

	if len(c.RiskWeights) == 0 {
		return fmt.Errorf("%w: risk_weights", ErrMissingThresholds)
	}
	for _, d := range DomainOrder {
		if _, ok := c.RiskWeights[d]; !ok {
			return fmt.Errorf("%w: risk_weights.%s", ErrMissingThresholds, d)
		}
	}

	if len(c.RiskLevels) == 0 {
		return fmt.Errorf("%w: risk_levels", ErrMissingThresholds)
	}
	for i, lvl := range c.RiskLevels {
		if !lvl.Level.IsValid() {
			return fmt.Errorf("%w: risk_levels[%d].level %q", ErrInvalidThresholds, i, lvl.Level)
		}
		if lvl.Max <= lvl.Min {
			return fmt.Errorf("%w: risk_levels[%d] range [%g,%g)", ErrInvalidThresholds, i, lvl.Min, lvl.Max)
		}
	}

	if c.MultiDomainPenalty.MinDomains <= 0 {
		return fmt.Errorf("%w: multi_domain_penalty.min_domains", ErrInvalidThresholds)
	}
	if c.MultiDomainPenalty.Multiplier <= 0 {
		return fmt.Errorf("%w: multi_domain_penalty.multiplier", ErrInvalidThresholds)
	}

	return nil
}
