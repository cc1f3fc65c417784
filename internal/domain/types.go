// Package domain contains the core business entities and types for composite
// health-risk assessment over laboratory and biometric panels.
//
// Marker codes follow the NHANES laboratory variable naming convention
// (e.g. LBDLDL for LDL cholesterol, LBXGLU for fasting glucose) so that
// preprocessed survey extracts can be scored without renaming columns.
package domain

import (
	"math"
)

// DomainKey identifies one of the five organ-system risk domains.
type DomainKey string

const (
	Cardiovascular DomainKey = "cardiovascular"
	Metabolic      DomainKey = "metabolic"
	Renal          DomainKey = "renal"
	Hepatic        DomainKey = "hepatic"
	Hematologic    DomainKey = "hematologic"
)

// DomainOrder is the fixed evaluation and reporting order for the five
// domains. Alerts and domain score maps always follow this order.
var DomainOrder = []DomainKey{Cardiovascular, Metabolic, Renal, Hepatic, Hematologic}

// DisplayName returns the human-readable domain name used in alerts.
func (d DomainKey) DisplayName() string {
	switch d {
	case Cardiovascular:
		return "Cardiovascular"
	case Metabolic:
		return "Metabolic"
	case Renal:
		return "Renal"
	case Hepatic:
		return "Hepatic"
	case Hematologic:
		return "Hematologic"
	default:
		return "Unknown"
	}
}

// IsValid reports whether the domain key is one of the five fixed domains.
func (d DomainKey) IsValid() bool {
	switch d {
	case Cardiovascular, Metabolic, Renal, Hepatic, Hematologic:
		return true
	default:
		return false
	}
}

func (d DomainKey) String() string {
	return string(d)
}

// RiskLevel represents the composite risk classification.
type RiskLevel string

const (
	RiskOptimal  RiskLevel = "OPTIMAL"
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// IsValid reports whether the risk level is a known classification.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskOptimal, RiskLow, RiskModerate, RiskHigh, RiskCritical:
		return true
	default:
		return false
	}
}

func (r RiskLevel) String() string {
	return string(r)
}

// Severity tags an individual abnormal marker finding.
type Severity string

const (
	SeverityBorderline Severity = "borderline"
	SeverityModerate   Severity = "moderate"
	SeverityHigh       Severity = "high"
	SeverityVeryHigh   Severity = "very_high"
	SeverityCritical   Severity = "critical"
)

func (s Severity) String() string {
	return string(s)
}

// AlertSeverity tags a whole-domain alert. A domain scoring at or above the
// alert threshold emits HIGH; at or above the critical threshold, CRITICAL.
type AlertSeverity string

const (
	AlertHigh     AlertSeverity = "HIGH"
	AlertCritical AlertSeverity = "CRITICAL"
)

// Gender follows the NHANES RIAGENDR coding: 1=male, 2=female.
type Gender int

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

// Marker codes recognized by the scoring engine. Derived fields (eGFR,
// HOMA_IR, FIB4 and the two ratios) are computed by the preprocessing
// pipeline and must already be present on the record.
const (
	MarkerGender        = "RIAGENDR"
	MarkerAge           = "RIDAGEYR"
	MarkerTotalChol     = "LBXTC"
	MarkerLDL           = "LBDLDL"
	MarkerHDL           = "LBDHDD"
	MarkerTriglycerides = "LBXTR"
	MarkerTCHDLRatio    = "TC_HDL_ratio"
	MarkerGlucose       = "LBXGLU"
	MarkerHbA1c         = "LBXGH"
	MarkerInsulin       = "LBXIN"
	MarkerHOMAIR        = "HOMA_IR"
	MarkerCreatinine    = "LBXSCR"
	MarkerEGFR          = "eGFR"
	MarkerACR           = "ACR"
	MarkerAST           = "LBXSASSI"
	MarkerALT           = "LBXSGTSI"
	MarkerFIB4          = "FIB4"
	MarkerASTALTRatio   = "AST_ALT_ratio"
	MarkerAlbumin       = "LBXSAL"
	MarkerBilirubin     = "LBXSTB"
	MarkerHemoglobin    = "LBXHGB"
	MarkerWBC           = "LBXWBCSI"
	MarkerPlatelets     = "LBXPLTSI"
	MarkerMCV           = "LBXMCVSI"
)

// PatientRecord is an immutable mapping from marker code to measured value.
// A missing key is the missing-value state: scorers contribute zero for the
// marker and continue, never failing on absent fields.
type PatientRecord map[string]float64

// Value returns the marker value and whether it is present. NaN values are
// treated as missing so that records converted from float matrices with NaN
// sentinels behave the same as records with absent keys.
func (p PatientRecord) Value(code string) (float64, bool) {
	v, ok := p[code]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Has reports whether the marker is present on the record.
func (p PatientRecord) Has(code string) bool {
	_, ok := p.Value(code)
	return ok
}

// Age returns the patient age in years and whether it is present.
func (p PatientRecord) Age() (float64, bool) {
	return p.Value(MarkerAge)
}

// Gender returns the coded gender. Records with no gender marker, or with a
// value outside the 1/2 coding, report GenderUnknown; threshold selection
// then falls back to the male reference set, which is the documented default
// for this engine.
func (p PatientRecord) Gender() Gender {
	v, ok := p.Value(MarkerGender)
	if !ok {
		return GenderUnknown
	}
	switch int(v) {
	case 1:
		return GenderMale
	case 2:
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// IsFemale reports whether the record codes a female patient. Unknown gender
// is treated as male for threshold selection.
func (p PatientRecord) IsFemale() bool {
	return p.Gender() == GenderFemale
}
