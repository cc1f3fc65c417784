package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandTable_WeightAtOrAbove(t *testing.T) {
	bands := BandTable{
		{Threshold: 190, Weight: 40},
		{Threshold: 160, Weight: 32},
		{Threshold: 130, Weight: 24},
		{Threshold: 100, Weight: 12},
	}

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"Below all bands", 99.9, 0},
		{"Exactly at lowest threshold", 100, 12},
		{"Mid band", 145, 24},
		{"Exactly at band boundary", 160, 32},
		{"Above all bands", 250, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bands.WeightAtOrAbove(tt.value))
		})
	}
}

func TestBandTable_WeightAbove(t *testing.T) {
	bands := BandTable{
		{Threshold: 5, Weight: 15},
		{Threshold: 4, Weight: 10},
		{Threshold: 3.5, Weight: 5},
	}

	// Strict comparison: landing exactly on a threshold matches the next
	// band down, not the threshold's own band.
	assert.Equal(t, 0.0, bands.WeightAbove(3.5))
	assert.Equal(t, 5.0, bands.WeightAbove(3.6))
	assert.Equal(t, 5.0, bands.WeightAbove(4.0))
	assert.Equal(t, 10.0, bands.WeightAbove(4.5))
	assert.Equal(t, 15.0, bands.WeightAbove(5.1))
}

func TestBandTable_WeightBelow(t *testing.T) {
	bands := BandTable{
		{Threshold: 15, Weight: 60},
		{Threshold: 30, Weight: 50},
		{Threshold: 45, Weight: 40},
		{Threshold: 60, Weight: 25},
		{Threshold: 90, Weight: 10},
	}

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"Kidney failure range", 10, 60},
		{"Exactly at severe boundary", 15, 50},
		{"Moderate range", 50, 25},
		{"Exactly at normal boundary", 90, 0},
		{"Normal", 110, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bands.WeightBelow(tt.value))
		})
	}
}

func TestAgeBands_MultiplierFor(t *testing.T) {
	bands := AgeBands{
		{MinAge: 65, Multiplier: 1.3},
		{MinAge: 55, Multiplier: 1.15},
		{MinAge: 45, Multiplier: 1.0},
		{MinAge: 0, Multiplier: 0.8},
	}

	assert.Equal(t, 0.8, bands.MultiplierFor(30, true))
	assert.Equal(t, 1.0, bands.MultiplierFor(45, true))
	assert.Equal(t, 1.15, bands.MultiplierFor(60, true))
	assert.Equal(t, 1.3, bands.MultiplierFor(80, true))
	assert.Equal(t, 1.0, bands.MultiplierFor(80, false), "missing age skips adjustment")
}

func TestGenderLimit_For(t *testing.T) {
	limit := GenderLimit{Male: 40, Female: 50}

	male := PatientRecord{MarkerGender: 1}
	female := PatientRecord{MarkerGender: 2}
	unknown := PatientRecord{}

	assert.Equal(t, 40.0, limit.For(male))
	assert.Equal(t, 50.0, limit.For(female))
	assert.Equal(t, 40.0, limit.For(unknown), "unknown gender uses male limit")
}

func TestPatientRecord_Value(t *testing.T) {
	rec := PatientRecord{
		MarkerLDL:     150,
		MarkerGlucose: math.NaN(),
	}

	v, ok := rec.Value(MarkerLDL)
	assert.True(t, ok)
	assert.Equal(t, 150.0, v)

	_, ok = rec.Value(MarkerGlucose)
	assert.False(t, ok, "NaN is treated as missing")

	_, ok = rec.Value(MarkerHDL)
	assert.False(t, ok, "absent key is missing")
}

func TestPatientRecord_Gender(t *testing.T) {
	tests := []struct {
		name string
		rec  PatientRecord
		want Gender
	}{
		{"Male coding", PatientRecord{MarkerGender: 1}, GenderMale},
		{"Female coding", PatientRecord{MarkerGender: 2}, GenderFemale},
		{"Missing marker", PatientRecord{}, GenderUnknown},
		{"Out of range coding", PatientRecord{MarkerGender: 7}, GenderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Gender())
		})
	}
}

func TestDefaultThresholdConfig_Valid(t *testing.T) {
	cfg := DefaultThresholdConfig()
	require.NoError(t, cfg.Validate())

	// Weights cover every domain and sum to 1.
	sum := 0.0
	for _, d := range DomainOrder {
		w, ok := cfg.RiskWeights[d]
		require.True(t, ok, "missing weight for %s", d)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Risk levels tile [0,100) without gaps.
	require.Len(t, cfg.RiskLevels, 5)
	assert.Equal(t, 0.0, cfg.RiskLevels[0].Min)
	for i := 1; i < len(cfg.RiskLevels); i++ {
		assert.Equal(t, cfg.RiskLevels[i-1].Max, cfg.RiskLevels[i].Min)
	}
	assert.Equal(t, 100.0, cfg.RiskLevels[len(cfg.RiskLevels)-1].Max)
}

func TestThresholdConfig_Validate_Errors(t *testing.T) {
	t.Run("Missing band table", func(t *testing.T) {
		cfg := DefaultThresholdConfig()
		cfg.Renal.EGFRBands = nil

		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingThresholds)
		assert.Contains(t, err.Error(), "egfr_bands")
	})

	t.Run("Missing domain weight", func(t *testing.T) {
		cfg := DefaultThresholdConfig()
		delete(cfg.RiskWeights, Hepatic)

		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingThresholds)
	})

	t.Run("Inverted risk level range", func(t *testing.T) {
		cfg := DefaultThresholdConfig()
		cfg.RiskLevels[2].Min, cfg.RiskLevels[2].Max = 60, 40

		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidThresholds)
	})

	t.Run("Bad penalty multiplier", func(t *testing.T) {
		cfg := DefaultThresholdConfig()
		cfg.MultiDomainPenalty.Multiplier = 0

		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidThresholds)
	})
}
