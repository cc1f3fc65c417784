package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/health-risk-server/internal/domain"
)

func TestRenalScorer_CalculateScore(t *testing.T) {
	scorer := NewRenalScorer(domain.DefaultThresholdConfig())

	tests := []struct {
		name string
		rec  domain.PatientRecord
		want float64
	}{
		{
			name: "Empty record scores zero",
			rec:  domain.PatientRecord{},
			want: 0,
		},
		{
			name: "Normal kidney function",
			rec: domain.PatientRecord{
				domain.MarkerEGFR: 100,
				domain.MarkerACR:  10,
			},
			want: 0,
		},
		{
			name: "Mildly decreased eGFR",
			rec:  domain.PatientRecord{domain.MarkerEGFR: 75},
			want: 10,
		},
		{
			name: "Moderate CKD with microalbuminuria",
			rec: domain.PatientRecord{
				domain.MarkerEGFR: 50,
				domain.MarkerACR:  80,
			},
			want: 45, // 25 + 20
		},
		{
			name: "Kidney failure with macroalbuminuria",
			rec: domain.PatientRecord{
				domain.MarkerEGFR: 10,
				domain.MarkerACR:  400,
			},
			want: 100, // 60 + 40
		},
		{
			name: "Elderly multiplier",
			rec: domain.PatientRecord{
				domain.MarkerEGFR: 50,
				domain.MarkerAge:  70,
			},
			want: 27.5, // 25 * 1.1
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.CalculateScore(tt.rec))
		})
	}
}

func TestRenalScorer_AssessCKDStage(t *testing.T) {
	scorer := NewRenalScorer(domain.DefaultThresholdConfig())

	tests := []struct {
		name         string
		rec          domain.PatientRecord
		wantGFR      string
		wantAlbumin  string
		wantStage    string
		wantCategory string
	}{
		{
			name:         "Normal function",
			rec:          domain.PatientRecord{domain.MarkerEGFR: 95, domain.MarkerACR: 10},
			wantGFR:      "G1",
			wantAlbumin:  "A1",
			wantStage:    "G1A1",
			wantCategory: "low",
		},
		{
			name:         "G3a with microalbuminuria",
			rec:          domain.PatientRecord{domain.MarkerEGFR: 50, domain.MarkerACR: 80},
			wantGFR:      "G3a",
			wantAlbumin:  "A2",
			wantStage:    "G3aA2",
			wantCategory: "high",
		},
		{
			name:         "Kidney failure with macroalbuminuria",
			rec:          domain.PatientRecord{domain.MarkerEGFR: 12, domain.MarkerACR: 500},
			wantGFR:      "G5",
			wantAlbumin:  "A3",
			wantStage:    "G5A3",
			wantCategory: "very_high",
		},
		{
			name:         "Missing ACR leaves stage unknown",
			rec:          domain.PatientRecord{domain.MarkerEGFR: 50},
			wantGFR:      "G3a",
			wantAlbumin:  "unknown",
			wantStage:    "unknown",
			wantCategory: "unknown",
		},
		{
			name:         "Missing both markers",
			rec:          domain.PatientRecord{},
			wantGFR:      "unknown",
			wantAlbumin:  "unknown",
			wantStage:    "unknown",
			wantCategory: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := scorer.AssessCKDStage(tt.rec)
			assert.Equal(t, tt.wantGFR, stage.GFRStage)
			assert.Equal(t, tt.wantAlbumin, stage.AlbuminuriaStage)
			assert.Equal(t, tt.wantStage, stage.CKDStage)
			assert.Equal(t, tt.wantCategory, stage.RiskCategory)
		})
	}
}

func TestRenalScorer_IdentifyRiskFactors(t *testing.T) {
	scorer := NewRenalScorer(domain.DefaultThresholdConfig())

	t.Run("eGFR and ACR findings", func(t *testing.T) {
		factors := scorer.IdentifyRiskFactors(domain.PatientRecord{
			domain.MarkerEGFR: 25,
			domain.MarkerACR:  350,
		})
		require.Len(t, factors, 2)
		assert.Equal(t, domain.SeverityVeryHigh, factors[0].Severity)
		assert.Contains(t, factors[0].Description, "G4")
		assert.Equal(t, "macroalbuminuria", factors[1].Category)
	})

	t.Run("Creatinine above gender limit is supplementary", func(t *testing.T) {
		factors := scorer.IdentifyRiskFactors(domain.PatientRecord{
			domain.MarkerCreatinine: 1.2,
			domain.MarkerGender:     2,
		})
		require.Len(t, factors, 1)
		assert.Equal(t, "elevated_creatinine", factors[0].Category)
	})

	t.Run("Same creatinine passes for a male", func(t *testing.T) {
		factors := scorer.IdentifyRiskFactors(domain.PatientRecord{
			domain.MarkerCreatinine: 1.2,
			domain.MarkerGender:     1,
		})
		assert.Empty(t, factors)
	})
}

func TestRenalScorer_GenerateRecommendations(t *testing.T) {
	scorer := NewRenalScorer(domain.DefaultThresholdConfig())

	t.Run("Confirmed CKD note", func(t *testing.T) {
		recs := scorer.GenerateRecommendations(domain.PatientRecord{
			domain.MarkerEGFR: 50,
			domain.MarkerACR:  80,
		}, 45)
		assert.True(t, containsSubstring(recs, "CKD confirmed"))
	})

	t.Run("Urgent tier at critical score", func(t *testing.T) {
		recs := scorer.GenerateRecommendations(domain.PatientRecord{}, 90)
		require.NotEmpty(t, recs)
		assert.Contains(t, recs[0], "URGENT")
	})
}

func TestRenalScorer_SeverityMonotonicity(t *testing.T) {
	scorer := NewRenalScorer(domain.DefaultThresholdConfig())
	base := domain.PatientRecord{domain.MarkerGender: 1, domain.MarkerAge: 50}

	tests := []struct {
		name   string
		marker string
		steps  []float64 // ordered least to most severe
	}{
		{"eGFR falling", domain.MarkerEGFR, []float64{95, 75, 50, 35, 20, 10}},
		{"ACR", domain.MarkerACR, []float64{10, 100, 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeverityMonotonic(t, scorer, base, tt.marker, tt.steps)
		})
	}
}
