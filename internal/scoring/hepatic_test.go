package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/health-risk-server/internal/domain"
)

func TestHepaticScorer_CalculateScore(t *testing.T) {
	scorer := NewHepaticScorer(domain.DefaultThresholdConfig())

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
			name: "Normal liver panel",
			rec: domain.PatientRecord{
				domain.MarkerAST:     22,
				domain.MarkerALT:     25,
				domain.MarkerGender:  1,
				domain.MarkerAlbumin: 4.2,
			},
			want: 0,
		},
		{
			name: "AST at exactly the male limit does not score",
			rec: domain.PatientRecord{
				domain.MarkerAST:    40,
				domain.MarkerGender: 1,
			},
			want: 0,
		},
		{
			name: "Same AST scores for a female",
			rec: domain.PatientRecord{
				domain.MarkerAST:    40,
				domain.MarkerGender: 2,
			},
			want: 8, // 40/32 = 1.25x the female limit
		},
		{
			name: "Transaminases above twice the limit",
			rec: domain.PatientRecord{
				domain.MarkerAST:    90,
				domain.MarkerALT:    95,
				domain.MarkerGender: 1,
			},
			want: 33, // 15 + 18
		},
		{
			name: "High FIB-4 plus synthetic dysfunction",
			rec: domain.PatientRecord{
				domain.MarkerFIB4:      4.0,
				domain.MarkerAlbumin:   3.0,
				domain.MarkerBilirubin: 1.5,
			},
			want: 45, // 35 + 5 + 5
		},
		{
			name: "AST/ALT ratio above one",
			rec:  domain.PatientRecord{domain.MarkerASTALTRatio: 1.4},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.CalculateScore(tt.rec))
		})
	}
}

func TestHepaticScorer_AssessFibrosisRisk(t *testing.T) {
	scorer := NewHepaticScorer(domain.DefaultThresholdConfig())

	tests := []struct {
		name string
		rec  domain.PatientRecord
		want string
	}{
		{"Missing FIB-4", domain.PatientRecord{domain.MarkerALT: 80}, FibrosisRiskInsufficient},
		{"Low risk", domain.PatientRecord{domain.MarkerFIB4: 1.0}, FibrosisRiskLow},
		{"Exactly at low cutoff is still low", domain.PatientRecord{domain.MarkerFIB4: 1.45}, FibrosisRiskLow},
		{"Indeterminate zone", domain.PatientRecord{domain.MarkerFIB4: 2.0}, FibrosisRiskIntermediate},
		{"Exactly at high cutoff is intermediate", domain.PatientRecord{domain.MarkerFIB4: 3.25}, FibrosisRiskIntermediate},
		{"High risk", domain.PatientRecord{domain.MarkerFIB4: 4.0}, FibrosisRiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.AssessFibrosisRisk(tt.rec))
		})
	}
}

func TestHepaticScorer_IdentifyRiskFactors(t *testing.T) {
	scorer := NewHepaticScorer(domain.DefaultThresholdConfig())

	t.Run("Marked transaminase elevation", func(t *testing.T) {
		factors := scorer.IdentifyRiskFactors(domain.PatientRecord{
			domain.MarkerAST:    130,
			domain.MarkerALT:    50,
			domain.MarkerGender: 1,
		})
		require.Len(t, factors, 2)
		assert.Equal(t, domain.SeverityVeryHigh, factors[0].Severity, "AST above twice the limit")
		assert.Equal(t, domain.SeverityHigh, factors[1].Severity)
	})

	t.Run("FIB-4, ratio, albumin and bilirubin findings", func(t *testing.T) {
		factors := scorer.IdentifyRiskFactors(domain.PatientRecord{
			domain.MarkerFIB4:        3.5,
			domain.MarkerASTALTRatio: 1.3,
			domain.MarkerAlbumin:     3.2,
			domain.MarkerBilirubin:   1.4,
		})
		require.Len(t, factors, 4)

		categories := make([]string, 0, len(factors))
		for _, f := range factors {
			categories = append(categories, f.Category)
		}
		assert.Contains(t, categories, "advanced_fibrosis")
		assert.Contains(t, categories, "chronic_liver_disease")
		assert.Contains(t, categories, "hepatic_synthetic_dysfunction")
		assert.Contains(t, categories, "hyperbilirubinemia")
	})
}

func TestHepaticScorer_GenerateRecommendations(t *testing.T) {
	scorer := NewHepaticScorer(domain.DefaultThresholdConfig())

	t.Run("High FIB-4 escalates despite moderate score", func(t *testing.T) {
		recs := scorer.GenerateRecommendations(domain.PatientRecord{domain.MarkerFIB4: 4.0}, 45)
		require.NotEmpty(t, recs)
		assert.Contains(t, recs[0], "URGENT")
	})

	t.Run("Elevated ALT with low FIB-4 suggests NAFLD", func(t *testing.T) {
		recs := scorer.GenerateRecommendations(domain.PatientRecord{
			domain.MarkerALT:  60,
			domain.MarkerFIB4: 1.0,
		}, 15)
		assert.True(t, containsSubstring(recs, "NAFLD"))
	})
}

func TestHepaticScorer_SeverityMonotonicity(t *testing.T) {
	scorer := NewHepaticScorer(domain.DefaultThresholdConfig())
	base := domain.PatientRecord{domain.MarkerGender: 1, domain.MarkerAge: 50}

	tests := []struct {
		name   string
		marker string
		steps  []float64 // ordered least to most severe
	}{
		{"AST", domain.MarkerAST, []float64{35, 50, 90, 130}},
		{"ALT", domain.MarkerALT, []float64{35, 50, 90, 130}},
		{"FIB-4", domain.MarkerFIB4, []float64{1.0, 2.0, 4.0}},
		{"AST/ALT ratio", domain.MarkerASTALTRatio, []float64{0.8, 1.5, 2.5}},
		{"Albumin falling", domain.MarkerAlbumin, []float64{4.0, 3.0}},
		{"Bilirubin", domain.MarkerBilirubin, []float64{0.8, 2.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeverityMonotonic(t, scorer, base, tt.marker, tt.steps)
		})
	}
}
