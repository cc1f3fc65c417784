package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/health-risk-server/internal/domain"
)

func TestHematologicScorer_CalculateScore(t *testing.T) {
	scorer := NewHematologicScorer(domain.DefaultThresholdConfig())

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
			name: "Normal CBC",
			rec: domain.PatientRecord{
				domain.MarkerHemoglobin: 15,
				domain.MarkerWBC:        6.5,
				domain.MarkerPlatelets:  250,
				domain.MarkerMCV:        90,
				domain.MarkerGender:     1,
			},
			want: 0,
		},
		{
			name: "Mild anemia male",
			rec: domain.PatientRecord{
				domain.MarkerHemoglobin: 12.5,
				domain.MarkerGender:     1,
			},
			want: 15, // deficit -0.5
		},
		{
			name: "Same hemoglobin is normal for a female",
			rec: domain.PatientRecord{
				domain.MarkerHemoglobin: 12.5,
				domain.MarkerGender:     2,
			},
			want: 0,
		},
		{
			name: "Severe anemia",
			rec: domain.PatientRecord{
				domain.MarkerHemoglobin: 9,
				domain.MarkerGender:     1,
			},
			want: 40, // deficit -4
		},
		{
			name: "Polycythemia",
			rec: domain.PatientRecord{
				domain.MarkerHemoglobin: 19,
				domain.MarkerGender:     1,
			},
			want: 10,
		},
		{
			name: "Leukopenia with thrombocytopenia",
			rec: domain.PatientRecord{
				domain.MarkerWBC:       2.5,
				domain.MarkerPlatelets: 80,
			},
			want: 45, // 25 + 20
		},
		{
			name: "Leukocytosis with thrombocytosis",
			rec: domain.PatientRecord{
				domain.MarkerWBC:       16,
				domain.MarkerPlatelets: 500,
			},
			want: 40, // 25 + 15
		},
		{
			name: "Microcytosis alone",
			rec:  domain.PatientRecord{domain.MarkerMCV: 75},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.CalculateScore(tt.rec))
		})
	}
}

func TestHematologicScorer_ClassifyAnemiaType(t *testing.T) {
	scorer := NewHematologicScorer(domain.DefaultThresholdConfig())

	t.Run("Missing hemoglobin", func(t *testing.T) {
		_, ok := scorer.ClassifyAnemiaType(domain.PatientRecord{domain.MarkerGender: 1})
		assert.False(t, ok)
	})

	t.Run("Missing gender", func(t *testing.T) {
		_, ok := scorer.ClassifyAnemiaType(domain.PatientRecord{domain.MarkerHemoglobin: 11})
		assert.False(t, ok)
	})

	t.Run("No anemia", func(t *testing.T) {
		class, ok := scorer.ClassifyAnemiaType(domain.PatientRecord{
			domain.MarkerHemoglobin: 15,
			domain.MarkerGender:     1,
		})
		require.True(t, ok)
		assert.Empty(t, class)
	})

	t.Run("Anemia with missing MCV", func(t *testing.T) {
		class, ok := scorer.ClassifyAnemiaType(domain.PatientRecord{
			domain.MarkerHemoglobin: 11,
			domain.MarkerGender:     1,
		})
		require.True(t, ok)
		assert.Equal(t, AnemiaTypeUnknown, class)
	})

	tests := []struct {
		name string
		mcv  float64
		want string
	}{
		{"Microcytic", 75, AnemiaMicrocytic},
		{"Normocytic", 90, AnemiaNormocytic},
		{"Normocytic at upper bound", 100, AnemiaNormocytic},
		{"Macrocytic", 105, AnemiaMacrocytic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, ok := scorer.ClassifyAnemiaType(domain.PatientRecord{
				domain.MarkerHemoglobin: 11,
				domain.MarkerMCV:        tt.mcv,
				domain.MarkerGender:     1,
			})
			require.True(t, ok)
			assert.Equal(t, tt.want, class)
		})
	}
}

func TestHematologicScorer_IdentifyRiskFactors(t *testing.T) {
	scorer := NewHematologicScorer(domain.DefaultThresholdConfig())

	t.Run("Severe pancytopenia pattern", func(t *testing.T) {
		factors := scorer.IdentifyRiskFactors(domain.PatientRecord{
			domain.MarkerHemoglobin: 8,
			domain.MarkerWBC:        2.5,
			domain.MarkerPlatelets:  40,
			domain.MarkerGender:     1,
		})
		require.Len(t, factors, 3)
		assert.Equal(t, domain.SeverityCritical, factors[0].Severity)
		assert.Contains(t, factors[0].Description, "severe anemia")
		assert.Equal(t, domain.SeverityVeryHigh, factors[1].Severity)
		assert.Equal(t, domain.SeverityCritical, factors[2].Severity)
	})

	t.Run("Macrocytosis finding", func(t *testing.T) {
		factors := scorer.IdentifyRiskFactors(domain.PatientRecord{domain.MarkerMCV: 108})
		require.Len(t, factors, 1)
		assert.Equal(t, "macrocytic_anemia", factors[0].Category)
		assert.Contains(t, factors[0].Description, "B12/folate")
	})
}

func TestHematologicScorer_GenerateRecommendations(t *testing.T) {
	scorer := NewHematologicScorer(domain.DefaultThresholdConfig())

	t.Run("Microcytic anemia adds iron note", func(t *testing.T) {
		recs := scorer.GenerateRecommendations(domain.PatientRecord{
			domain.MarkerHemoglobin: 10,
			domain.MarkerMCV:        72,
			domain.MarkerGender:     2,
		}, 50)
		assert.True(t, containsSubstring(recs, "iron supplementation"))
	})

	t.Run("Severe thrombocytopenia adds bleeding warning", func(t *testing.T) {
		recs := scorer.GenerateRecommendations(domain.PatientRecord{domain.MarkerPlatelets: 30}, 40)
		assert.True(t, containsSubstring(recs, "bleeding risk"))
	})
}

func TestHematologicScorer_SeverityMonotonicity(t *testing.T) {
	scorer := NewHematologicScorer(domain.DefaultThresholdConfig())
	base := domain.PatientRecord{domain.MarkerGender: 1, domain.MarkerAge: 50}

	tests := []struct {
		name   string
		marker string
		steps  []float64 // ordered least to most severe
	}{
		{"Hemoglobin falling", domain.MarkerHemoglobin, []float64{15, 12.5, 10.5, 9.5}},
		{"WBC falling", domain.MarkerWBC, []float64{5, 3.5, 2.5}},
		{"WBC rising", domain.MarkerWBC, []float64{8, 12, 16}},
		{"Platelets falling", domain.MarkerPlatelets, []float64{200, 120, 80, 40}},
		{"Platelets rising", domain.MarkerPlatelets, []float64{200, 500}},
		{"MCV falling", domain.MarkerMCV, []float64{90, 75, 65}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeverityMonotonic(t, scorer, base, tt.marker, tt.steps)
		})
	}
}
