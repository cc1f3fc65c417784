package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/health-risk-server/internal/domain"
)

func TestLoadThresholds_Defaults(t *testing.T) {
	cfg, err := LoadThresholds("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 0.30, cfg.RiskWeights[domain.Cardiovascular])
	assert.Len(t, cfg.RiskLevels, 5)
}

func TestLoadThresholds_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")

	// Override only the LDL table and the penalty multiplier; everything
	// else must keep its default.
	content := []byte(`
cardiovascular:
  ldl_bands:
    - threshold: 200
      weight: 50
multi_domain_penalty:
  threshold_score: 70
  min_domains: 2
  multiplier: 1.25
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadThresholds(path)
	require.NoError(t, err)

	require.Len(t, cfg.Cardiovascular.LDLBands, 1)
	assert.Equal(t, 200.0, cfg.Cardiovascular.LDLBands[0].Threshold)
	assert.Equal(t, 1.25, cfg.MultiDomainPenalty.Multiplier)

	// Untouched tables survive the overlay.
	assert.NotEmpty(t, cfg.Metabolic.GlucoseBands)
	assert.Equal(t, 0.25, cfg.RiskWeights[domain.Metabolic])
}

func TestLoadThresholds_MissingFile(t *testing.T) {
	_, err := LoadThresholds("/nonexistent/thresholds.yaml")
	require.Error(t, err)
}

func TestLoadThresholds_InvalidOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")

	// A structurally broken override must be rejected, not silently scored.
	content := []byte(`
multi_domain_penalty:
  threshold_score: 70
  min_domains: 0
  multiplier: 1.15
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := LoadThresholds(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidThresholds)
}
