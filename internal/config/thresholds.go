package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/health-risk-server/internal/domain"
)

// LoadThresholds builds the clinical threshold set. With an empty path the
// built-in defaults are returned; otherwise the YAML file at path is overlaid
// onto the defaults, so an override file only needs to name the tables it
// changes. The merged result is validated fail-fast: a structurally broken
// threshold file aborts startup rather than silently scoring with partial
// tables.
func LoadThresholds(path string) (*domain.ThresholdConfig, error) {
	cfg := domain.DefaultThresholdConfig()
	if path == "" {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read thresholds file %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse thresholds file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("thresholds file %s: %w", path, err)
	}
	return cfg, nil
}
