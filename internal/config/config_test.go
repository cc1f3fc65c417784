package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	cfg := m.GetConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 50.0, cfg.Server.RateLimit)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "./data/assessments.db", cfg.Database.Path)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestNewManager_EnvOverride(t *testing.T) {
	t.Setenv("HEALTHRISK_SERVER_PORT", "9090")
	t.Setenv("HEALTHRISK_LOGGING_LEVEL", "debug")

	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Manager)
		wantErr string
	}{
		{
			name:    "invalid port",
			mutate:  func(m *Manager) { m.config.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "invalid rate limit",
			mutate:  func(m *Manager) { m.config.Server.RateLimit = 0 },
			wantErr: "invalid rate limit",
		},
		{
			name: "sqlite without path",
			mutate: func(m *Manager) {
				m.config.Database.Path = ""
			},
			wantErr: "sqlite database path is required",
		},
		{
			name: "postgres without URL",
			mutate: func(m *Manager) {
				m.config.Database.Driver = "postgres"
			},
			wantErr: "postgres database URL is required",
		},
		{
			name: "unsupported driver",
			mutate: func(m *Manager) {
				m.config.Database.Driver = "oracle"
			},
			wantErr: "unsupported database driver",
		},
		{
			name:    "invalid cache size",
			mutate:  func(m *Manager) { m.config.Cache.Size = -1 },
			wantErr: "invalid cache size",
		},
		{
			name:    "invalid log level",
			mutate:  func(m *Manager) { m.config.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager()
			require.NoError(t, err)

			tt.mutate(m)
			err = m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
