package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("ASSETGATE_SECRET", "s3cret")

	testCases := []struct {
		name        string
		content     string
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults applied",
			content: `
access_secret: topsecret
`,
			check: func(t *testing.T, cfg *Config) {
				require.Equal(t, ":8080", cfg.Listen)
				require.Equal(t, "data", cfg.DataDir)
				require.Equal(t, LogLevelInfo, cfg.LogLevel)
				require.Equal(t, 12*time.Hour, cfg.Session.TTL.Duration())
			},
		},
		{
			name: "env expansion",
			content: `
access_secret: ${ASSETGATE_SECRET}
listen: ":9090"
log_level: debug
session:
  ttl: 1h
  secure_cookie: true
`,
			check: func(t *testing.T, cfg *Config) {
				require.Equal(t, "s3cret", cfg.AccessSecret)
				require.Equal(t, ":9090", cfg.Listen)
				require.Equal(t, time.Hour, cfg.Session.TTL.Duration())
				require.True(t, cfg.Session.SecureCookie)
			},
		},
		{
			name:        "missing secret",
			content:     `listen: ":9090"`,
			expectError: true,
		},
		{
			name: "bad log level",
			content: `
access_secret: topsecret
log_level: verbose
`,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fileName := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t, os.WriteFile(fileName, []byte(tc.content), 0o600))

			cfg, err := Load(fileName)
			if tc.expectError {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
