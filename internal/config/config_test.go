package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, "Ross", cfg.Story.TrackedCharacter)
	assert.Equal(t, 301, cfg.Story.DialogueWindow)
	assert.Equal(t, 10, cfg.Story.ProgressStep)
	assert.Equal(t, 100, cfg.Story.MaxProgress)
	assert.Equal(t, DefaultCharacters, cfg.Story.Characters)
	assert.NoError(t, cfg.Validate())

	// Defaults must not alias the package-level slice.
	cfg.Story.Characters[0] = "Gunther"
	assert.Equal(t, "Ross", DefaultCharacters[0])
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFrom_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9000

[story]
tracked_character = "Monica"

[sessions]
idle_ttl = "5m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "Monica", cfg.Story.TrackedCharacter)
	assert.Equal(t, 301, cfg.Story.DialogueWindow, "unset keys keep defaults")

	ttl, err := cfg.GetIdleTTL()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.App.DebugMode = true
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"request timeout", func(c *Config) { c.Server.RequestTimeout = "soon" }},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }},
		{"burst", func(c *Config) { c.Server.RateBurst = 0 }},
		{"db path", func(c *Config) { c.Data.DBPath = "" }},
		{"tracked character", func(c *Config) { c.Story.TrackedCharacter = "" }},
		{"window", func(c *Config) { c.Story.DialogueWindow = 0 }},
		{"step", func(c *Config) { c.Story.ProgressStep = 0 }},
		{"max below step", func(c *Config) { c.Story.MaxProgress = 5 }},
		{"idle ttl", func(c *Config) { c.Sessions.IdleTTL = "" }},
		{"sweep", func(c *Config) { c.Sessions.SweepInterval = "x" }},
		{"max sessions", func(c *Config) { c.Sessions.MaxSessions = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.RateLimit = 0
	cfg.Server.RateBurst = 0
	assert.NoError(t, cfg.Validate())
}
