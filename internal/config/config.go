// Package config loads and saves the dashboard's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Story    StoryConfig    `toml:"story"`
	Sessions SessionsConfig `toml:"sessions"`
	App      AppConfig      `toml:"app"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int     `toml:"port"`            // Listen port
	OpenBrowser    bool    `toml:"open_browser"`    // Open the dashboard on start
	FrontendURL    string  `toml:"frontend_url"`    // Allowed CORS origin of the web client
	RequestTimeout string  `toml:"request_timeout"` // Per-request timeout (e.g., "30s")
	RateLimit      float64 `toml:"rate_limit"`      // Requests per second, 0 disables limiting
	RateBurst      int     `toml:"rate_burst"`      // Burst size for the limiter
}

// DataConfig contains dataset storage settings.
type DataConfig struct {
	DBPath     string `toml:"db_path"`     // SQLite database path
	ImportDir  string `toml:"import_dir"`  // Directory with the CSV datasets
	AutoImport bool   `toml:"auto_import"` // Import from ImportDir when the database is empty
}

// StoryConfig contains the storytelling settings.
type StoryConfig struct {
	TrackedCharacter string   `toml:"tracked_character"` // Character whose fillers are counted
	Characters       []string `toml:"characters"`        // Character selector options
	DialogueWindow   int      `toml:"dialogue_window"`   // Rows shown per character
	ProgressStep     int      `toml:"progress_step"`     // Progress per qualifying click
	MaxProgress      int      `toml:"max_progress"`      // Progress cap
}

// SessionsConfig contains viewer session settings.
type SessionsConfig struct {
	IdleTTL       string `toml:"idle_ttl"`       // Idle time before a session expires (e.g., "30m")
	MaxSessions   int    `toml:"max_sessions"`   // Concurrent session cap
	SweepInterval string `toml:"sweep_interval"` // How often expired sessions are removed
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultCharacters are the character selector options.
var DefaultCharacters = []string{"Ross", "Rachel", "Joey", "Chandler", "Monica", "Phoebe", "Frank Jr."}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8050,
			OpenBrowser:    false,
			FrontendURL:    "http://localhost:5173",
			RequestTimeout: "30s",
			RateLimit:      20,
			RateBurst:      40,
		},
		Data: DataConfig{
			DBPath:     defaultDataPath("dashboard.db"),
			ImportDir:  "data",
			AutoImport: true,
		},
		Story: StoryConfig{
			TrackedCharacter: "Ross",
			Characters:       append([]string(nil), DefaultCharacters...),
			DialogueWindow:   301,
			ProgressStep:     10,
			MaxProgress:      100,
		},
		Sessions: SessionsConfig{
			IdleTTL:       "30m",
			MaxSessions:   1000,
			SweepInterval: "1m",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configDir returns the directory holding the configuration and database.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".fine-dashboard"), nil
}

func defaultDataPath(name string) string {
	dir, err := configDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

// DefaultPath returns the path to the configuration file.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration at path. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.Server.RequestTimeout, err)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting: %d", c.Server.RateBurst)
	}

	if c.Data.DBPath == "" {
		return errors.New("database path is required")
	}

	if c.Story.TrackedCharacter == "" {
		return errors.New("tracked character is required")
	}
	if c.Story.DialogueWindow <= 0 {
		return fmt.Errorf("dialogue window must be positive: %d", c.Story.DialogueWindow)
	}
	if c.Story.ProgressStep <= 0 {
		return fmt.Errorf("progress step must be positive: %d", c.Story.ProgressStep)
	}
	if c.Story.MaxProgress < c.Story.ProgressStep {
		return fmt.Errorf("max progress %d is below the progress step %d", c.Story.MaxProgress, c.Story.ProgressStep)
	}

	if _, err := time.ParseDuration(c.Sessions.IdleTTL); err != nil {
		return fmt.Errorf("invalid session idle TTL %q: %w", c.Sessions.IdleTTL, err)
	}
	if _, err := time.ParseDuration(c.Sessions.SweepInterval); err != nil {
		return fmt.Errorf("invalid sweep interval %q: %w", c.Sessions.SweepInterval, err)
	}
	if c.Sessions.MaxSessions < 0 {
		return fmt.Errorf("max sessions cannot be negative: %d", c.Sessions.MaxSessions)
	}

	return nil
}

// GetRequestTimeout returns the request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}

// GetIdleTTL returns the session idle TTL as a duration.
func (c *Config) GetIdleTTL() (time.Duration, error) {
	return time.ParseDuration(c.Sessions.IdleTTL)
}

// GetSweepInterval returns the session sweep interval as a duration.
func (c *Config) GetSweepInterval() (time.Duration, error) {
	return time.ParseDuration(c.Sessions.SweepInterval)
}
