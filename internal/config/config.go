package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultModel        = "claude-3-5-haiku-latest"
	DefaultConcurrency  = 4
	DefaultTimeoutSecs  = 30
	DefaultMaxDiffBytes = 32 * 1024

	EnvAPIKey       = "ANTHROPIC_API_KEY"
	EnvModel        = "GIT_HUD_MODEL"
	EnvConcurrency  = "GIT_HUD_CONCURRENCY"
	EnvTimeout      = "GIT_HUD_TIMEOUT"
	EnvMaxDiffBytes = "GIT_HUD_MAX_DIFF_BYTES"
	EnvDebug        = "GIT_HUD_DEBUG"

	ConfigDirName  = ".git-hud"
	ConfigFileName = "config.json"
)

// Config holds everything the pipeline needs for one run. The API key is read
// once here and shared read-only across workers.
type Config struct {
	APIKey         string `json:"api_key,omitempty"`
	Model          string `json:"model,omitempty"`
	Concurrency    int    `json:"concurrency,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	MaxDiffBytes   int    `json:"max_diff_bytes,omitempty"`
	Debug          bool   `json:"debug,omitempty"`
}

// IsConfigured returns true if the API key is set.
func (c *Config) IsConfigured() bool {
	return c.APIKey != ""
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ConfigDirName, ConfigFileName)
}

// LoadFile reads the config file from disk. A missing file is not an error.
func LoadFile() (*Config, error) {
	path := ConfigPath()
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load builds the run configuration from environment variables, falling back
// to the config file, then to defaults. Environment always wins.
func Load() *Config {
	cfg := &Config{
		APIKey: os.Getenv(EnvAPIKey),
		Model:  os.Getenv(EnvModel),
		Debug:  os.Getenv(EnvDebug) == "1" || os.Getenv(EnvDebug) == "true",
	}
	cfg.Concurrency = envInt(EnvConcurrency, 0)
	cfg.TimeoutSeconds = envInt(EnvTimeout, 0)
	cfg.MaxDiffBytes = envInt(EnvMaxDiffBytes, 0)

	if fc, err := LoadFile(); err == nil && fc != nil {
		if cfg.APIKey == "" {
			cfg.APIKey = fc.APIKey
		}
		if cfg.Model == "" {
			cfg.Model = fc.Model
		}
		if cfg.Concurrency == 0 {
			cfg.Concurrency = fc.Concurrency
		}
		if cfg.TimeoutSeconds == 0 {
			cfg.TimeoutSeconds = fc.TimeoutSeconds
		}
		if cfg.MaxDiffBytes == 0 {
			cfg.MaxDiffBytes = fc.MaxDiffBytes
		}
		if fc.Debug {
			cfg.Debug = true
		}
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSecs
	}
	if cfg.MaxDiffBytes <= 0 {
		cfg.MaxDiffBytes = DefaultMaxDiffBytes
	}

	return cfg
}

func envInt(name string, fallback int) int {
	s := os.Getenv(name)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// MaskAPIKey returns a masked version of the API key for display.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "***"
	}
	return "***..." + key[len(key)-4:]
}
