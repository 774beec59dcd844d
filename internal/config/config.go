// Package config loads GraphChat settings. Precedence, lowest to
// highest: built-in defaults, the YAML config file, GRAPHCHAT_*
// environment variables, command-line flags (applied by the caller).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig locates the Graph RAG backend.
type ServerConfig struct {
	// BaseURL is the full versioned prefix, e.g.
	// http://localhost:8000/api/v1.
	BaseURL string `yaml:"base_url"`
	// Timeout bounds one round trip.
	Timeout time.Duration `yaml:"timeout"`
}

// UnmarshalYAML accepts Go duration strings ("30s", "2m") for timeout,
// which yaml.v3 does not decode into time.Duration on its own. Absent
// fields keep whatever defaults are already set.
func (s *ServerConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.BaseURL != "" {
		s.BaseURL = raw.BaseURL
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("server.timeout: %w", err)
		}
		s.Timeout = d
	}
	return nil
}

// QueryConfig tunes query submission.
type QueryConfig struct {
	// TopK is the number of entities the backend retrieves per query.
	TopK int `yaml:"top_k"`
}

// UIConfig holds presentation preferences.
type UIConfig struct {
	// Theme is "light", "dark", or "auto".
	Theme string `yaml:"theme"`
	// Greeting overrides the seeded assistant greeting.
	Greeting string `yaml:"greeting"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Debug raises the level from info to debug.
	Debug bool `yaml:"debug"`
	// File receives TUI-mode logs; empty means <config dir>/graphchat.log.
	File string `yaml:"file"`
}

// Config is the full settings tree.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Query  QueryConfig  `yaml:"query"`
	UI     UIConfig     `yaml:"ui"`
	Log    LogConfig    `yaml:"log"`
}

// DefaultGreeting seeds every new conversation.
const DefaultGreeting = "Hello! Ask me anything about the knowledge graph, for example: \"Who is Barack Obama?\""

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8000/api/v1",
			Timeout: 60 * time.Second,
		},
		Query: QueryConfig{TopK: 15},
		UI: UIConfig{
			Theme:    "auto",
			Greeting: DefaultGreeting,
		},
	}
}

// DefaultPath returns the conventional config file location,
// ~/.graphchat/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".graphchat", "config.yaml")
}

// Dir returns the directory holding the config file and log output.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".graphchat")
}

// Load builds the effective config from defaults, the file at path (a
// missing file is fine; a malformed one is an error), and the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays GRAPHCHAT_* variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GRAPHCHAT_SERVER"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("GRAPHCHAT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.Timeout = d
		}
	}
	if v := os.Getenv("GRAPHCHAT_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Query.TopK = k
		}
	}
	if v := os.Getenv("GRAPHCHAT_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("GRAPHCHAT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Debug = b
		}
	}
}

// Validate rejects settings the session cannot run with.
func (c Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url must not be empty")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Query.TopK < 1 || c.Query.TopK > 50 {
		return fmt.Errorf("query.top_k must be in [1, 50], got %d", c.Query.TopK)
	}
	switch c.UI.Theme {
	case "light", "dark", "auto":
	default:
		return fmt.Errorf("ui.theme must be light, dark, or auto, got %q", c.UI.Theme)
	}
	return nil
}
