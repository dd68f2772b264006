// Package config provides configuration loading and structs for the coldfinder server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool          `yaml:"debug"`
	LogLevel string        `yaml:"log_level,omitempty"`
	Server   ServerConfig  `yaml:"server"`
	Catalog  CatalogConfig `yaml:"catalog"`
	Remote   RemoteConfig  `yaml:"remote"`
	Search   SearchConfig  `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CatalogConfig selects the knowledge base source. DatabasePath wins over Path; with
// neither set the embedded catalog is used.
type CatalogConfig struct {
	Path         string `yaml:"path,omitempty"`
	DatabasePath string `yaml:"database_path,omitempty"`
	// Watch reloads the catalog file when it changes. Ignored for databases.
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Source describes where the catalog is loaded from.
func (c *CatalogConfig) Source() string {
	switch {
	case c.DatabasePath != "":
		return c.DatabasePath
	case c.Path != "":
		return c.Path
	}
	return "embedded"
}

// RemoteConfig holds the live facility search service settings.
// An empty URL disables the remote lookup.
type RemoteConfig struct {
	URL string `yaml:"url"`
}

// Enabled reports whether a remote service is configured.
func (r *RemoteConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

// SearchConfig holds search engine settings.
type SearchConfig struct {
	RemoteTimeout  time.Duration `yaml:"remote_timeout"`
	Suggestions    *bool         `yaml:"suggestions,omitempty"`
	MaxSuggestions int           `yaml:"max_suggestions"`
}

// SuggestionsOrDefault returns whether crop suggestions are enabled; defaults to true when unset.
func (s *SearchConfig) SuggestionsOrDefault() bool {
	if s.Suggestions != nil {
		return *s.Suggestions
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	if cfg.Catalog.Path != "" {
		cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	}
	if cfg.Catalog.DatabasePath != "" {
		cfg.Catalog.DatabasePath = expandPath(cfg.Catalog.DatabasePath, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
