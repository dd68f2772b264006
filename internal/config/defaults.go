package config

import "time"

// DefaultRemoteTimeout bounds the remote lookup when search.remote_timeout is unset.
const DefaultRemoteTimeout = 5 * time.Second

// DefaultMaxSuggestions is the number of crop suggestions returned for an unknown crop.
const DefaultMaxSuggestions = 3

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Catalog.Debounce == 0 {
		cfg.Catalog.Debounce = 400 * time.Millisecond
	}
	if cfg.Search.RemoteTimeout == 0 {
		cfg.Search.RemoteTimeout = DefaultRemoteTimeout
	}
	if cfg.Search.MaxSuggestions == 0 {
		cfg.Search.MaxSuggestions = DefaultMaxSuggestions
	}
	// Suggestions default to on when unset (nil).
	if cfg.Search.Suggestions == nil {
		t := true
		cfg.Search.Suggestions = &t
	}
}
