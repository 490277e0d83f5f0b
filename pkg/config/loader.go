package config

import (
	"fmt"
	"log/slog"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, expands environment variables, merges
// the result over the built-in defaults, and validates the outcome.
// An empty path returns validated defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		user, err := loadYAML(path)
		if err != nil {
			return nil, &LoadError{File: path, Err: err}
		}
		// Non-zero user values override defaults, unset fields keep them.
		if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge configuration: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		"path", path,
		"feed_mode", cfg.Feed.Mode,
		"server_port", cfg.Server.Port,
		"detector_enabled", cfg.Detector.BaseURL != "",
		"slack_enabled", cfg.Slack.Channel != "")

	return cfg, nil
}

func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	// Expand environment variables using {{.VAR}} template syntax
	data = ExpandEnv(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return NewValidationError("server", "port",
			fmt.Errorf("%w: %d (must be 1-65535)", ErrInvalidValue, cfg.Server.Port))
	}

	switch cfg.Feed.Mode {
	case FeedModeSynthetic, FeedModeLive:
	default:
		return NewValidationError("feed", "mode",
			fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidValue, cfg.Feed.Mode, FeedModeSynthetic, FeedModeLive))
	}
	if cfg.Feed.Mode == FeedModeLive && cfg.Feed.LiveURL == "" {
		return NewValidationError("feed", "live_url",
			fmt.Errorf("%w: required when mode is %q", ErrInvalidValue, FeedModeLive))
	}
	if cfg.Feed.FrameIntervalMS < 1 {
		return NewValidationError("feed", "frame_interval_ms",
			fmt.Errorf("%w: %d (must be positive)", ErrInvalidValue, cfg.Feed.FrameIntervalMS))
	}
	if cfg.Feed.AgentIntervalMS < 1 {
		return NewValidationError("feed", "agent_interval_ms",
			fmt.Errorf("%w: %d (must be positive)", ErrInvalidValue, cfg.Feed.AgentIntervalMS))
	}
	if cfg.Feed.FrameCapacity < 1 {
		return NewValidationError("feed", "frame_capacity",
			fmt.Errorf("%w: %d (must be positive)", ErrInvalidValue, cfg.Feed.FrameCapacity))
	}
	if cfg.Feed.AgentEventCapacity < 1 {
		return NewValidationError("feed", "agent_event_capacity",
			fmt.Errorf("%w: %d (must be positive)", ErrInvalidValue, cfg.Feed.AgentEventCapacity))
	}

	if cfg.Detector.TimeoutSec < 1 {
		return NewValidationError("detector", "timeout_sec",
			fmt.Errorf("%w: %d (must be positive)", ErrInvalidValue, cfg.Detector.TimeoutSec))
	}

	if cfg.Slack.DedupTTLSec < 1 {
		return NewValidationError("slack", "dedup_ttl_sec",
			fmt.Errorf("%w: %d (must be positive)", ErrInvalidValue, cfg.Slack.DedupTTLSec))
	}

	return nil
}
