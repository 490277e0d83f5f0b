// Package config loads and validates the dashboard configuration from
// YAML, with environment variable expansion and built-in defaults.
package config

import (
	"time"

	"github.com/chessops/dashboard/pkg/eventlog"
	"github.com/chessops/dashboard/pkg/synth"
)

// Feed modes.
const (
	FeedModeSynthetic = "synthetic"
	FeedModeLive      = "live"
)

// Config is the fully resolved dashboard configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Feed     FeedConfig     `yaml:"feed"`
	Detector DetectorConfig `yaml:"detector"`
	Slack    SlackConfig    `yaml:"slack"`
}

// ServerConfig holds the HTTP/WebSocket server settings.
type ServerConfig struct {
	Host             string   `yaml:"host"`
	Port             int      `yaml:"port"`
	DashboardURL     string   `yaml:"dashboard_url"`
	AllowedWSOrigins []string `yaml:"allowed_ws_origins"`
}

// FeedConfig selects and tunes the event source. In synthetic mode the
// generator drives both logs; in live mode events arrive over an
// upstream WebSocket stream.
type FeedConfig struct {
	Mode               string `yaml:"mode"`
	Seed               uint64 `yaml:"seed"`
	FrameIntervalMS    int    `yaml:"frame_interval_ms"`
	AgentIntervalMS    int    `yaml:"agent_interval_ms"`
	FrameCapacity      int    `yaml:"frame_capacity"`
	AgentEventCapacity int    `yaml:"agent_event_capacity"`
	LiveURL            string `yaml:"live_url"`
}

// DetectorConfig holds the chess-detection backend connection settings.
// An empty BaseURL disables the detector proxy endpoints.
type DetectorConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Timeout returns the request timeout as a duration.
func (c DetectorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// SlackConfig holds Slack notification settings.
type SlackConfig struct {
	TokenEnv    string `yaml:"token_env"`
	Channel     string `yaml:"channel"`
	DedupTTLSec int    `yaml:"dedup_ttl_sec"`
}

// DedupTTL returns the anomaly dedup window as a duration.
func (c SlackConfig) DedupTTL() time.Duration {
	return time.Duration(c.DedupTTLSec) * time.Second
}

// DefaultConfig returns the built-in defaults. User YAML overrides
// individual fields.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8000,
			DashboardURL: "http://localhost:8000",
		},
		Feed: FeedConfig{
			Mode:               FeedModeSynthetic,
			Seed:               42,
			FrameIntervalMS:    synth.DefaultFrameIntervalMS,
			AgentIntervalMS:    synth.DefaultAgentIntervalMS,
			FrameCapacity:      eventlog.DefaultFrameCapacity,
			AgentEventCapacity: eventlog.DefaultAgentEventCapacity,
		},
		Detector: DetectorConfig{
			TimeoutSec: 30,
		},
		Slack: SlackConfig{
			TokenEnv:    "SLACK_BOT_TOKEN",
			DedupTTLSec: 300,
		},
	}
}
