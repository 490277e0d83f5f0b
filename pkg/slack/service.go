package slack

import (
	"context"
	"log/slog"
	"time"

	"github.com/chessops/dashboard/pkg/models"
)

// defaultDedupTTL bounds how often the same recurring anomaly is
// re-announced.
const defaultDedupTTL = 5 * time.Minute

// ServiceConfig holds the parameters needed to construct a Service.
type ServiceConfig struct {
	Token        string
	Channel      string
	DashboardURL string
	DedupTTL     time.Duration
}

// Service delivers anomaly notifications to Slack.
// Nil-safe: all methods are no-ops when service is nil.
type Service struct {
	client       *Client
	dedup        *DedupCache
	dashboardURL string
	logger       *slog.Logger
}

// NewService creates a new Slack notification service.
// Returns nil if Token or Channel is empty.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Token == "" || cfg.Channel == "" {
		return nil
	}
	return newService(NewClient(cfg.Token, cfg.Channel), cfg)
}

// NewServiceWithClient creates a Service backed by a pre-built Client.
// Useful for testing with a mock API server.
func NewServiceWithClient(client *Client, cfg ServiceConfig) *Service {
	return newService(client, cfg)
}

func newService(client *Client, cfg ServiceConfig) *Service {
	ttl := cfg.DedupTTL
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &Service{
		client:       client,
		dedup:        NewDedupCache(ttl),
		dashboardURL: cfg.DashboardURL,
		logger:       slog.Default().With("component", "slack-service"),
	}
}

// NotifyFrameAnomalies announces the error-severity anomalies of a frame.
// Warnings and infos stay in the dashboard. Recurring anomalies are
// deduplicated by fingerprint within the TTL window.
// Fail-open: errors are logged, never returned.
func (s *Service) NotifyFrameAnomalies(ctx context.Context, frame models.PipelineFrameEvent) {
	if s == nil {
		return
	}

	for _, anomaly := range frame.Anomalies {
		if anomaly.Severity != models.SeverityError {
			continue
		}

		fp := Fingerprint(anomaly)
		if s.dedup.Seen(fp) {
			continue
		}

		blocks := BuildAnomalyMessage(frame.FrameID, anomaly, s.dashboardURL)
		if err := s.client.PostMessage(ctx, blocks, 5*time.Second); err != nil {
			s.logger.Error("Failed to send Slack anomaly notification",
				"frame_id", frame.FrameID,
				"anomaly_type", anomaly.Type,
				"error", err)
			continue
		}
		s.dedup.Mark(fp)
	}
}
