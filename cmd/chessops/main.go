// ChessOps dashboard server — serves the HTTP API and WebSocket stream,
// maintains the bounded event logs, and drives the synthetic or live feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chessops/dashboard/pkg/api"
	"github.com/chessops/dashboard/pkg/config"
	"github.com/chessops/dashboard/pkg/detector"
	"github.com/chessops/dashboard/pkg/eventlog"
	"github.com/chessops/dashboard/pkg/events"
	"github.com/chessops/dashboard/pkg/feed"
	"github.com/chessops/dashboard/pkg/models"
	"github.com/chessops/dashboard/pkg/selection"
	"github.com/chessops/dashboard/pkg/slack"
	"github.com/chessops/dashboard/pkg/synth"
	"github.com/chessops/dashboard/pkg/version"
)

const shutdownTimeout = 10 * time.Second

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// notifyingPublisher fans frame publishes out to the WebSocket hub and,
// when a frame carries anomalies, to Slack. Slack delivery runs off the
// feed goroutine so a slow API call never stalls the frame loop.
type notifyingPublisher struct {
	inner *events.Publisher
	slack *slack.Service
}

func (n *notifyingPublisher) PublishFrameCreated(p events.FrameCreatedPayload) error {
	if n.slack != nil && len(p.Frame.Anomalies) > 0 {
		frame := p.Frame
		go n.slack.NotifyFrameAnomalies(context.Background(), frame)
	}
	return n.inner.PublishFrameCreated(p)
}

func (n *notifyingPublisher) PublishAgentEvent(p events.AgentEventPayload) error {
	return n.inner.PublishAgentEvent(p)
}

func main() {
	configPath := flag.String("config",
		getEnv("CHESSOPS_CONFIG", ""),
		"Path to configuration file (empty = built-in defaults)")
	dashboardDir := flag.String("dashboard-dir",
		getEnv("DASHBOARD_DIR", ""),
		"Path to built dashboard assets (empty = API only)")
	flag.Parse()

	// Load .env before anything reads the environment.
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file, continuing with existing environment", "error", err)
	}

	slog.Info("Starting ChessOps dashboard",
		"version", version.Full(),
		"config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 1. Event store
	frames := eventlog.New[models.PipelineFrameEvent](cfg.Feed.FrameCapacity)
	agents := eventlog.New[models.AgentEvent](cfg.Feed.AgentEventCapacity)
	sel := selection.NewContext()

	// 2. Streaming infrastructure
	catchup := feed.NewCatchupAdapter(frames, agents)
	hub := events.NewHub(catchup, 10*time.Second)
	basePublisher := events.NewPublisher(hub)

	// 3. Slack notifications (nil when not configured)
	slackSvc := slack.NewService(slack.ServiceConfig{
		Token:        os.Getenv(cfg.Slack.TokenEnv),
		Channel:      cfg.Slack.Channel,
		DashboardURL: cfg.Server.DashboardURL,
		DedupTTL:     cfg.Slack.DedupTTL(),
	})
	if slackSvc != nil {
		slog.Info("Slack notifications enabled", "channel", cfg.Slack.Channel)
	}
	publisher := &notifyingPublisher{inner: basePublisher, slack: slackSvc}

	ctx := context.Background()

	// 4. Feed: synthetic generator or live upstream stream
	var stopFeed func()
	switch cfg.Feed.Mode {
	case config.FeedModeLive:
		ingestor := feed.NewIngestor(frames, agents, publisher)
		source := feed.NewSource(cfg.Feed.LiveURL, ingestor)
		source.Start(ctx)
		stopFeed = source.Stop
		slog.Info("Live feed started", "url", cfg.Feed.LiveURL)
	default:
		gen := synth.NewGenerator(synth.Config{
			Seed:            cfg.Feed.Seed,
			StartTime:       time.Now().UnixMilli(),
			FrameIntervalMS: int64(cfg.Feed.FrameIntervalMS),
			AgentIntervalMS: int64(cfg.Feed.AgentIntervalMS),
		})
		runner := feed.NewRunner(gen, frames, agents, publisher, feed.Config{
			FrameInterval: time.Duration(cfg.Feed.FrameIntervalMS) * time.Millisecond,
			AgentInterval: time.Duration(cfg.Feed.AgentIntervalMS) * time.Millisecond,
		})
		runner.Start(ctx)
		stopFeed = runner.Stop
		slog.Info("Synthetic feed started",
			"seed", cfg.Feed.Seed,
			"frame_interval_ms", cfg.Feed.FrameIntervalMS,
			"agent_interval_ms", cfg.Feed.AgentIntervalMS)
	}

	// 5. HTTP server
	server := api.NewServer(frames, agents, sel, hub)
	server.SetAllowedWSOrigins(cfg.Server.AllowedWSOrigins)
	server.SetDashboardDir(*dashboardDir)
	if cfg.Detector.BaseURL != "" {
		server.SetDetector(detector.NewClient(cfg.Detector.BaseURL, cfg.Detector.Timeout()))
		slog.Info("Detector proxy enabled", "base_url", cfg.Detector.BaseURL)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	// 6. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 7. Graceful shutdown: stop producing before tearing the server down.
	stopFeed()
	slog.Info("Feed stopped")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown incomplete", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("ChessOps dashboard stopped")
}
