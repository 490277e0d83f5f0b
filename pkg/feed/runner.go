// Package feed drives the dashboard's event logs. In mock mode a Runner
// generates synthetic frames and agent events on fixed-rate tickers; in
// live mode a Source ingests JSON messages from an upstream stream.
// Either way, every accepted event is appended to its bounded log and
// fanned out to WebSocket subscribers.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chessops/dashboard/pkg/eventlog"
	"github.com/chessops/dashboard/pkg/events"
	"github.com/chessops/dashboard/pkg/models"
	"github.com/chessops/dashboard/pkg/synth"
)

// Publisher fans accepted events out to dashboard clients.
// Implemented by *events.Publisher; nil-checks are the caller's concern —
// pass NopPublisher to run without fanout.
type Publisher interface {
	PublishFrameCreated(payload events.FrameCreatedPayload) error
	PublishAgentEvent(payload events.AgentEventPayload) error
}

// NopPublisher discards all events. Used when no hub is wired (tests,
// headless runs).
type NopPublisher struct{}

func (NopPublisher) PublishFrameCreated(events.FrameCreatedPayload) error { return nil }
func (NopPublisher) PublishAgentEvent(events.AgentEventPayload) error     { return nil }

// Config controls the mock feed pacing.
type Config struct {
	FrameInterval time.Duration // default 33ms (~30 Hz)
	AgentInterval time.Duration // default 500ms (~2 Hz)
}

// Runner periodically invokes the synthetic generator and appends the
// results to the bounded logs. It owns two tickers; Stop cancels both and
// waits for the loops to exit, so no timer or goroutine leaks past Stop.
type Runner struct {
	gen       *synth.Generator
	frames    *eventlog.Log[models.PipelineFrameEvent]
	agents    *eventlog.Log[models.AgentEvent]
	publisher Publisher
	cfg       Config
	logger    *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	started  bool
}

// NewRunner creates a mock feed runner. publisher may be NopPublisher.
func NewRunner(
	gen *synth.Generator,
	frames *eventlog.Log[models.PipelineFrameEvent],
	agents *eventlog.Log[models.AgentEvent],
	publisher Publisher,
	cfg Config,
) *Runner {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = synth.DefaultFrameIntervalMS * time.Millisecond
	}
	if cfg.AgentInterval <= 0 {
		cfg.AgentInterval = synth.DefaultAgentIntervalMS * time.Millisecond
	}
	return &Runner{
		gen:       gen,
		frames:    frames,
		agents:    agents,
		publisher: publisher,
		cfg:       cfg,
		logger:    slog.Default().With("component", "feed-runner"),
		stopCh:    make(chan struct{}),
	}
}

// Start spawns the frame and agent generation loops.
// Safe to call multiple times; subsequent calls are no-ops.
func (r *Runner) Start(ctx context.Context) {
	if r.started {
		r.logger.Warn("Feed runner already started, ignoring duplicate Start call")
		return
	}
	r.started = true

	r.logger.Info("Starting mock feed",
		"frame_interval", r.cfg.FrameInterval,
		"agent_interval", r.cfg.AgentInterval)

	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		r.runFrameLoop(ctx)
	}()
	go func() {
		defer r.wg.Done()
		r.runAgentLoop(ctx)
	}()
}

// Stop cancels the generation loops and waits for them to exit.
// Idempotent.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Runner) runFrameLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			frame := r.gen.PipelineEvents(1)[0]
			r.frames.Append(frame)
			if err := r.publisher.PublishFrameCreated(events.NewFrameCreatedPayload(frame)); err != nil {
				r.logger.Warn("Failed to publish frame", "frame_id", frame.FrameID, "error", err)
			}
		}
	}
}

func (r *Runner) runAgentLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.AgentInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			// A step may be a single message or a tool_call/tool_result
			// pair; the generator decides.
			for _, event := range r.gen.AgentEvents(1) {
				r.agents.Append(event)
				if err := r.publisher.PublishAgentEvent(events.NewAgentEventPayload(event)); err != nil {
					r.logger.Warn("Failed to publish agent event", "event_id", event.ID, "error", err)
				}
			}
		}
	}
}
