package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessops/dashboard/pkg/eventlog"
	"github.com/chessops/dashboard/pkg/events"
	"github.com/chessops/dashboard/pkg/models"
	"github.com/chessops/dashboard/pkg/synth"
)

func TestRunnerAppendsAndStops(t *testing.T) {
	frames := eventlog.New[models.PipelineFrameEvent](100)
	agents := eventlog.New[models.AgentEvent](100)
	gen := synth.NewGenerator(synth.Config{Seed: 1, StartTime: 0})

	r := NewRunner(gen, frames, agents, NopPublisher{}, Config{
		FrameInterval: 5 * time.Millisecond,
		AgentInterval: 5 * time.Millisecond,
	})
	r.Start(context.Background())

	require.Eventually(t, func() bool {
		return frames.Len() >= 3 && agents.Len() >= 3
	}, 5*time.Second, 5*time.Millisecond)

	r.Stop()

	// After Stop, the loops have exited: no further appends.
	frameCount := frames.Len()
	agentCount := agents.Len()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frameCount, frames.Len())
	assert.Equal(t, agentCount, agents.Len())
}

func TestRunnerStopIdempotent(t *testing.T) {
	frames := eventlog.New[models.PipelineFrameEvent](10)
	agents := eventlog.New[models.AgentEvent](10)
	gen := synth.NewGenerator(synth.Config{Seed: 2, StartTime: 0})

	r := NewRunner(gen, frames, agents, NopPublisher{}, Config{
		FrameInterval: time.Millisecond,
		AgentInterval: time.Millisecond,
	})
	r.Start(context.Background())
	r.Stop()
	r.Stop()
}

func TestRunnerContextCancellationStopsLoops(t *testing.T) {
	frames := eventlog.New[models.PipelineFrameEvent](10)
	agents := eventlog.New[models.AgentEvent](10)
	gen := synth.NewGenerator(synth.Config{Seed: 3, StartTime: 0})

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(gen, frames, agents, NopPublisher{}, Config{
		FrameInterval: time.Millisecond,
		AgentInterval: time.Millisecond,
	})
	r.Start(ctx)

	cancel()
	// Stop must return promptly even though the loops exited via ctx.
	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}

func TestRunnerPublishesEveryAppend(t *testing.T) {
	frames := eventlog.New[models.PipelineFrameEvent](100)
	agents := eventlog.New[models.AgentEvent](100)
	gen := synth.NewGenerator(synth.Config{Seed: 4, StartTime: 0})
	rec := &syncRecordingPublisher{}

	r := NewRunner(gen, frames, agents, rec, Config{
		FrameInterval: 5 * time.Millisecond,
		AgentInterval: 5 * time.Millisecond,
	})
	r.Start(context.Background())

	require.Eventually(t, func() bool {
		return rec.frameCount() >= 3
	}, 5*time.Second, 5*time.Millisecond)
	r.Stop()

	assert.Equal(t, frames.Len(), rec.frameCount())
	assert.Equal(t, agents.Len(), rec.agentCount())
}

// syncRecordingPublisher counts publishes; safe for use from the runner's
// goroutines.
type syncRecordingPublisher struct {
	mu     sync.Mutex
	frames int
	agents int
}

func (r *syncRecordingPublisher) PublishFrameCreated(events.FrameCreatedPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	return nil
}

func (r *syncRecordingPublisher) PublishAgentEvent(events.AgentEventPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents++
	return nil
}

func (r *syncRecordingPublisher) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *syncRecordingPublisher) agentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agents
}
