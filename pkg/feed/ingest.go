package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chessops/dashboard/pkg/eventlog"
	"github.com/chessops/dashboard/pkg/events"
	"github.com/chessops/dashboard/pkg/models"
)

// ParseError reports a malformed inbound live-stream message. The message
// is dropped, never appended; the error is surfaced to the log only —
// a bad message must not take the dashboard down.
type ParseError struct {
	Channel string
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s message: %s: %v", e.Channel, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s message: %s", e.Channel, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Ingestor is the boundary between a live data source and the event logs.
// One event object per message; anything that doesn't decode into the
// schema is dropped with a logged parse error.
type Ingestor struct {
	frames    *eventlog.Log[models.PipelineFrameEvent]
	agents    *eventlog.Log[models.AgentEvent]
	publisher Publisher
	logger    *slog.Logger
}

// NewIngestor creates an Ingestor appending to the given logs.
func NewIngestor(
	frames *eventlog.Log[models.PipelineFrameEvent],
	agents *eventlog.Log[models.AgentEvent],
	publisher Publisher,
) *Ingestor {
	return &Ingestor{
		frames:    frames,
		agents:    agents,
		publisher: publisher,
		logger:    slog.Default().With("component", "feed-ingestor"),
	}
}

// IngestFrame decodes and appends one pipeline frame message.
// Returns *ParseError (already logged) when the message is dropped.
func (i *Ingestor) IngestFrame(data []byte) error {
	var frame models.PipelineFrameEvent
	if err := json.Unmarshal(data, &frame); err != nil {
		return i.drop(&ParseError{Channel: events.ChannelFrames, Reason: "invalid JSON", Err: err})
	}
	if frame.FrameID == "" {
		return i.drop(&ParseError{Channel: events.ChannelFrames, Reason: "missing frame_id"})
	}
	for _, s := range frame.CellScores {
		if !models.ValidCell(s.Cell) {
			return i.drop(&ParseError{Channel: events.ChannelFrames,
				Reason: fmt.Sprintf("invalid cell label %q", s.Cell)})
		}
		if s.Top1Confidence < 0 || s.Top1Confidence > 1 {
			return i.drop(&ParseError{Channel: events.ChannelFrames,
				Reason: fmt.Sprintf("confidence %v out of range on %s", s.Top1Confidence, s.Cell)})
		}
	}

	i.frames.Append(frame)
	if err := i.publisher.PublishFrameCreated(events.NewFrameCreatedPayload(frame)); err != nil {
		i.logger.Warn("Failed to publish ingested frame", "frame_id", frame.FrameID, "error", err)
	}
	return nil
}

// IngestAgentEvent decodes and appends one agent event message.
// Returns *ParseError (already logged) when the message is dropped.
func (i *Ingestor) IngestAgentEvent(data []byte) error {
	var event models.AgentEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return i.drop(&ParseError{Channel: events.ChannelAgents, Reason: "invalid JSON", Err: err})
	}
	if event.ID == "" {
		return i.drop(&ParseError{Channel: events.ChannelAgents, Reason: "missing id"})
	}
	if event.LatencyMS < 0 {
		return i.drop(&ParseError{Channel: events.ChannelAgents,
			Reason: fmt.Sprintf("negative latency_ms %v", event.LatencyMS)})
	}

	i.agents.Append(event)
	if err := i.publisher.PublishAgentEvent(events.NewAgentEventPayload(event)); err != nil {
		i.logger.Warn("Failed to publish ingested agent event", "event_id", event.ID, "error", err)
	}
	return nil
}

func (i *Ingestor) drop(perr *ParseError) error {
	i.logger.Warn("Dropping malformed message",
		"channel", perr.Channel, "reason", perr.Reason, "error", perr.Err)
	return perr
}
