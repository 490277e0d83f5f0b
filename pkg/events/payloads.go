package events

import "github.com/chessops/dashboard/pkg/models"

// FrameCreatedPayload is the payload for frame.created events, published
// for every frame appended to the pipeline log.
type FrameCreatedPayload struct {
	Type  string                    `json:"type"` // always EventTypeFrameCreated
	Frame models.PipelineFrameEvent `json:"frame"`
}

// AgentEventPayload is the payload for agent_event.created events.
type AgentEventPayload struct {
	Type  string            `json:"type"` // always EventTypeAgentEvent
	Event models.AgentEvent `json:"event"`
}

// NewFrameCreatedPayload builds the payload for a frame append.
func NewFrameCreatedPayload(frame models.PipelineFrameEvent) FrameCreatedPayload {
	return FrameCreatedPayload{Type: EventTypeFrameCreated, Frame: frame}
}

// NewAgentEventPayload builds the payload for an agent event append.
func NewAgentEventPayload(event models.AgentEvent) AgentEventPayload {
	return AgentEventPayload{Type: EventTypeAgentEvent, Event: event}
}
