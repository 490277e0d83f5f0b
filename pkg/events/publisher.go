package events

import (
	"encoding/json"
	"fmt"
)

// Broadcaster fans a marshaled payload out to channel subscribers.
// Implemented by *Hub; narrowed to an interface so the feed layer can be
// tested with a recording fake.
type Broadcaster interface {
	Broadcast(channel string, payload []byte)
}

// Publisher marshals typed payloads and routes them to their channels.
// There is no persistence behind it — the bounded logs are the only
// retention, so delivery is broadcast-only and best-effort.
type Publisher struct {
	broadcaster Broadcaster
}

// NewPublisher creates a Publisher on top of a Broadcaster.
func NewPublisher(b Broadcaster) *Publisher {
	return &Publisher{broadcaster: b}
}

// PublishFrameCreated broadcasts a frame.created event on the frames channel.
func (p *Publisher) PublishFrameCreated(payload FrameCreatedPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal FrameCreatedPayload: %w", err)
	}
	p.broadcaster.Broadcast(ChannelFrames, data)
	return nil
}

// PublishAgentEvent broadcasts an agent_event.created event on the agents channel.
func (p *Publisher) PublishAgentEvent(payload AgentEventPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal AgentEventPayload: %w", err)
	}
	p.broadcaster.Broadcast(ChannelAgents, data)
	return nil
}
