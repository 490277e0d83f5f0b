// Package events provides real-time event delivery to dashboard clients
// over WebSocket.
//
// Clients subscribe to named channels and receive every payload published
// to them. On subscribe the hub replays the most recent retained events
// from the bounded logs so late subscribers start with a populated view;
// anything older has already been evicted and is gone by design.
package events

// Channel names for the dashboard feeds.
const (
	// ChannelFrames carries frame.created payloads (~30 Hz in mock mode).
	ChannelFrames = "frames"

	// ChannelAgents carries agent_event.created payloads.
	ChannelAgents = "agents"
)

// Event types carried in payloads' "type" field.
const (
	EventTypeFrameCreated = "frame.created"
	EventTypeAgentEvent   = "agent_event.created"
)

// ClientMessage is the JSON structure for client → server WebSocket messages.
type ClientMessage struct {
	Action  string `json:"action"`            // "subscribe", "unsubscribe", "ping"
	Channel string `json:"channel,omitempty"` // "frames" or "agents"
}
