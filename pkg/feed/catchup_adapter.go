package feed

import (
	"encoding/json"
	"log/slog"

	"github.com/chessops/dashboard/pkg/eventlog"
	"github.com/chessops/dashboard/pkg/events"
	"github.com/chessops/dashboard/pkg/models"
)

// CatchupAdapter serves retained log entries as marshaled payloads so the
// WebSocket hub can replay them to fresh subscribers. The bounded logs are
// the only retention: events evicted before a client subscribes are gone,
// which is the intended behavior of the dashboard's rolling window.
type CatchupAdapter struct {
	frames *eventlog.Log[models.PipelineFrameEvent]
	agents *eventlog.Log[models.AgentEvent]
}

// NewCatchupAdapter creates an adapter over the two dashboard logs.
func NewCatchupAdapter(
	frames *eventlog.Log[models.PipelineFrameEvent],
	agents *eventlog.Log[models.AgentEvent],
) *CatchupAdapter {
	return &CatchupAdapter{frames: frames, agents: agents}
}

// Catchup returns up to limit most-recent payloads for a channel,
// oldest first. Unknown channels yield nothing.
func (a *CatchupAdapter) Catchup(channel string, limit int) [][]byte {
	switch channel {
	case events.ChannelFrames:
		frames := a.frames.All()
		frames = tail(frames, limit)
		payloads := make([][]byte, 0, len(frames))
		for _, f := range frames {
			if data, err := json.Marshal(events.NewFrameCreatedPayload(f)); err == nil {
				payloads = append(payloads, data)
			} else {
				slog.Warn("Failed to marshal catchup frame", "frame_id", f.FrameID, "error", err)
			}
		}
		return payloads

	case events.ChannelAgents:
		agentEvents := tail(a.agents.All(), limit)
		payloads := make([][]byte, 0, len(agentEvents))
		for _, e := range agentEvents {
			if data, err := json.Marshal(events.NewAgentEventPayload(e)); err == nil {
				payloads = append(payloads, data)
			} else {
				slog.Warn("Failed to marshal catchup agent event", "event_id", e.ID, "error", err)
			}
		}
		return payloads
	}
	return nil
}

func tail[T any](entries []T, limit int) []T {
	if limit >= 0 && len(entries) > limit {
		return entries[len(entries)-limit:]
	}
	return entries
}
