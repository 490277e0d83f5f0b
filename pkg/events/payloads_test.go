package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessops/dashboard/pkg/models"
)

func testFrame() models.PipelineFrameEvent {
	return models.PipelineFrameEvent{
		FrameID:   "frame-000001",
		Timestamp: 33,
		StageTimings: map[string]float64{
			models.StagePreprocess: 3.2,
			models.StageClassify:   18.9,
		},
		CellScores: []models.CellScore{
			{Cell: "e4", Top1Class: "P", Top1Confidence: 0.92},
		},
	}
}

func testAgentEvent() models.AgentEvent {
	return models.AgentEvent{
		ID:        "agent-evt-000001",
		Timestamp: 500,
		Agent:     "planner",
		Role:      models.RolePlanner,
		Kind:      models.KindMessage,
		Content:   "evaluating candidate lines",
		ThreadID:  "thread-000",
	}
}

func TestFrameCreatedPayloadShape(t *testing.T) {
	data, err := json.Marshal(NewFrameCreatedPayload(testFrame()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, EventTypeFrameCreated, decoded["type"])

	frame, ok := decoded["frame"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "frame-000001", frame["frame_id"])
	assert.Equal(t, float64(33), frame["timestamp"])
}

func TestAgentEventPayloadShape(t *testing.T) {
	data, err := json.Marshal(NewAgentEventPayload(testAgentEvent()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, EventTypeAgentEvent, decoded["type"])

	event, ok := decoded["event"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "planner", event["agent"])
	// Optional fields are omitted when empty.
	assert.NotContains(t, event, "tool")
	assert.NotContains(t, event, "error")
}
