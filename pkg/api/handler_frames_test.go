package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessops/dashboard/pkg/models"
	"github.com/chessops/dashboard/pkg/views"
)

func TestListFrames(t *testing.T) {
	s, frames, _ := newTestServer(t)
	frames.Append(testFrameAt("frame-000001", 100))
	frames.Append(testFrameAt("frame-000002", 200))
	frames.Append(testFrameAt("frame-000003", 300))

	t.Run("no window returns all", func(t *testing.T) {
		var got []models.PipelineFrameEvent
		rec := doRequest(t, s, http.MethodGet, "/api/v1/frames", nil, &got)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, got, 3)
	})

	t.Run("explicit window filters inclusively", func(t *testing.T) {
		var got []models.PipelineFrameEvent
		rec := doRequest(t, s, http.MethodGet, "/api/v1/frames?start=100&end=200", nil, &got)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, got, 2)
		assert.Equal(t, "frame-000001", got[0].FrameID)
		assert.Equal(t, "frame-000002", got[1].FrameID)
	})

	t.Run("selection window applies when no query params", func(t *testing.T) {
		require.NoError(t, s.selection.SetTimeWindow(250, 400))
		defer s.selection.ClearTimeWindow()

		var got []models.PipelineFrameEvent
		rec := doRequest(t, s, http.MethodGet, "/api/v1/frames", nil, &got)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, got, 1)
		assert.Equal(t, "frame-000003", got[0].FrameID)
	})

	t.Run("query params override selection window", func(t *testing.T) {
		require.NoError(t, s.selection.SetTimeWindow(250, 400))
		defer s.selection.ClearTimeWindow()

		var got []models.PipelineFrameEvent
		rec := doRequest(t, s, http.MethodGet, "/api/v1/frames?start=0&end=150", nil, &got)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, got, 1)
		assert.Equal(t, "frame-000001", got[0].FrameID)
	})
}

func TestListFramesBadWindow(t *testing.T) {
	s, _, _ := newTestServer(t)

	tests := []struct {
		name   string
		target string
	}{
		{name: "start without end", target: "/api/v1/frames?start=100"},
		{name: "end without start", target: "/api/v1/frames?end=100"},
		{name: "non-numeric start", target: "/api/v1/frames?start=abc&end=200"},
		{name: "non-numeric end", target: "/api/v1/frames?start=100&end=xyz"},
		{name: "inverted range", target: "/api/v1/frames?start=200&end=100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, tt.target, nil, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSelectedFrame(t *testing.T) {
	t.Run("404 when log empty", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		rec := doRequest(t, s, http.MethodGet, "/api/v1/frames/selected", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("falls back to latest frame", func(t *testing.T) {
		s, frames, _ := newTestServer(t)
		frames.Append(testFrameAt("frame-000001", 100))
		frames.Append(testFrameAt("frame-000002", 200))

		var got models.PipelineFrameEvent
		rec := doRequest(t, s, http.MethodGet, "/api/v1/frames/selected", nil, &got)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "frame-000002", got.FrameID)
	})

	t.Run("returns explicitly selected frame", func(t *testing.T) {
		s, frames, _ := newTestServer(t)
		frames.Append(testFrameAt("frame-000001", 100))
		frames.Append(testFrameAt("frame-000002", 200))
		s.selection.SetSelectedFrame("frame-000001")

		var got models.PipelineFrameEvent
		rec := doRequest(t, s, http.MethodGet, "/api/v1/frames/selected", nil, &got)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "frame-000001", got.FrameID)
	})

	t.Run("404 when selected frame evicted", func(t *testing.T) {
		s, frames, _ := newTestServer(t)
		frames.Append(testFrameAt("frame-000002", 200))
		s.selection.SetSelectedFrame("frame-000001")

		rec := doRequest(t, s, http.MethodGet, "/api/v1/frames/selected", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMetricsTimeline(t *testing.T) {
	s, frames, _ := newTestServer(t)
	frames.Append(testFrameAt("frame-000001", 100))
	frames.Append(testFrameAt("frame-000002", 200))

	var got []views.FrameMetrics
	rec := doRequest(t, s, http.MethodGet, "/api/v1/metrics/timeline", nil, &got)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got, 2)
	assert.Equal(t, "frame-000001", got[0].FrameID)
	assert.InDelta(t, 18.0, got[0].TotalLatencyMS, 1e-9)
	assert.InDelta(t, 0.9, got[0].AvgConfidence, 1e-9)
	assert.Equal(t, 1, got[0].DetectionCount)
}

func TestListAlerts(t *testing.T) {
	s, frames, _ := newTestServer(t)

	clean := testFrameAt("frame-000001", 100)
	frames.Append(clean)

	flagged := testFrameAt("frame-000002", 200)
	flagged.Anomalies = []models.Anomaly{
		{Type: models.AnomalyCornerDrift, Severity: models.SeverityError, Message: "corners drifted"},
	}
	frames.Append(flagged)

	var got []views.Alert
	rec := doRequest(t, s, http.MethodGet, "/api/v1/alerts", nil, &got)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got, 1)
	assert.Equal(t, "frame-000002", got[0].FrameID)
	assert.Equal(t, models.AnomalyCornerDrift, got[0].Anomaly.Type)
}
