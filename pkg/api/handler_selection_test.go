package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessops/dashboard/pkg/selection"
)

func TestSelectionRoundTrip(t *testing.T) {
	s, _, _ := newTestServer(t)

	t.Run("initial snapshot is empty", func(t *testing.T) {
		var snap selection.Snapshot
		rec := doRequest(t, s, http.MethodGet, "/api/v1/selection", nil, &snap)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, selection.Snapshot{}, snap)
	})

	t.Run("set window", func(t *testing.T) {
		var snap selection.Snapshot
		rec := doRequest(t, s, http.MethodPut, "/api/v1/selection/window",
			jsonBody(`{"start": 100, "end": 500}`), &snap)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, snap.TimeWindow)
		assert.Equal(t, int64(100), snap.TimeWindow.Start)
		assert.Equal(t, int64(500), snap.TimeWindow.End)
	})

	t.Run("set frame and cells independently", func(t *testing.T) {
		doRequest(t, s, http.MethodPut, "/api/v1/selection/frame",
			jsonBody(`{"frame_id": "frame-000042"}`), nil)

		var snap selection.Snapshot
		rec := doRequest(t, s, http.MethodPut, "/api/v1/selection/cells",
			jsonBody(`{"cells": ["e4", "d5"]}`), &snap)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "frame-000042", snap.SelectedFrameID)
		assert.Equal(t, []string{"e4", "d5"}, snap.SelectedCells)
		require.NotNil(t, snap.TimeWindow, "window survives other field updates")
	})

	t.Run("set thread and hovered cell", func(t *testing.T) {
		doRequest(t, s, http.MethodPut, "/api/v1/selection/thread",
			jsonBody(`{"thread_id": "thread-003"}`), nil)

		var snap selection.Snapshot
		rec := doRequest(t, s, http.MethodPut, "/api/v1/selection/hovered-cell",
			jsonBody(`{"cell": "h8"}`), &snap)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "thread-003", snap.SelectedThreadID)
		assert.Equal(t, "h8", snap.HoveredCell)
	})

	t.Run("clear window only", func(t *testing.T) {
		var snap selection.Snapshot
		rec := doRequest(t, s, http.MethodDelete, "/api/v1/selection/window", nil, &snap)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, snap.TimeWindow)
		assert.Equal(t, "frame-000042", snap.SelectedFrameID, "other fields untouched")
	})

	t.Run("clear everything", func(t *testing.T) {
		var snap selection.Snapshot
		rec := doRequest(t, s, http.MethodDelete, "/api/v1/selection", nil, &snap)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, selection.Snapshot{}, snap)
	})
}

func TestSelectionValidation(t *testing.T) {
	s, _, _ := newTestServer(t)

	t.Run("inverted window rejected", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, "/api/v1/selection/window",
			jsonBody(`{"start": 500, "end": 100}`), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		// Prior state (none) retained.
		var snap selection.Snapshot
		doRequest(t, s, http.MethodGet, "/api/v1/selection", nil, &snap)
		assert.Nil(t, snap.TimeWindow)
	})

	t.Run("invalid cell label rejected", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, "/api/v1/selection/cells",
			jsonBody(`{"cells": ["e4", "z9"]}`), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var snap selection.Snapshot
		doRequest(t, s, http.MethodGet, "/api/v1/selection", nil, &snap)
		assert.Empty(t, snap.SelectedCells)
	})

	t.Run("invalid hovered cell rejected", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, "/api/v1/selection/hovered-cell",
			jsonBody(`{"cell": "i9"}`), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, "/api/v1/selection/window",
			jsonBody(`{start:`), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("dangling frame id accepted", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, "/api/v1/selection/frame",
			jsonBody(`{"frame_id": "frame-999999"}`), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
