package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/chessops/dashboard/pkg/models"
)

// SetWindowRequest is the body for PUT /api/v1/selection/window.
type SetWindowRequest struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// SetFrameRequest is the body for PUT /api/v1/selection/frame.
// An empty frame_id clears the selection.
type SetFrameRequest struct {
	FrameID string `json:"frame_id"`
}

// SetCellsRequest is the body for PUT /api/v1/selection/cells.
// An empty list clears the selection.
type SetCellsRequest struct {
	Cells []string `json:"cells"`
}

// SetThreadRequest is the body for PUT /api/v1/selection/thread.
type SetThreadRequest struct {
	ThreadID string `json:"thread_id"`
}

// SetHoveredCellRequest is the body for PUT /api/v1/selection/hovered-cell.
type SetHoveredCellRequest struct {
	Cell string `json:"cell"`
}

// getSelectionHandler handles GET /api/v1/selection.
func (s *Server) getSelectionHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.selection.Snapshot())
}

// clearSelectionHandler handles DELETE /api/v1/selection.
func (s *Server) clearSelectionHandler(c *echo.Context) error {
	s.selection.Clear()
	return c.JSON(http.StatusOK, s.selection.Snapshot())
}

// setWindowHandler handles PUT /api/v1/selection/window.
func (s *Server) setWindowHandler(c *echo.Context) error {
	var req SetWindowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.selection.SetTimeWindow(req.Start, req.End); err != nil {
		return mapSelectionError(err)
	}
	return c.JSON(http.StatusOK, s.selection.Snapshot())
}

// clearWindowHandler handles DELETE /api/v1/selection/window.
func (s *Server) clearWindowHandler(c *echo.Context) error {
	s.selection.ClearTimeWindow()
	return c.JSON(http.StatusOK, s.selection.Snapshot())
}

// setSelectedFrameHandler handles PUT /api/v1/selection/frame.
// The frame ID is not checked against the frame log: a selection may
// outlive its frame's eviction, and the views layer resolves that.
func (s *Server) setSelectedFrameHandler(c *echo.Context) error {
	var req SetFrameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.selection.SetSelectedFrame(req.FrameID)
	return c.JSON(http.StatusOK, s.selection.Snapshot())
}

// setSelectedCellsHandler handles PUT /api/v1/selection/cells.
func (s *Server) setSelectedCellsHandler(c *echo.Context) error {
	var req SetCellsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	for _, cell := range req.Cells {
		if !models.ValidCell(cell) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid cell label: "+cell)
		}
	}

	s.selection.SetSelectedCells(req.Cells)
	return c.JSON(http.StatusOK, s.selection.Snapshot())
}

// setSelectedThreadHandler handles PUT /api/v1/selection/thread.
func (s *Server) setSelectedThreadHandler(c *echo.Context) error {
	var req SetThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.selection.SetSelectedThread(req.ThreadID)
	return c.JSON(http.StatusOK, s.selection.Snapshot())
}

// setHoveredCellHandler handles PUT /api/v1/selection/hovered-cell.
func (s *Server) setHoveredCellHandler(c *echo.Context) error {
	var req SetHoveredCellRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Cell != "" && !models.ValidCell(req.Cell) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cell label: "+req.Cell)
	}

	s.selection.SetHoveredCell(req.Cell)
	return c.JSON(http.StatusOK, s.selection.Snapshot())
}
