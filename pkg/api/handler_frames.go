package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/chessops/dashboard/pkg/selection"
	"github.com/chessops/dashboard/pkg/views"
)

// resolveWindow determines the time window for a read query. Explicit
// start/end query parameters (epoch milliseconds, both required together)
// override the selection context's window; with neither, the selection
// window applies, which may itself be nil (no filtering).
func (s *Server) resolveWindow(c *echo.Context) (*selection.TimeWindow, error) {
	startStr := c.QueryParam("start")
	endStr := c.QueryParam("end")

	if startStr == "" && endStr == "" {
		return s.selection.TimeWindow(), nil
	}
	if startStr == "" || endStr == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "start and end must be provided together")
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid start: must be epoch milliseconds")
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid end: must be epoch milliseconds")
	}
	if start > end {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "start must not exceed end")
	}

	return &selection.TimeWindow{Start: start, End: end}, nil
}

// listFramesHandler handles GET /api/v1/frames.
func (s *Server) listFramesHandler(c *echo.Context) error {
	window, err := s.resolveWindow(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views.FramesInWindow(s.frames.All(), window))
}

// selectedFrameHandler handles GET /api/v1/frames/selected.
// Resolves the selection context's frame, falling back to the most
// recent frame when nothing is selected.
func (s *Server) selectedFrameHandler(c *echo.Context) error {
	frame, ok := views.ResolveSelectedFrame(s.frames.All(), s.selection.SelectedFrameID())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no frame available")
	}
	return c.JSON(http.StatusOK, frame)
}

// metricsTimelineHandler handles GET /api/v1/metrics/timeline.
func (s *Server) metricsTimelineHandler(c *echo.Context) error {
	window, err := s.resolveWindow(c)
	if err != nil {
		return err
	}
	frames := views.FramesInWindow(s.frames.All(), window)
	return c.JSON(http.StatusOK, views.AggregateMetrics(frames))
}

// listAlertsHandler handles GET /api/v1/alerts.
// Alerts are derived from frame anomalies, newest first.
func (s *Server) listAlertsHandler(c *echo.Context) error {
	window, err := s.resolveWindow(c)
	if err != nil {
		return err
	}
	frames := views.FramesInWindow(s.frames.All(), window)
	return c.JSON(http.StatusOK, views.AlertsFromFrames(frames))
}
