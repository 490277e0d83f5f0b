package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/chessops/dashboard/pkg/views"
)

// listAgentEventsHandler handles GET /api/v1/agents/events.
func (s *Server) listAgentEventsHandler(c *echo.Context) error {
	window, err := s.resolveWindow(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views.AgentEventsInWindow(s.agents.All(), window))
}

// agentGroupsHandler handles GET /api/v1/agents/groups.
// Groups the window's agent events by agent, in first-appearance order.
func (s *Server) agentGroupsHandler(c *echo.Context) error {
	window, err := s.resolveWindow(c)
	if err != nil {
		return err
	}
	events := views.AgentEventsInWindow(s.agents.All(), window)
	return c.JSON(http.StatusOK, views.GroupAgentEventsByAgent(events))
}

// threadHandler handles GET /api/v1/agents/threads/:id.
func (s *Server) threadHandler(c *echo.Context) error {
	threadID := c.Param("id")
	if threadID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "thread id is required")
	}

	events := views.EventsInThread(s.agents.All(), threadID)
	if len(events) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "thread not found")
	}
	return c.JSON(http.StatusOK, events)
}
