package api

import (
	"fmt"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/chessops/dashboard/pkg/version"
)

const healthStatusHealthy = "healthy"

// healthHandler handles GET /health.
// Returns a minimal, safe response suitable for unauthenticated access.
// Only the dashboard's own components are checked; the detector backend
// is excluded so an unhealthy detector never restarts the dashboard.
func (s *Server) healthHandler(c *echo.Context) error {
	checks := map[string]HealthCheck{
		"event_store": {
			Status: healthStatusHealthy,
			Message: fmt.Sprintf("%d frames, %d agent events",
				s.frames.Len(), s.agents.Len()),
		},
	}
	if s.hub != nil {
		checks["websocket_hub"] = HealthCheck{
			Status:  healthStatusHealthy,
			Message: fmt.Sprintf("%d active connections", s.hub.ActiveConnections()),
		}
	}

	return c.JSON(http.StatusOK, &HealthResponse{
		Status:  healthStatusHealthy,
		Version: version.GitCommit,
		Checks:  checks,
	})
}

// versionHandler handles GET /api/v1/version.
func (s *Server) versionHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &VersionResponse{
		Name:      version.AppName,
		GitCommit: version.GitCommit,
	})
}
