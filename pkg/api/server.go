// Package api exposes the dashboard's HTTP and WebSocket surface: event
// log queries, selection context operations, derived views, the detector
// proxy, and static dashboard serving.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/chessops/dashboard/pkg/detector"
	"github.com/chessops/dashboard/pkg/eventlog"
	"github.com/chessops/dashboard/pkg/events"
	"github.com/chessops/dashboard/pkg/models"
	"github.com/chessops/dashboard/pkg/selection"
)

// Server is the dashboard API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	frames    *eventlog.Log[models.PipelineFrameEvent]
	agents    *eventlog.Log[models.AgentEvent]
	selection *selection.Context
	hub       *events.Hub

	detector            *detector.Client
	allowedWSOrigins    []string
	dashboardDir        string
	dashboardRegistered bool

	logger *slog.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(
	frames *eventlog.Log[models.PipelineFrameEvent],
	agents *eventlog.Log[models.AgentEvent],
	sel *selection.Context,
	hub *events.Hub,
) *Server {
	s := &Server{
		echo:      echo.New(),
		frames:    frames,
		agents:    agents,
		selection: sel,
		hub:       hub,
		logger:    slog.Default().With("component", "api-server"),
	}
	s.registerRoutes()
	return s
}

// SetDetector wires the chess-detection backend client. Without it the
// detector proxy endpoints return 503.
func (s *Server) SetDetector(client *detector.Client) {
	s.detector = client
}

// SetAllowedWSOrigins restricts WebSocket upgrades to the given origin
// patterns. An empty list accepts all origins.
func (s *Server) SetAllowedWSOrigins(origins []string) {
	s.allowedWSOrigins = origins
}

func (s *Server) registerRoutes() {
	s.echo.Use(securityHeaders())

	s.echo.GET("/health", s.healthHandler)
	s.echo.GET("/ws", s.wsHandler)

	v1 := s.echo.Group("/api/v1")

	v1.GET("/version", s.versionHandler)

	v1.GET("/frames", s.listFramesHandler)
	v1.GET("/frames/selected", s.selectedFrameHandler)
	v1.GET("/metrics/timeline", s.metricsTimelineHandler)
	v1.GET("/alerts", s.listAlertsHandler)

	v1.GET("/agents/events", s.listAgentEventsHandler)
	v1.GET("/agents/groups", s.agentGroupsHandler)
	v1.GET("/agents/threads/:id", s.threadHandler)

	v1.GET("/selection", s.getSelectionHandler)
	v1.DELETE("/selection", s.clearSelectionHandler)
	v1.PUT("/selection/window", s.setWindowHandler)
	v1.DELETE("/selection/window", s.clearWindowHandler)
	v1.PUT("/selection/frame", s.setSelectedFrameHandler)
	v1.PUT("/selection/cells", s.setSelectedCellsHandler)
	v1.PUT("/selection/thread", s.setSelectedThreadHandler)
	v1.PUT("/selection/hovered-cell", s.setHoveredCellHandler)

	v1.POST("/detector/predict", s.detectorPredictHandler)
	v1.GET("/detector/nextmove", s.detectorNextMoveHandler)
	v1.POST("/detector/elo", s.detectorSetEloHandler)
}

// Start begins serving on addr. Blocks until the server stops.
// Dashboard routes are registered last so API routes keep priority.
func (s *Server) Start(addr string) error {
	s.setupDashboardRoutes()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
