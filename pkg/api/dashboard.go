package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	echo "github.com/labstack/echo/v5"
)

// SetDashboardDir serves the built dashboard SPA from dir. Empty dir is
// a no-op (API-only deployment).
func (s *Server) SetDashboardDir(dir string) {
	if dir == "" {
		return
	}
	s.dashboardDir = dir
	s.setupDashboardRoutes()
}

// setupDashboardRoutes registers the static file and SPA fallback routes.
// Called after API routes so they keep priority. Skipped when no
// dashboard directory is configured or it lacks an index.html.
func (s *Server) setupDashboardRoutes() {
	if s.dashboardDir == "" || s.dashboardRegistered {
		return
	}

	indexPath := filepath.Join(s.dashboardDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("Dashboard directory has no index.html, skipping SPA routes",
			"dir", s.dashboardDir)
		return
	}

	s.echo.GET("/*", s.spaHandler)
	s.dashboardRegistered = true
}

// spaHandler serves static dashboard files, falling back to index.html
// for client-side routes. API paths are never intercepted.
func (s *Server) spaHandler(c *echo.Context) error {
	reqPath := c.Request().URL.Path
	if strings.HasPrefix(reqPath, "/api/") {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	// Clean with a leading slash so ".." cannot escape the dashboard dir.
	filePath := filepath.Join(s.dashboardDir, filepath.Clean("/"+reqPath))

	if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
		// Vite emits content-hashed bundles under /assets/; everything else
		// (index.html, favicon, robots.txt) is unhashed and must revalidate.
		if strings.HasPrefix(reqPath, "/assets/") {
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			c.Response().Header().Set("Cache-Control", "no-cache")
		}
		http.ServeFile(c.Response(), c.Request(), filePath)
		return nil
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	http.ServeFile(c.Response(), c.Request(), filepath.Join(s.dashboardDir, "index.html"))
	return nil
}
