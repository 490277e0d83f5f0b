package api

import (
	"io"
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// maxUploadBytes caps board image uploads (10 MiB).
const maxUploadBytes = 10 << 20

// SetEloRequest is the body for POST /api/v1/detector/elo.
type SetEloRequest struct {
	Elo int `json:"elo"`
}

// detectorPredictHandler handles POST /api/v1/detector/predict.
// Accepts a multipart board image plus the a1-corner orientation and
// proxies it to the detection backend.
func (s *Server) detectorPredictHandler(c *echo.Context) error {
	if s.detector == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "detector backend not configured")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image exceeds upload limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read image file")
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read image file")
	}

	a1Pos := c.FormValue("a1_pos")
	if a1Pos == "" {
		a1Pos = "BL"
	}

	result, err := s.detector.Predict(c.Request().Context(), image, fileHeader.Filename, a1Pos)
	if err != nil {
		return mapDetectorError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// detectorNextMoveHandler handles GET /api/v1/detector/nextmove.
func (s *Server) detectorNextMoveHandler(c *echo.Context) error {
	if s.detector == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "detector backend not configured")
	}

	result, err := s.detector.NextMove(c.Request().Context())
	if err != nil {
		return mapDetectorError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// detectorSetEloHandler handles POST /api/v1/detector/elo.
func (s *Server) detectorSetEloHandler(c *echo.Context) error {
	if s.detector == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "detector backend not configured")
	}

	var req SetEloRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.detector.SetElo(c.Request().Context(), req.Elo); err != nil {
		return mapDetectorError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
