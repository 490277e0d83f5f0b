package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/chessops/dashboard/pkg/detector"
	"github.com/chessops/dashboard/pkg/selection"
)

// mapSelectionError maps selection-layer errors to HTTP error responses.
func mapSelectionError(err error) *echo.HTTPError {
	var rangeErr *selection.InvalidRangeError
	if errors.As(err, &rangeErr) {
		return echo.NewHTTPError(http.StatusBadRequest, rangeErr.Error())
	}

	slog.Error("Unexpected selection error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// mapDetectorError maps detector client errors to HTTP error responses.
// Backend failures surface as 502 so the UI can distinguish "dashboard
// broken" from "detector broken".
func mapDetectorError(err error) *echo.HTTPError {
	if errors.Is(err, detector.ErrInvalidCornerPosition) || errors.Is(err, detector.ErrEloOutOfRange) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var statusErr *detector.StatusError
	if errors.As(err, &statusErr) {
		return echo.NewHTTPError(http.StatusBadGateway, statusErr.Error())
	}

	slog.Error("Detector backend unreachable", "error", err)
	return echo.NewHTTPError(http.StatusBadGateway, "detector backend unreachable")
}
