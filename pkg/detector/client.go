// Package detector is the HTTP client for the chess-detection backend:
// board prediction from an uploaded image, engine best-move queries, and
// engine strength configuration. The dashboard treats the backend as an
// opaque collaborator — its responses pass through to the UI untouched.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// Engine strength bounds accepted by the backend.
const (
	MinElo = 1320
	MaxElo = 3190
)

// CornerPositions are the accepted a1-corner orientations for prediction.
var CornerPositions = []string{"BL", "BR", "TL", "TR"}

// ErrEloOutOfRange is returned by SetElo for values outside [MinElo, MaxElo].
var ErrEloOutOfRange = fmt.Errorf("elo must be in [%d, %d]", MinElo, MaxElo)

// ErrInvalidCornerPosition is returned by Predict for an unknown a1_pos.
var ErrInvalidCornerPosition = errors.New("a1_pos must be one of BL, BR, TL, TR")

// StatusError is a non-2xx backend response, carrying the backend's
// detail message when one was provided.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("detector backend returned HTTP %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("detector backend returned HTTP %d", e.Code)
}

// PredictResult is the response to a board prediction request.
type PredictResult struct {
	FEN        string `json:"fen"`
	BoardASCII string `json:"board_ascii"`
	BoardSVG   string `json:"board_svg"`
}

// BestMove is the engine's move suggestion.
type BestMove struct {
	UCI   string `json:"uci"`
	SAN   string `json:"san"`
	Score string `json:"score"`
}

// NextMoveResult is the response to a best-move request.
type NextMoveResult struct {
	BestMove         BestMove `json:"best_move"`
	NewFEN           string   `json:"new_fen"`
	BoardSVGWithMove string   `json:"board_svg_with_move"`
}

// Client provides HTTP access to the chess-detection backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a detector client. Prediction runs an ONNX model
// server-side, so the timeout is generous.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     slog.Default().With("component", "detector-client"),
	}
}

// Predict uploads an image and the board's a1-corner orientation, and
// returns the predicted position.
func (c *Client) Predict(ctx context.Context, image []byte, filename, a1Pos string) (*PredictResult, error) {
	if !validCornerPosition(a1Pos) {
		return nil, ErrInvalidCornerPosition
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if err := writer.WriteField("a1_pos", a1Pos); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result PredictResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NextMove asks the engine for the best move from the backend's current
// position. The backend applies the move to its state as a side effect.
func (c *Client) NextMove(ctx context.Context) (*NextMoveResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/nextmove", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var result NextMoveResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetElo configures the engine strength. Validated client-side so a bad
// slider value never produces a backend round-trip.
func (c *Client) SetElo(ctx context.Context, elo int) error {
	if elo < MinElo || elo > MaxElo {
		return ErrEloOutOfRange
	}

	payload, err := json.Marshal(map[string]int{"elo": elo})
	if err != nil {
		return fmt.Errorf("marshal elo request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/set_elo", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

// do executes the request and decodes a 2xx JSON body into out (when out
// is non-nil). Non-2xx responses become *StatusError with the backend's
// detail message when present.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call detector backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read detector response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Code: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &detail); err == nil {
			statusErr.Detail = detail.Detail
		}
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode detector response: %w", err)
	}
	return nil
}

func validCornerPosition(a1Pos string) bool {
	for _, p := range CornerPositions {
		if a1Pos == p {
			return true
		}
	}
	return false
}
