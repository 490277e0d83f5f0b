package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/chessops/dashboard/pkg/events"
)

// reconnectDelay is the wait between connection attempts to the upstream
// stream. Flat backoff: the upstream is a single local pipeline process,
// not a fleet.
const reconnectDelay = 3 * time.Second

// liveEnvelope is the wire shape of one upstream message. Exactly one of
// Frame or Event is set, matching the dashboard's own payload format.
type liveEnvelope struct {
	Type  string          `json:"type"`
	Frame json.RawMessage `json:"frame,omitempty"`
	Event json.RawMessage `json:"event,omitempty"`
}

// Source consumes a live upstream WebSocket stream and routes each message
// through the Ingestor. Messages are processed strictly in arrival order;
// malformed ones are dropped (logged) without breaking the stream.
//
// Stop cancels the read loop and closes the connection — the socket never
// outlives the Source.
type Source struct {
	url      string
	ingestor *Ingestor
	logger   *slog.Logger

	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSource creates a live feed source for the given WebSocket URL.
func NewSource(url string, ingestor *Ingestor) *Source {
	return &Source{
		url:      url,
		ingestor: ingestor,
		logger:   slog.Default().With("component", "feed-source", "url", url),
	}
}

// Start spawns the connect/read loop. It reconnects on failure until Stop
// is called or ctx is cancelled.
func (s *Source) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(runCtx)
	}()
}

// Stop cancels the read loop and waits for it to exit. Idempotent.
func (s *Source) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
	s.wg.Wait()
}

func (s *Source) run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("Live stream disconnected, will retry",
				"retry_in", reconnectDelay, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// consume dials the upstream and reads messages until the connection
// drops or ctx is cancelled.
func (s *Source) consume(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	s.logger.Info("Connected to live stream")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		s.route(data)
	}
}

// route dispatches one inbound message to the ingestor. Parse failures are
// already logged by the ingestor; unknown types are logged here. Either
// way the message is dropped and the stream continues.
func (s *Source) route(data []byte) {
	var env liveEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("Dropping undecodable live message", "error", err)
		return
	}

	switch env.Type {
	case events.EventTypeFrameCreated:
		_ = s.ingestor.IngestFrame(env.Frame)
	case events.EventTypeAgentEvent:
		_ = s.ingestor.IngestAgentEvent(env.Event)
	default:
		s.logger.Warn("Dropping live message with unknown type", "type", env.Type)
	}
}
