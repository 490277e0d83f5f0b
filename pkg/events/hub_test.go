package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatchup replays canned payloads for one channel.
type fakeCatchup struct {
	channel  string
	payloads [][]byte
}

func (f *fakeCatchup) Catchup(channel string, limit int) [][]byte {
	if channel != f.channel {
		return nil
	}
	if len(f.payloads) > limit {
		return f.payloads[len(f.payloads)-limit:]
	}
	return f.payloads
}

func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		hub.HandleConnection(r.Context(), conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func sendMessage(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func TestSubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(nil, 5*time.Second)
	srv := newHubServer(t, hub)
	conn := dialHub(t, srv)

	msg := readMessage(t, conn)
	assert.Equal(t, "connection.established", msg["type"])

	sendMessage(t, conn, ClientMessage{Action: "subscribe", Channel: ChannelFrames})
	msg = readMessage(t, conn)
	assert.Equal(t, "subscription.confirmed", msg["type"])
	assert.Equal(t, ChannelFrames, msg["channel"])

	require.Eventually(t, func() bool {
		return hub.subscriberCount(ChannelFrames) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(ChannelFrames, []byte(`{"type":"frame.created","n":1}`))
	msg = readMessage(t, conn)
	assert.Equal(t, EventTypeFrameCreated, msg["type"])

	// Events for other channels are not delivered: publish on agents,
	// then frames, and expect only the frames payload to arrive.
	hub.Broadcast(ChannelAgents, []byte(`{"type":"agent_event.created"}`))
	hub.Broadcast(ChannelFrames, []byte(`{"type":"frame.created","n":2}`))
	msg = readMessage(t, conn)
	assert.Equal(t, EventTypeFrameCreated, msg["type"])
	assert.Equal(t, float64(2), msg["n"])
}

func TestSubscribeReplaysCatchup(t *testing.T) {
	catchup := &fakeCatchup{
		channel: ChannelFrames,
		payloads: [][]byte{
			[]byte(`{"type":"frame.created","n":1}`),
			[]byte(`{"type":"frame.created","n":2}`),
		},
	}
	hub := NewHub(catchup, 5*time.Second)
	srv := newHubServer(t, hub)
	conn := dialHub(t, srv)

	readMessage(t, conn) // connection.established
	sendMessage(t, conn, ClientMessage{Action: "subscribe", Channel: ChannelFrames})
	readMessage(t, conn) // subscription.confirmed

	// Retained events arrive oldest first.
	first := readMessage(t, conn)
	second := readMessage(t, conn)
	assert.Equal(t, float64(1), first["n"])
	assert.Equal(t, float64(2), second["n"])
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(nil, 5*time.Second)
	srv := newHubServer(t, hub)
	conn := dialHub(t, srv)
	readMessage(t, conn)

	sendMessage(t, conn, ClientMessage{Action: "subscribe", Channel: ChannelAgents})
	readMessage(t, conn)
	require.Eventually(t, func() bool {
		return hub.subscriberCount(ChannelAgents) == 1
	}, 2*time.Second, 10*time.Millisecond)

	sendMessage(t, conn, ClientMessage{Action: "unsubscribe", Channel: ChannelAgents})
	require.Eventually(t, func() bool {
		return hub.subscriberCount(ChannelAgents) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// Broadcast after unsubscribe; a subsequent ping round-trip proves the
	// broadcast was never queued for this connection.
	hub.Broadcast(ChannelAgents, []byte(`{"type":"agent_event.created"}`))
	sendMessage(t, conn, ClientMessage{Action: "ping"})
	msg := readMessage(t, conn)
	assert.Equal(t, "pong", msg["type"])
}

func TestSubscribeRequiresChannel(t *testing.T) {
	hub := NewHub(nil, 5*time.Second)
	srv := newHubServer(t, hub)
	conn := dialHub(t, srv)
	readMessage(t, conn)

	sendMessage(t, conn, ClientMessage{Action: "subscribe"})
	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg["type"])
}

func TestBroadcastWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub(nil, time.Second)
	hub.Broadcast(ChannelFrames, []byte(`{}`))
	assert.Equal(t, 0, hub.ActiveConnections())
}

func TestPublisherRoutesChannels(t *testing.T) {
	rec := &recordingBroadcaster{}
	p := NewPublisher(rec)

	require.NoError(t, p.PublishFrameCreated(NewFrameCreatedPayload(testFrame())))
	require.NoError(t, p.PublishAgentEvent(NewAgentEventPayload(testAgentEvent())))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, ChannelFrames, rec.calls[0].channel)
	assert.Contains(t, string(rec.calls[0].payload), EventTypeFrameCreated)
	assert.Equal(t, ChannelAgents, rec.calls[1].channel)
	assert.Contains(t, string(rec.calls[1].payload), EventTypeAgentEvent)
}

type broadcastCall struct {
	channel string
	payload []byte
}

type recordingBroadcaster struct {
	calls []broadcastCall
}

func (r *recordingBroadcaster) Broadcast(channel string, payload []byte) {
	r.calls = append(r.calls, broadcastCall{channel: channel, payload: payload})
}
