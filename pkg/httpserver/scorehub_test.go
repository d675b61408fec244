package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeboard/rewards-core/internal/scoring"
	"go.uber.org/zap"
)

func dialHub(t *testing.T, hub *ScoreHub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleSubscribe))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestScoreHub_BroadcastsAwards(t *testing.T) {
	hub := NewScoreHub(zap.NewNop())
	feed := make(chan scoring.Award)
	go hub.Run(feed)

	conn := dialHub(t, hub)

	// Wait until the subscriber is registered before feeding an award.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, time.Second, 5*time.Millisecond)

	sent := scoring.Award{
		ActorID: "alice",
		Kind:    scoring.KindTrade,
		Points:  50,
		At:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	feed <- sent

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var received scoring.Award
	require.NoError(t, json.Unmarshal(payload, &received))
	assert.Equal(t, sent.ActorID, received.ActorID)
	assert.Equal(t, sent.Kind, received.Kind)
	assert.Equal(t, sent.Points, received.Points)

	close(feed)
}

func TestScoreHub_ClosedFeedDisconnectsSubscribers(t *testing.T) {
	hub := NewScoreHub(zap.NewNop())
	feed := make(chan scoring.Award)
	go hub.Run(feed)

	conn := dialHub(t, hub)

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, time.Second, 5*time.Millisecond)

	close(feed)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection closes when the feed ends")
}

func TestScoreHub_UnsubscribeOnDisconnect(t *testing.T) {
	hub := NewScoreHub(zap.NewNop())
	feed := make(chan scoring.Award)
	go hub.Run(feed)
	defer close(feed)

	conn := dialHub(t, hub)

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 0
	}, time.Second, 5*time.Millisecond)
}
