package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/tradeboard/rewards-core/internal/scoring"
	"go.uber.org/zap"
)

// ScoreHub fans award feed events out to websocket subscribers so the
// dashboard can show points land in real time.
type ScoreHub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan scoring.Award
}

// NewScoreHub creates a hub reading awards from feed. The hub owns the
// receiving side of the channel; Run exits when feed is closed.
func NewScoreHub(logger *zap.Logger) *ScoreHub {
	return &ScoreHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from another origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan scoring.Award),
	}
}

// Run consumes the award feed and broadcasts until the feed closes.
func (h *ScoreHub) Run(feed <-chan scoring.Award) {
	for award := range feed {
		h.broadcast(award)
	}
	h.closeAll()
}

func (h *ScoreHub) broadcast(award scoring.Award) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, outbox := range h.clients {
		select {
		case outbox <- award:
		default:
			// Slow subscriber: drop it rather than stall the feed.
			h.logger.Warn("score-feed-subscriber-dropped",
				zap.String("remote", conn.RemoteAddr().String()))
			close(outbox)
			delete(h.clients, conn)
		}
	}
}

func (h *ScoreHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, outbox := range h.clients {
		close(outbox)
		delete(h.clients, conn)
	}
}

// HandleSubscribe upgrades the connection and streams awards until the
// client disconnects.
func (h *ScoreHub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket-upgrade-failed", zap.Error(err))
		return
	}

	outbox := make(chan scoring.Award, 16)
	h.mu.Lock()
	h.clients[conn] = outbox
	h.mu.Unlock()

	h.logger.Debug("score-feed-subscribed",
		zap.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(conn, outbox)
	h.readLoop(conn)
}

func (h *ScoreHub) writeLoop(conn *websocket.Conn, outbox <-chan scoring.Award) {
	defer func() {
		_ = conn.Close()
	}()

	for award := range outbox {
		payload, err := json.Marshal(award)
		if err != nil {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readLoop drains client frames so pings are answered and disconnects are
// noticed; subscribers send no application messages.
func (h *ScoreHub) readLoop(conn *websocket.Conn) {
	defer h.unsubscribe(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ScoreHub) unsubscribe(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if outbox, ok := h.clients[conn]; ok {
		close(outbox)
		delete(h.clients, conn)
	}
	_ = conn.Close()
}
