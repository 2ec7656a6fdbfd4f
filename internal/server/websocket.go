// Package server exposes the battle engine over websockets and serves the
// gRPC health endpoint.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/magefree/deckbattle-server-go/internal/game/battle"
	"github.com/magefree/deckbattle-server-go/internal/repository"
)

const sendBuffer = 256

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. A client drives at most one battle
// at a time.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	battleID string
}

// Hub routes client messages to the engine and engine notifications back
// to the client that owns the battle.
type Hub struct {
	engine       *battle.Engine
	results      repository.ResultRepository
	logger       *zap.Logger
	writeTimeout time.Duration

	mu      sync.RWMutex
	clients map[*Client]struct{}
	owners  map[string]*Client
}

// NewHub creates a hub and installs it as the engine's notification
// handler. results may be nil.
func NewHub(engine *battle.Engine, results repository.ResultRepository, writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	h := &Hub{
		engine:       engine,
		results:      results,
		logger:       logger,
		writeTimeout: writeTimeout,
		clients:      make(map[*Client]struct{}),
		owners:       make(map[string]*Client),
	}
	engine.SetNotificationHandler(h.handleNotification)
	return h
}

// ServeHTTP upgrades the request and starts the client pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("remote", r.RemoteAddr))

	go h.writePump(client)
	go h.readPump(client)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	battleID := c.battleID
	if battleID != "" {
		delete(h.owners, battleID)
	}
	close(c.send)
	h.mu.Unlock()

	if battleID != "" {
		h.closeBattle(context.Background(), battleID)
	}
	h.logger.Debug("client disconnected", zap.String("battle_id", battleID))
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		h.handleMessage(context.Background(), c, msg)
	}
}

func (h *Hub) writePump(c *Client) {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// deliver queues a frame without blocking; a client that cannot keep up
// loses the frame.
func (h *Hub) deliver(c *Client, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
		h.logger.Warn("client send buffer full, dropping frame", zap.String("battle_id", c.battleID))
	}
}

func (h *Hub) handleNotification(n battle.Notification) {
	h.mu.RLock()
	owner := h.owners[n.BattleID]
	h.mu.RUnlock()

	if owner != nil {
		frame, err := encode(MsgBattleEvents, n.BattleID, n)
		if err != nil {
			h.logger.Error("failed to encode notification", zap.Error(err))
		} else {
			h.deliver(owner, frame)
		}
	}

	if n.Type == battle.NotificationBattleEnded {
		h.logger.Info("battle finished", zap.String("battle_id", n.BattleID))
	}
}

// closeBattle removes the battle from the engine and records its summary.
func (h *Hub) closeBattle(ctx context.Context, battleID string) (battle.Summary, bool) {
	summary, err := h.engine.EndBattle(battleID)
	if err != nil {
		return battle.Summary{}, false
	}
	if h.results != nil {
		if err := h.results.Save(ctx, summary); err != nil {
			h.logger.Error("failed to save battle result",
				zap.String("battle_id", battleID),
				zap.Error(err),
			)
		}
	}
	return summary, true
}
