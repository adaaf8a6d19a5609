package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Dan9191/finance-insights/internal/middleware"
	"github.com/Dan9191/finance-insights/internal/service"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 8
)

// Snapshotter re-runs the read-aggregate pipeline for a user
type Snapshotter interface {
	Snapshot(ctx context.Context, userID string) (*service.Snapshot, error)
}

// Message is what subscribers receive
type Message struct {
	Type string `json:"type"`
	*service.Snapshot
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks websocket subscribers per user and pushes a fresh snapshot to
// them on every change. Delivery is best effort and unordered.
type Hub struct {
	snapshots Snapshotter
	log       *logrus.Logger
	upgrader  websocket.Upgrader
	refresh   chan string

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

// NewHub creates a hub; call Run to start processing changes
func NewHub(snapshots Snapshotter, log *logrus.Logger) *Hub {
	return &Hub{
		snapshots: snapshots,
		log:       log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		refresh: make(chan string, 256),
		clients: make(map[string]map[*client]struct{}),
	}
}

// Publish schedules a refresh for userID. It never blocks; when the queue is
// full the refresh is dropped and the next change catches up.
func (h *Hub) Publish(userID string) {
	select {
	case h.refresh <- userID:
	default:
		h.log.WithField("user", userID).Warn("Realtime refresh queue full, dropping")
	}
}

// Run processes local publishes and database events until ctx is done.
// events may be nil when no database listener is attached.
func (h *Hub) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case userID := <-h.refresh:
			h.push(ctx, userID)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.UserID == "" {
				for _, userID := range h.users() {
					h.push(ctx, userID)
				}
				continue
			}
			h.push(ctx, ev.UserID)
		}
	}
}

// ServeWS upgrades an authenticated request and subscribes it
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	h.log.WithField("user", userID).Info("Realtime subscriber connected")

	go h.writePump(c)
	h.Publish(userID)
	h.readPump(c)
}

// Subscribers returns the number of live connections for userID
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

func (h *Hub) users() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		out = append(out, userID)
	}
	return out
}

func (h *Hub) push(ctx context.Context, userID string) {
	if h.Subscribers(userID) == 0 {
		return
	}

	snap, err := h.snapshots.Snapshot(ctx, userID)
	if err != nil {
		h.log.WithError(err).WithField("user", userID).Error("Failed to refresh realtime snapshot")
		return
	}
	payload, err := json.Marshal(Message{Type: "metrics", Snapshot: snap})
	if err != nil {
		h.log.WithError(err).Error("Failed to encode realtime snapshot")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			// slow reader; it will get the next snapshot
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("user", c.userID).Warn("Realtime subscriber error")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
