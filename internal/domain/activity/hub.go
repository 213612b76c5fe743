package activity

import (
	"encoding/json"
	"log"
	"slices"
	"sync"
	"time"

	"equiplend/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

const EventBorrowUpdated = "borrow.updated"

// Event is pushed to every public feed subscriber.
type Event struct {
	Type    string            `json:"type"`
	Payload domain.BorrowView `json:"payload"`
}

type connection struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans public feed events out to anonymous websocket subscribers.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	now         func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[*connection]struct{}),
		now:         time.Now,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
}

// Subscribers returns the number of open connections.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Publish redacts v and broadcasts it when its status belongs on the public
// feed. Slow clients miss events rather than block the caller.
func (h *Hub) Publish(v domain.BorrowView) {
	if !slices.Contains(domain.PublicStatuses, v.Status) {
		return
	}
	v.Decorate(h.now())
	data, err := json.Marshal(Event{Type: EventBorrowUpdated, Payload: v.Redacted()})
	if err != nil {
		log.Printf("activity_publish_failed request_id=%d error=%q", v.ID, err.Error())
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections {
		delete(h.connections, c)
		close(c.send)
	}
}

// serve runs the read and write loops for conn until it disconnects.
func (h *Hub) serve(conn *websocket.Conn) {
	c := &connection{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// readPump only drains control frames; subscribers never send data.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
