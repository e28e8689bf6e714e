package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/JuniperScripture/internal/logging"
	"github.com/FocuswithJustin/JuniperScripture/internal/reader"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	maxMessage = 512
)

// ViewMessage announces a newly published view. Clients fetch the verses
// through /current or /verses.
type ViewMessage struct {
	Type        string `json:"type"` // "view", or "closed" after a failed switch
	Translation string `json:"translation"`
	Book        int    `json:"book"`
	Chapter     int    `json:"chapter"`
	Verse       int    `json:"verse,omitempty"`
	Reference   string `json:"reference"`
	Seq         uint64 `json:"seq"`
	Timestamp   string `json:"timestamp"`
}

func newViewMessage(p reader.Published) ViewMessage {
	target := p.TargetAddress()
	kind := "view"
	if !p.HasTranslation() {
		kind = "closed"
	}
	return ViewMessage{
		Type:        kind,
		Translation: p.Translation.ID,
		Book:        p.Book,
		Chapter:     p.Chapter,
		Verse:       target.Verse,
		Reference:   target.String(),
		Seq:         p.Seq,
		Timestamp:   timestamp(),
	}
}

// Client represents a WebSocket client connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains active WebSocket connections and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run handles registration and broadcasting until ctx is done, then
// disconnects every client. Run must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_connected", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_disconnected", n)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client is not keeping up; drop it.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg ViewMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("view_marshal_failed", "error", err.Error())
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logging.Warn("broadcast_dropped", "reason", "channel full")
	}
}

func (s *Server) upgrader() websocket.Upgrader {
	allowed := s.cfg.AllowedOrigins
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if len(allowed) == 0 || origin == "" {
				return true
			}
			for _, o := range allowed {
				if o == origin {
					return true
				}
			}
			logging.Warn("websocket_origin_rejected", "origin", origin)
			return false
		},
	}
}

// handleWebSocket registers a client and sends it the current view.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket_upgrade_failed", "error", err.Error())
		return
	}

	client := &Client{hub: s.hub, conn: conn, send: make(chan []byte, 16)}
	if p, ok := s.session.Current(); ok {
		if data, err := json.Marshal(newViewMessage(p)); err == nil {
			client.send <- data
		}
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains client messages so control frames are processed.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error("websocket_unexpected_close", "error", err.Error())
			}
			return
		}
	}
}

// writePump writes queued messages, one JSON document per frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
