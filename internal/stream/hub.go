// Package stream pushes rendered frames to browsers over WebSocket.
package stream

import (
	"bytes"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mocap-pair-viewer/internal/logging"
	"mocap-pair-viewer/internal/output"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 4 // frames queued per client before dropping
)

// Hub fans frames out to every connected client. Slow clients drop frames
// instead of stalling the frame loop.
type Hub struct {
	Logger *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	info    []byte
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns a hub accepting connections from any origin.
func NewHub(logger *slog.Logger) *Hub {
	logger = logging.OrNop(logger)
	return &Hub{
		Logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// SetInfo sets the JSON text message sent to each client on connect.
func (h *Hub) SetInfo(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.info = data
	h.mu.Unlock()
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	info := h.info
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.Logger.Info("client connected", "remote", r.RemoteAddr)

	go h.writePump(c, info)

	// Reads only detect the close; clients have nothing to say.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	h.Logger.Info("client disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) writePump(c *client, info []byte) {
	defer c.conn.Close()
	if info != nil {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, info); err != nil {
			return
		}
	}
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			h.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues data as a binary message to every client.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.Logger.Debug("dropping frame for slow client")
		}
	}
}

// BroadcastImage encodes img as lossless WebP and broadcasts it. Encoding is
// skipped when nobody is listening.
func (h *Hub) BroadcastImage(img image.Image) error {
	if h.Clients() == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := output.Encode(&buf, img, output.WebP); err != nil {
		return err
	}
	h.Broadcast(buf.Bytes())
	return nil
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
