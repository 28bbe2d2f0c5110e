package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"nhooyr.io/websocket"

	"battleship-salvo/internal/codec"
)

type client struct {
	id   uint64
	send chan []byte
}

// Hub pushes session events to every connected WebSocket. Publish never
// blocks: a client whose buffer is full misses the event and should re-read
// /v1/status.
type Hub struct {
	log     *log.Logger
	origins []string

	mu      sync.RWMutex
	clients map[*client]struct{}
	nextID  uint64
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{log: logger, clients: map[*client]struct{}{}}
}

// AllowOrigins sets the host patterns accepted for cross-origin sockets.
func (h *Hub) AllowOrigins(patterns []string) { h.origins = patterns }

func (h *Hub) Publish(ev codec.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("encode event", "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("event dropped", "client", c.id, "type", ev.Type)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.log.Warn("websocket accept", "err", err)
		return
	}

	h.mu.Lock()
	h.nextID++
	c := &client{id: h.nextID, send: make(chan []byte, 64)}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("client connected", "client", c.id)

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
		h.log.Info("client disconnected", "client", c.id)
	}()

	// Clients only listen; CloseRead handles control frames and ends ctx on close.
	ctx := conn.CloseRead(r.Context())

	hello, _ := json.Marshal(codec.Event{Type: "hello"})
	if err := conn.Write(ctx, websocket.MessageText, hello); err != nil {
		return
	}

	ping := time.NewTicker(15 * time.Second)
	defer ping.Stop()
	for {
		select {
		case msg := <-c.send:
			if err := write(ctx, conn, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}
