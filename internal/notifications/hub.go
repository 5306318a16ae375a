package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	maxFeedConns = 10000

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// ErrHubFull is returned by Register when the connection limit is reached.
var ErrHubFull = errors.New("live feed connection limit reached")

// FeedHub fans events out to every connected live feed socket.
type FeedHub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewFeedHub creates an empty hub.
func NewFeedHub() *FeedHub {
	return &FeedHub{clients: make(map[*Client]struct{})}
}

// Client is one live feed connection. The feed is server-to-client only; inbound frames are
// read and discarded to keep ping/pong and close handling alive.
type Client struct {
	hub  *FeedHub
	Conn *websocket.Conn
	Send chan []byte
	once sync.Once
}

// Register adds a connection to the hub.
func (h *FeedHub) Register(conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || len(h.clients) >= maxFeedConns {
		return nil, ErrHubFull
	}
	c := &Client{hub: h, Conn: conn, Send: make(chan []byte, sendBuffer)}
	h.clients[c] = struct{}{}
	middleware.ActiveWebSockets.Inc()
	return c, nil
}

// Unregister removes the client and closes its send channel. Safe to call more than once.
func (h *FeedHub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		middleware.ActiveWebSockets.Dec()
	}
	c.once.Do(func() { close(c.Send) })
}

// Len returns the number of connected clients.
func (h *FeedHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll queues message on every client. Slow clients whose buffer is full miss it.
func (h *FeedHub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.Send <- message:
		default:
			middleware.Logger.Warn("live feed client too slow, dropping event")
		}
	}
}

// StartWiring relays every event published through n to the hub's clients.
func (h *FeedHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartEventSubscriber(ctx, func(payload string) {
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown closes every connection with a going-away frame and refuses new ones.
func (h *FeedHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if c.Conn != nil {
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
		}
		h.Unregister(c)
	}
	return nil
}

// ReadPump discards inbound frames until the peer goes away, then unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Debug("live feed read error", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// WritePump writes queued events and periodic pings until the send channel closes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
