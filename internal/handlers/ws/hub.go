package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/cache"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/metrics"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sendBuffer      = 64
	compressMinSize = 512
	writeWait       = 10 * time.Second
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Client is one live connection. A user may hold several.
type Client struct {
	ID           string
	UserID       string
	SupportsGzip bool

	conn     Conn
	send     chan []byte
	lastPong time.Time
	done     chan struct{}
	once     sync.Once
}

// Hub fans realtime events out to connected users.
type Hub struct {
	clients      map[string]map[string]*Client
	clientsMux   sync.RWMutex
	presence     *cache.Presence
	logger       *zap.Logger
	pingInterval time.Duration
	pongTimeout  time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
}

var _ service.Notifier = (*Hub)(nil)

// NewHub starts the health checker; call Close to stop it.
func NewHub(presence *cache.Presence, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := &Hub{
		clients:      make(map[string]map[string]*Client),
		presence:     presence,
		logger:       logger,
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
		stop:         make(chan struct{}),
	}
	go hub.connectionHealthChecker()
	return hub
}

// Register adds a connection and starts its writer.
func (h *Hub) Register(ctx context.Context, userID string, conn Conn, supportsGzip bool) *Client {
	client := &Client{
		ID:           uuid.NewString(),
		UserID:       userID,
		SupportsGzip: supportsGzip,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		lastPong:     time.Now(),
		done:         make(chan struct{}),
	}

	h.clientsMux.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[string]*Client)
	}
	h.clients[userID][client.ID] = client
	total := h.countLocked()
	h.clientsMux.Unlock()

	go h.writePump(client)

	metrics.WSConnected()
	if err := h.presence.Connect(ctx, userID); err != nil {
		h.logger.Warn("presence connect failed", zap.String("user_id", userID), zap.Error(err))
	}
	h.logger.Info("websocket connected",
		zap.String("user_id", userID),
		zap.String("conn_id", client.ID),
		zap.Int("total", total),
		zap.Bool("gzip", supportsGzip),
	)
	return client
}

// Unregister removes a connection. Calling it twice is harmless.
func (h *Hub) Unregister(ctx context.Context, client *Client) {
	removed := false
	h.clientsMux.Lock()
	if conns, ok := h.clients[client.UserID]; ok {
		if _, ok := conns[client.ID]; ok {
			delete(conns, client.ID)
			removed = true
		}
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	total := h.countLocked()
	h.clientsMux.Unlock()

	client.once.Do(func() { close(client.done) })
	if !removed {
		return
	}

	metrics.WSDisconnected()
	if err := h.presence.Disconnect(ctx, client.UserID); err != nil {
		h.logger.Warn("presence disconnect failed", zap.String("user_id", client.UserID), zap.Error(err))
	}
	h.logger.Info("websocket disconnected",
		zap.String("user_id", client.UserID),
		zap.String("conn_id", client.ID),
		zap.Int("total", total),
	)
}

// Pong records a keepalive answer from client.
func (h *Hub) Pong(ctx context.Context, client *Client) {
	h.clientsMux.Lock()
	client.lastPong = time.Now()
	h.clientsMux.Unlock()
	if err := h.presence.Refresh(ctx, client.UserID); err != nil {
		h.logger.Debug("presence refresh failed", zap.String("user_id", client.UserID), zap.Error(err))
	}
}

// Notify implements service.Notifier.
func (h *Hub) Notify(userIDs []string, event service.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal event failed", zap.String("type", event.Type), zap.Error(err))
		return
	}
	sent := 0
	for _, client := range h.clientsFor(userIDs) {
		if h.enqueue(client, data) {
			sent++
		}
	}
	if sent > 0 {
		metrics.WSEventSent(event.Type)
	}
}

// SendTo queues v for one connection.
func (h *Hub) SendTo(client *Client, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.enqueue(client, data)
	return nil
}

func (h *Hub) IsOnline(userID string) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients[userID]) > 0
}

// Count returns the number of open connections
func (h *Hub) Count() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return h.countLocked()
}

// Close drops every connection and stops background work.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
	h.clientsMux.RLock()
	var all []*Client
	for _, conns := range h.clients {
		for _, c := range conns {
			all = append(all, c)
		}
	}
	h.clientsMux.RUnlock()
	for _, c := range all {
		_ = c.conn.Close()
		h.Unregister(context.Background(), c)
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

func (h *Hub) clientsFor(userIDs []string) []*Client {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	var out []*Client
	for _, id := range userIDs {
		for _, c := range h.clients[id] {
			out = append(out, c)
		}
	}
	return out
}

// enqueue never blocks: a client whose buffer is full misses the event.
func (h *Hub) enqueue(client *Client, data []byte) bool {
	select {
	case <-client.done:
		return false
	default:
	}
	select {
	case client.send <- data:
		return true
	default:
		h.logger.Warn("websocket send buffer full, dropping event",
			zap.String("user_id", client.UserID),
			zap.String("conn_id", client.ID),
		)
		return false
	}
}

// writePump owns all writes to the connection.
func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-client.done:
			return
		case data := <-client.send:
			frameType := websocket.TextMessage
			if client.SupportsGzip && len(data) > compressMinSize {
				if compressed, err := CompressMessage(data); err == nil && len(compressed) < len(data) {
					data = compressed
					frameType = websocket.BinaryMessage
				}
			}
			if err := client.conn.WriteMessage(frameType, data); err != nil {
				h.logger.Debug("websocket write failed", zap.String("user_id", client.UserID), zap.Error(err))
				_ = client.conn.Close()
				h.Unregister(context.Background(), client)
				return
			}
		case <-ticker.C:
			if err := client.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.logger.Debug("ping failed", zap.String("user_id", client.UserID), zap.Error(err))
				_ = client.conn.Close()
				h.Unregister(context.Background(), client)
				return
			}
		}
	}
}

// connectionHealthChecker drops connections that stopped answering pings
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		now := time.Now()
		var dead []*Client
		h.clientsMux.RLock()
		for _, conns := range h.clients {
			for _, c := range conns {
				if now.Sub(c.lastPong) > h.pongTimeout {
					dead = append(dead, c)
				}
			}
		}
		h.clientsMux.RUnlock()

		for _, c := range dead {
			h.logger.Info("removing dead websocket connection", zap.String("user_id", c.UserID))
			_ = c.conn.Close()
			h.Unregister(context.Background(), c)
		}
	}
}
