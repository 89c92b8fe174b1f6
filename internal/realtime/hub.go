package realtime

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/charlesng35/collegehub/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10

	defaultBufferSize = 32
)

// Message represents a JSON payload delivered to dashboard subscribers.
type Message struct {
	Stream string `json:"stream"`
	Event  string `json:"event"`
	Data   any    `json:"data,omitempty"`
}

type controlMessage struct {
	Action string `json:"action"`
}

// Hub tracks the websocket connections of signed-in accounts on this instance.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*connection]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs a realtime hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     sameOrigin,
		},
		log: logger.WithModule("realtime"),
	}
}

// Serve upgrades the request and streams notification events for accountID until the socket closes.
func (h *Hub) Serve(accountID string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newConnection(h, conn, accountID)
	h.register(client)

	go client.writeLoop()
	client.readLoop()
}

// BroadcastToUser delivers a message to every open connection of accountID.
func (h *Hub) BroadcastToUser(accountID string, message Message) {
	if accountID == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	message.Stream = StreamNotifications
	for client := range h.clients[accountID] {
		h.enqueue(client, message)
	}
}

// Broadcast delivers a message to every connected account.
func (h *Hub) Broadcast(message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	message.Stream = StreamNotifications
	for _, clients := range h.clients {
		for client := range clients {
			h.enqueue(client, message)
		}
	}
}

// ConnectionCount reports the number of open sockets for accountID.
func (h *Hub) ConnectionCount(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

func (h *Hub) register(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.accountID] == nil {
		h.clients[client.accountID] = make(map[*connection]struct{})
	}
	h.clients[client.accountID][client] = struct{}{}
}

func (h *Hub) unregister(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clients[client.accountID]
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.accountID)
	}
}

// enqueue must be called with h.mu held for reading.
func (h *Hub) enqueue(client *connection, message Message) {
	select {
	case client.send <- message:
	default:
		h.log.Warn("dropping slow websocket client", zap.String("account_id", client.accountID))
		go client.close()
	}
}

type connection struct {
	hub       *Hub
	socket    *websocket.Conn
	accountID string
	send      chan Message
	done      chan struct{}
	once      sync.Once
}

func newConnection(hub *Hub, conn *websocket.Conn, accountID string) *connection {
	return &connection{
		hub:       hub,
		socket:    conn,
		accountID: accountID,
		send:      make(chan Message, defaultBufferSize),
		done:      make(chan struct{}),
	}
}

func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket closed", zap.String("account_id", c.accountID), zap.Error(err))
			}
			return
		}

		var ctrl controlMessage
		if err := json.Unmarshal(payload, &ctrl); err != nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(ctrl.Action), "ping") {
			select {
			case c.send <- Message{Stream: StreamNotifications, Event: "pong"}:
			case <-c.done:
				return
			default:
			}
		}
	}
}

func (c *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		close(c.done)
		_ = c.socket.Close()
	})
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originHost := hostWithoutPort(origin)
	return originHost == hostWithoutPort(r.Host) || isLoopback(originHost)
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	if idx := strings.Index(host, "/"); idx >= 0 {
		host = host[:idx]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}
