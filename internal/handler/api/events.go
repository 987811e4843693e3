package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsSendBuffer = 64
)

// EventEnvelope wraps every message pushed to websocket clients.
type EventEnvelope struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

type eventClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *EventHub

	mu            sync.Mutex
	subscriptions map[string]bool
}

// wants reports whether the client asked for eventType. A client with no
// subscriptions receives everything.
func (c *eventClient) wants(eventType string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscriptions) == 0 || c.subscriptions[eventType]
}

// EventHub fans sync and connectivity events out to websocket clients.
type EventHub struct {
	mu       sync.RWMutex
	clients  map[string]*eventClient
	upgrader websocket.Upgrader
}

var _ domain.EventPublisher = (*EventHub)(nil)

// NewEventHub creates a hub accepting connections from allowedOrigins.
// "*" or an empty list accepts any origin.
func NewEventHub(allowedOrigins []string) *EventHub {
	h := &EventHub{clients: make(map[string]*eventClient)}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 || utils.Contains(allowedOrigins, "*") {
				return true
			}
			return utils.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Publish never blocks. Clients that cannot keep up are disconnected.
func (h *EventHub) Publish(eventType string, data map[string]interface{}) {
	msg, err := json.Marshal(EventEnvelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		logger.Error("Failed to encode event", logger.String("type", eventType), logger.ErrorField(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		if !c.wants(eventType) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			logger.Warn("Event client too slow, disconnecting", logger.String("client_id", id))
			delete(h.clients, id)
			close(c.send)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}

func (h *EventHub) register(c *eventClient) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	logger.Debug("Event client connected", logger.String("client_id", c.id), logger.Int("clients", n))
}

func (h *EventHub) unregister(c *eventClient) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	logger.Debug("Event client disconnected", logger.String("client_id", c.id))
}

// Stream handles GET /ws/sync
func (h *EventHub) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := &eventClient{
		id:            uuid.New().String(),
		conn:          conn,
		send:          make(chan []byte, wsSendBuffer),
		hub:           h,
		subscriptions: make(map[string]bool),
	}
	h.register(client)

	go client.writePump()
	go client.readPump()
}

type clientMessage struct {
	Action string   `json:"action"`
	Events []string `json:"events"`
}

// readPump handles subscribe and unsubscribe requests until the socket closes.
func (c *eventClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Event client read error", logger.String("client_id", c.id), logger.ErrorField(err))
			}
			return
		}

		c.mu.Lock()
		switch msg.Action {
		case "subscribe":
			for _, e := range msg.Events {
				c.subscriptions[e] = true
			}
		case "unsubscribe":
			for _, e := range msg.Events {
				delete(c.subscriptions, e)
			}
		}
		c.mu.Unlock()
	}
}

func (c *eventClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
