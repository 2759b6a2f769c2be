package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tutorhub/internal/metrics"
	"tutorhub/internal/realtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMsgSize     = 64 * 1024
	sendBufferSize = 64
	refetchTimeout = 10 * time.Second
)

type Subscriber interface {
	Subscribe(cfg realtime.SubscriptionConfig, h realtime.Handler) (*realtime.Subscription, error)
}

// client is one open socket. A user may hold several at once.
type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	unread atomic.Int64
}

// Hub keeps every open chat socket in sync with the messages table. Each
// socket subscribes to inserts and updates addressed to its user: an
// insert bumps the local unread counter and is pushed as new_message; an
// update triggers a full conversation refetch.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	broker  Subscriber
	service *Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewHub(broker Subscriber, service *Service, m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		broker:  broker,
		service: service,
		metrics: m,
		logger:  logger.With(zap.String("component", "chat_hub")),
	}
}

// ServeWS runs the connection until the client goes away.
func (h *Hub) ServeWS(ctx context.Context, conn *websocket.Conn, userID int64) {
	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	h.register(c)
	defer h.unregister(c)

	sub, err := h.broker.Subscribe(realtime.SubscriptionConfig{
		Event:  realtime.EventAll,
		Table:  messagesTable,
		Filter: fmt.Sprintf("recipient_id=eq.%d", userID),
	}, func(ev realtime.Event) { h.reconcile(c, ev) })
	if err != nil {
		h.logger.Error("subscribe to messages", zap.Int64("user_id", userID), zap.Error(err))
		_ = conn.Close()
		return
	}
	defer sub.Unsubscribe()

	go h.writePump(c)
	h.pushConversations(ctx, c)
	h.readPump(ctx, c)
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		if h.metrics != nil {
			h.metrics.WSConnections.Dec()
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if h.metrics != nil {
		h.metrics.WSConnections.Dec()
	}
}

func (h *Hub) reconcile(c *client, ev realtime.Event) {
	switch ev.Type {
	case realtime.EventInsert:
		total := c.unread.Add(1)
		h.deliver(c, WSEvent{Type: EventNewMessage, Payload: ev.Record, UnreadTotal: total})
	case realtime.EventUpdate:
		// Handlers run on the publisher's goroutine; the refetch must not
		// hold up the write that triggered it.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
			defer cancel()
			h.pushConversations(ctx, c)
		}()
	}
}

func (h *Hub) pushConversations(ctx context.Context, c *client) {
	convs, err := h.service.FetchConversations(ctx, c.userID)
	if err != nil {
		h.logger.Warn("refetch conversations", zap.Int64("user_id", c.userID), zap.Error(err))
		h.deliver(c, WSEvent{Type: EventError, Payload: "failed to load conversations", UnreadTotal: c.unread.Load()})
		return
	}
	var total int64
	for _, conv := range convs {
		total += int64(conv.UnreadCount)
	}
	c.unread.Store(total)
	h.deliver(c, WSEvent{Type: EventConversations, Payload: convs, UnreadTotal: total})
}

// deliver queues ev for c. Slow clients lose events rather than block the
// publisher.
func (h *Hub) deliver(c *client, ev WSEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal ws event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn("ws client too slow, dropping event", zap.Int64("user_id", c.userID), zap.String("type", ev.Type))
	}
}

func (h *Hub) readPump(ctx context.Context, c *client) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("ws read", zap.Int64("user_id", c.userID), zap.Error(err))
			}
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "mark_read":
			if _, err := h.service.MarkMessagesAsRead(ctx, c.userID, msg.UserID); err != nil {
				h.logger.Warn("ws mark read", zap.Int64("user_id", c.userID), zap.Error(err))
				h.deliver(c, WSEvent{Type: EventError, Payload: "failed to mark messages as read", UnreadTotal: c.unread.Load()})
			}
		case "refresh":
			h.pushConversations(ctx, c)
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
