package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tutorhub/internal/realtime"
)

const (
	defaultHeartbeat = 25 * time.Second
	defaultReconnect = 3 * time.Second
	phoenixVersion   = "1.0.0"
)

// Publisher receives decoded change events.
type Publisher interface {
	Publish(ev realtime.Event)
}

type RealtimeConfig struct {
	Schema         string
	Tables         []string
	Heartbeat      time.Duration
	ReconnectDelay time.Duration
}

// Bridge joins Supabase Realtime postgres_changes channels and republishes
// every row change into an in-process publisher, so subscribers see
// database writes made by any instance.
type Bridge struct {
	client    *Client
	pub       Publisher
	schema    string
	tables    []string
	heartbeat time.Duration
	reconnect time.Duration
	dialer    *websocket.Dialer
	logger    *zap.Logger

	ref atomic.Uint64
}

func (c *Client) RealtimeBridge(pub Publisher, cfg RealtimeConfig) *Bridge {
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = defaultHeartbeat
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnect
	}
	return &Bridge{
		client:    c,
		pub:       pub,
		schema:    cfg.Schema,
		tables:    cfg.Tables,
		heartbeat: cfg.Heartbeat,
		reconnect: cfg.ReconnectDelay,
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:    c.logger.With(zap.String("component", "supabase_realtime")),
	}
}

// Run forwards events until ctx is cancelled, reconnecting after failures.
func (b *Bridge) Run(ctx context.Context) error {
	if len(b.tables) == 0 {
		return fmt.Errorf("no tables to subscribe to")
	}
	for {
		err := b.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warn("realtime connection lost", zap.Error(err), zap.Duration("retry_in", b.reconnect))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.reconnect):
		}
	}
}

type phxMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
	JoinRef *string         `json:"join_ref,omitempty"`
}

func (b *Bridge) session(ctx context.Context) error {
	u := fmt.Sprintf("%s?apikey=%s&vsn=%s", b.client.realtimeURL, url.QueryEscape(b.client.serviceKey), phoenixVersion)
	conn, _, err := b.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	var wmu sync.Mutex
	send := func(msg phxMessage) error {
		wmu.Lock()
		defer wmu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(msg)
	}

	for _, table := range b.tables {
		if err := send(b.joinMessage(table)); err != nil {
			return fmt.Errorf("join %s: %w", table, err)
		}
	}
	b.logger.Info("realtime connected", zap.Strings("tables", b.tables))

	go func() {
		ticker := time.NewTicker(b.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ref := b.nextRef()
				if err := send(phxMessage{Topic: "phoenix", Event: "heartbeat", Payload: json.RawMessage(`{}`), Ref: &ref}); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		b.dispatch(raw)
	}
}

func (b *Bridge) joinMessage(table string) phxMessage {
	ref := b.nextRef()
	payload, _ := json.Marshal(map[string]any{
		"config": map[string]any{
			"postgres_changes": []map[string]string{
				{"event": "*", "schema": b.schema, "table": table},
			},
		},
	})
	return phxMessage{
		Topic:   b.topic(table),
		Event:   "phx_join",
		Payload: payload,
		Ref:     &ref,
		JoinRef: &ref,
	}
}

func (b *Bridge) topic(table string) string {
	return fmt.Sprintf("realtime:%s:%s", b.schema, table)
}

func (b *Bridge) nextRef() string {
	return strconv.FormatUint(b.ref.Add(1), 10)
}

type changeData struct {
	Type            string         `json:"type"`
	Schema          string         `json:"schema"`
	Table           string         `json:"table"`
	Record          map[string]any `json:"record"`
	OldRecord       map[string]any `json:"old_record"`
	CommitTimestamp string         `json:"commit_timestamp"`
}

func (b *Bridge) dispatch(raw []byte) {
	var msg phxMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		b.logger.Debug("realtime frame not json", zap.Error(err))
		return
	}

	switch msg.Event {
	case "postgres_changes":
		var p struct {
			Data changeData `json:"data"`
		}
		dec := json.NewDecoder(bytes.NewReader(msg.Payload))
		dec.UseNumber()
		if err := dec.Decode(&p); err != nil {
			b.logger.Warn("realtime change payload", zap.Error(err))
			return
		}
		ev, ok := p.Data.event()
		if !ok {
			return
		}
		b.pub.Publish(ev)

	case "phx_reply":
		var reply struct {
			Status   string         `json:"status"`
			Response map[string]any `json:"response"`
		}
		if err := json.Unmarshal(msg.Payload, &reply); err == nil && reply.Status == "error" {
			b.logger.Warn("realtime join rejected", zap.String("topic", msg.Topic), zap.Any("response", reply.Response))
		}

	case "phx_error", "phx_close":
		b.logger.Warn("realtime channel closed", zap.String("topic", msg.Topic), zap.String("event", msg.Event))
	}
}

func (d changeData) event() (realtime.Event, bool) {
	var t realtime.EventType
	switch d.Type {
	case "INSERT":
		t = realtime.EventInsert
	case "UPDATE":
		t = realtime.EventUpdate
	case "DELETE":
		t = realtime.EventDelete
	default:
		return realtime.Event{}, false
	}
	if d.Table == "" {
		return realtime.Event{}, false
	}

	ev := realtime.Event{Type: t, Table: d.Table, Record: d.Record, OldRecord: d.OldRecord}
	if ts, err := time.Parse(time.RFC3339Nano, d.CommitTimestamp); err == nil {
		ev.CommitTimestamp = ts.UTC()
	}
	return ev, true
}
