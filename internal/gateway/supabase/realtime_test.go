package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/internal/realtime"
)

type collector struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (c *collector) Publish(ev realtime.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) snapshot() []realtime.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]realtime.Event(nil), c.events...)
}

func TestBridge_ForwardsPostgresChanges(t *testing.T) {
	joined := make(chan phxMessage, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/realtime/v1/websocket", r.URL.Path)
		assert.Equal(t, "service-key", r.URL.Query().Get("apikey"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var join phxMessage
		if err := conn.ReadJSON(&join); err != nil {
			return
		}
		joined <- join

		frames := []string{
			`{"topic":"realtime:public:messages","event":"phx_reply","payload":{"status":"ok","response":{}},"ref":"1"}`,
			`{"topic":"realtime:public:messages","event":"postgres_changes","payload":{"data":{"type":"INSERT","schema":"public","table":"messages","commit_timestamp":"2026-03-01T09:00:00.123Z","record":{"id":"m1","recipient_id":42,"content":"hi"}},"ids":[1]},"ref":null}`,
			`{"topic":"realtime:public:messages","event":"postgres_changes","payload":{"data":{"type":"TRUNCATE","table":"messages"}},"ref":null}`,
			`not json`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// hold the socket open until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{ProjectURL: srv.URL, ServiceKey: "service-key"}, zap.NewNop())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(client.realtimeURL, "ws://"))

	out := &collector{}
	bridge := client.RealtimeBridge(out, RealtimeConfig{Tables: []string{"messages"}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bridge.Run(ctx) }()

	select {
	case join := <-joined:
		assert.Equal(t, "realtime:public:messages", join.Topic)
		assert.Equal(t, "phx_join", join.Event)
		var payload struct {
			Config struct {
				PostgresChanges []map[string]string `json:"postgres_changes"`
			} `json:"config"`
		}
		require.NoError(t, json.Unmarshal(join.Payload, &payload))
		require.Len(t, payload.Config.PostgresChanges, 1)
		assert.Equal(t, "messages", payload.Config.PostgresChanges[0]["table"])
	case <-time.After(5 * time.Second):
		t.Fatal("bridge never joined")
	}

	require.Eventually(t, func() bool { return len(out.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)
	ev := out.snapshot()[0]
	assert.Equal(t, realtime.EventInsert, ev.Type)
	assert.Equal(t, "messages", ev.Table)
	assert.Equal(t, json.Number("42"), ev.Record["recipient_id"])
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 123000000, time.UTC), ev.CommitTimestamp)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("bridge did not stop")
	}
}

func TestBridge_RunRequiresTables(t *testing.T) {
	client, err := New(Config{ProjectURL: "http://localhost:1", ServiceKey: "k"}, zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, client.RealtimeBridge(&collector{}, RealtimeConfig{}).Run(context.Background()))
}

func TestChangeData_FeedsBrokerFilters(t *testing.T) {
	broker := realtime.NewBroker(zap.NewNop())
	var got []realtime.Event
	_, err := broker.Subscribe(realtime.SubscriptionConfig{Table: "messages", Filter: "recipient_id=eq.42"}, func(ev realtime.Event) {
		got = append(got, ev)
	})
	require.NoError(t, err)

	for _, id := range []json.Number{"42", "7"} {
		ev, ok := changeData{Type: "UPDATE", Table: "messages", Record: map[string]any{"recipient_id": id}}.event()
		require.True(t, ok)
		broker.Publish(ev)
	}
	require.Len(t, got, 1)
	assert.Equal(t, realtime.EventUpdate, got[0].Type)
}
