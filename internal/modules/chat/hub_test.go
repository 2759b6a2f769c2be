package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/internal/database/dbtest"
	"tutorhub/internal/domain"
	"tutorhub/internal/metrics"
	"tutorhub/internal/pkg/cache"
	"tutorhub/internal/pkg/jwt"
	"tutorhub/internal/realtime"
	"tutorhub/internal/repository"
	"tutorhub/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type wsFixture struct {
	server  *httptest.Server
	hub     *Hub
	svc     *Service
	tokens  *jwt.Service
	metrics *metrics.Metrics
	me      *domain.Profile
	kim     *domain.Profile
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	repos := repository.New(dbtest.Open(t))
	broker := realtime.NewBroker(zap.NewNop())
	svc := NewService(repos.Messages, repos.Profiles, broker, zap.NewNop())
	m := metrics.NewUnregistered()
	hub := NewHub(broker, svc, m, zap.NewNop())

	tokens := jwt.New("test-secret", time.Hour)
	auth := session.NewAuthenticator(tokens, session.NewStore(cache.NewMemory()))

	r := gin.New()
	NewHandler(svc, hub, auth, nil).RegisterWSRoute(r.Group(""))
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	return &wsFixture{
		server:  srv,
		hub:     hub,
		svc:     svc,
		tokens:  tokens,
		metrics: m,
		me:      seedProfile(t, repos, "me@x.sa", "Me"),
		kim:     seedProfile(t, repos, "kim@x.sa", "Kim"),
	}
}

func (f *wsFixture) dial(t *testing.T, userID int64) *websocket.Conn {
	t.Helper()
	token, _, err := f.tokens.GenerateToken(userID, "student", "")
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/messages?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type wireEvent struct {
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	UnreadTotal int64           `json:"unread_total"`
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev wireEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHub_SnapshotInsertAndUpdate(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, f.kim.ID, f.me.ID, "first")
	require.NoError(t, err)

	conn := f.dial(t, f.me.ID)

	snap := readEvent(t, conn)
	assert.Equal(t, EventConversations, snap.Type)
	assert.Equal(t, int64(1), snap.UnreadTotal)
	var convs []domain.Conversation
	require.NoError(t, json.Unmarshal(snap.Payload, &convs))
	require.Len(t, convs, 1)
	assert.Equal(t, "Kim", convs[0].FullName)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WSConnections))

	_, err = f.svc.SendMessage(ctx, f.kim.ID, f.me.ID, "second")
	require.NoError(t, err)

	inserted := readEvent(t, conn)
	assert.Equal(t, EventNewMessage, inserted.Type)
	assert.Equal(t, int64(2), inserted.UnreadTotal)
	var msg domain.Message
	require.NoError(t, json.Unmarshal(inserted.Payload, &msg))
	assert.Equal(t, "second", msg.Content)

	// messages the user sends do not reach their own socket
	_, err = f.svc.SendMessage(ctx, f.me.ID, f.kim.ID, "reply")
	require.NoError(t, err)

	_, err = f.svc.MarkMessagesAsRead(ctx, f.me.ID, f.kim.ID)
	require.NoError(t, err)

	refreshed := readEvent(t, conn)
	assert.Equal(t, EventConversations, refreshed.Type)
	assert.Equal(t, int64(0), refreshed.UnreadTotal)
	require.NoError(t, json.Unmarshal(refreshed.Payload, &convs))
	require.Len(t, convs, 1)
	assert.Equal(t, 0, convs[0].UnreadCount)
}

func TestHub_ClientMarkRead(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, f.kim.ID, f.me.ID, "hello")
	require.NoError(t, err)

	conn := f.dial(t, f.me.ID)
	assert.Equal(t, int64(1), readEvent(t, conn).UnreadTotal)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "mark_read", "user_id": f.kim.ID}))

	ev := readEvent(t, conn)
	assert.Equal(t, EventConversations, ev.Type)
	assert.Equal(t, int64(0), ev.UnreadTotal)

	total, err := f.svc.UnreadTotal(ctx, f.me.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, f.me.ID)
	readEvent(t, conn)
	require.Equal(t, 1, f.hub.ConnectionCount())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.hub.ConnectionCount() == 0 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.WSConnections))
}

func TestHandler_ServeWSRejectsBadToken(t *testing.T) {
	f := newWSFixture(t)

	for _, query := range []string{"", "?token=garbage"} {
		url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/messages" + query
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}
