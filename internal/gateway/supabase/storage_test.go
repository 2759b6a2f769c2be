package supabase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{ProjectURL: srv.URL, ServiceKey: "service-key", Backoff: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNew_Validates(t *testing.T) {
	_, err := New(Config{ServiceKey: "k"}, zap.NewNop())
	assert.Error(t, err)
	_, err = New(Config{ProjectURL: "https://x.supabase.co"}, zap.NewNop())
	assert.Error(t, err)

	c, err := New(Config{ProjectURL: "https://x.supabase.co/", ServiceKey: "k"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "wss://x.supabase.co/realtime/v1/websocket", c.realtimeURL)
	assert.Equal(t, "https://x.supabase.co/storage/v1/object/public/avatars/7/a%20b.png", c.Storage("avatars").PublicURL("7/a b.png"))
}

func TestStorage_PutRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/storage/v1/object/avatars/7/avatar.png", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		assert.Equal(t, "true", r.Header.Get("x-upsert"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "png-bytes", string(body))

		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"Key":"avatars/7/avatar.png"}`))
	}))

	u, err := c.Storage("avatars").Put(context.Background(), "7/avatar.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, u, "/storage/v1/object/public/avatars/7/avatar.png")
}

func TestStorage_PutClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":"400","error":"InvalidKey","message":"bad key"}`))
	}))

	_, err := c.Storage("avatars").Put(context.Background(), "x", []byte("a"), "")
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "bad key", se.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStorage_DeleteMissingIsNotAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Object not found"}`))
	}))
	assert.NoError(t, c.Storage("avatars").Delete(context.Background(), "gone.png"))
}
