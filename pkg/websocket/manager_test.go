package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// streamServer is a test endpoint that records subscription requests and
// pushes frames to every connected client.
type streamServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conns    []*websocket.Conn
	requests []request
}

func newStreamServer(t *testing.T) *streamServer {
	t.Helper()

	s := &streamServer{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req request
			if json.Unmarshal(data, &req) == nil {
				s.mu.Lock()
				s.requests = append(s.requests, req)
				s.mu.Unlock()
			}
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *streamServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *streamServer) push(t *testing.T, frame string) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(frame)))
	}
}

func (s *streamServer) dropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
}

func (s *streamServer) Requests() []request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]request, len(s.requests))
	copy(out, s.requests)
	return out
}

func testConfig(url string) Config {
	return Config{
		URL:                   url,
		DialTimeout:           time.Second,
		PongTimeout:           time.Second,
		PingInterval:          50 * time.Millisecond,
		ReconnectInitialDelay: 10 * time.Millisecond,
		ReconnectMaxDelay:     50 * time.Millisecond,
		ReconnectBackoffMult:  2,
		MessageBufferSize:     16,
		Logger:                zap.NewNop(),
	}
}

func TestManager_SubscribeAndReceive(t *testing.T) {
	srv := newStreamServer(t)
	mgr := New(testConfig(srv.url()))
	require.NoError(t, mgr.Start())
	defer mgr.Close()

	require.NoError(t, mgr.Subscribe(context.Background(), []string{"!miniTicker@arr"}))
	// Duplicate subscriptions are not re-sent.
	require.NoError(t, mgr.Subscribe(context.Background(), []string{"!miniTicker@arr"}))

	assert.Eventually(t, func() bool { return len(srv.Requests()) == 1 }, time.Second, 5*time.Millisecond)
	req := srv.Requests()[0]
	assert.Equal(t, "SUBSCRIBE", req.Method)
	assert.Equal(t, []string{"!miniTicker@arr"}, req.Params)

	srv.push(t, `[{"s":"ETHBTC","c":"0.05"}]`)

	select {
	case frame := <-mgr.MessageChan():
		assert.JSONEq(t, `[{"s":"ETHBTC","c":"0.05"}]`, string(frame))
	case <-time.After(time.Second):
		t.Fatal("no frame received")
	}
}

func TestManager_Unsubscribe(t *testing.T) {
	srv := newStreamServer(t)
	mgr := New(testConfig(srv.url()))
	require.NoError(t, mgr.Start())
	defer mgr.Close()

	ctx := context.Background()
	require.NoError(t, mgr.Subscribe(ctx, []string{"a", "b"}))
	require.NoError(t, mgr.Unsubscribe(ctx, []string{"a", "zzz"}))
	assert.Equal(t, []string{"b"}, mgr.Subscriptions())

	assert.Eventually(t, func() bool { return len(srv.Requests()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "UNSUBSCRIBE", srv.Requests()[1].Method)
	assert.Equal(t, []string{"a"}, srv.Requests()[1].Params)
}

func TestManager_ResubscribesAfterReconnect(t *testing.T) {
	srv := newStreamServer(t)
	mgr := New(testConfig(srv.url()))
	require.NoError(t, mgr.Start())
	defer mgr.Close()

	require.NoError(t, mgr.Subscribe(context.Background(), []string{"ethbtc@depth"}))
	assert.Eventually(t, func() bool { return len(srv.Requests()) == 1 }, time.Second, 5*time.Millisecond)

	srv.dropAll()

	assert.Eventually(t, func() bool { return len(srv.Requests()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"ethbtc@depth"}, srv.Requests()[1].Params)
	assert.Eventually(t, mgr.Connected, time.Second, 5*time.Millisecond)
}

func TestManager_StartFailsWhenUnreachable(t *testing.T) {
	mgr := New(testConfig("ws://127.0.0.1:1"))
	err := mgr.Start()
	assert.Error(t, err)
}

func TestManager_SubscribeWithoutConnection(t *testing.T) {
	mgr := New(testConfig("ws://127.0.0.1:1"))

	err := mgr.Subscribe(context.Background(), []string{"x"})
	assert.Error(t, err)
	assert.Empty(t, mgr.Subscriptions(), "failed subscribe is rolled back")
}
