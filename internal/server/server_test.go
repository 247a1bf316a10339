package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/codenames-arena/internal/config"
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
	"github.com/palemoky/codenames-arena/internal/server/storage"
)

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *Server {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Security.TokenSecret = "test-secret"
	cfg.Redis.Addr = mr.Addr()
	if mutate != nil {
		mutate(cfg)
	}

	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

func doRequest(s *Server, method, path string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RedisUnavailable(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Security.TokenSecret = "x"
	cfg.Redis.Addr = "127.0.0.1:1" // 无人监听
	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestNewServer_WithoutRedis(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Security.TokenSecret = "x"
	s, err := NewServer(cfg)
	require.NoError(t, err)
	assert.Nil(t, s.redis)
	assert.Nil(t, s.leaderboard)

	rec := doRequest(s, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RegisterUnregister_Concurrency(t *testing.T) {
	t.Parallel()

	s := &Server{clients: make(map[string]*Client)}
	const count = 100

	var wg sync.WaitGroup
	clients := make([]*Client, count)
	for i := range count {
		clients[i] = &Client{ID: string(rune('A' + i)), send: make(chan []byte, 1)}
	}

	wg.Add(count)
	for _, c := range clients {
		go func() {
			defer wg.Done()
			s.registerClient(c)
		}()
	}
	wg.Wait()
	assert.Equal(t, count, s.GetOnlineCount())

	wg.Add(count)
	for _, c := range clients {
		go func() {
			defer wg.Done()
			s.unregisterClient(c)
		}()
	}
	wg.Wait()
	assert.Zero(t, s.GetOnlineCount())
}

func TestServer_BroadcastToLobby(t *testing.T) {
	t.Parallel()

	s := &Server{clients: make(map[string]*Client)}
	lobby := &Client{ID: "lobby", send: make(chan []byte, 4)}
	seated := &Client{ID: "seated", send: make(chan []byte, 4)}
	seated.SetSession("ABCD", "p1")
	s.registerClient(lobby)
	s.registerClient(seated)

	s.BroadcastToLobby(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{}))
	assert.Len(t, lobby.send, 1)
	assert.Empty(t, seated.send)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	c := &Client{ID: "c1", send: make(chan []byte, 1)}
	c.Close()
	c.Close()
	assert.True(t, c.IsClosed())

	// 关闭后发送被忽略
	c.SendMessage(codec.MustNewMessage(protocol.MsgPong, nil))
}

func TestClient_Session(t *testing.T) {
	t.Parallel()

	c := &Client{}
	c.SetSession("ROOM", "p1")
	assert.Equal(t, "ROOM", c.GetRoom())
	assert.Equal(t, "p1", c.GetPlayerID())
	c.ClearSession()
	assert.Empty(t, c.GetRoom())
	assert.Empty(t, c.GetPlayerID())
}

func TestRoutes_HealthAndVersion(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())

	rec = doRequest(s, http.MethodGet, "/version", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, Version, body["version"])
}

func TestRoutes_Rooms(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	res, err := s.sessions.CreateRoom("Alice", "pw")
	require.NoError(t, err)

	rec := doRequest(s, http.MethodGet, "/api/rooms", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list protocol.RoomsListPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, res.RoomCode, list.Rooms[0].RoomCode)
	assert.True(t, list.Rooms[0].HasPassword)
	assert.NotContains(t, rec.Body.String(), "pw")
}

func TestRoutes_RoomQR(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.PublicURL = "https://play.example.com/"
	})

	rec := doRequest(s, http.MethodGet, "/api/rooms/NOPE/qr", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	res, err := s.sessions.CreateRoom("Alice", "")
	require.NoError(t, err)
	rec = doRequest(s, http.MethodGet, "/api/rooms/"+strings.ToLower(res.RoomCode)+"/qr", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Equal(t, "https://play.example.com/?room="+res.RoomCode, s.joinURL(req, res.RoomCode))
}

func TestJoinURL_FromRequest(t *testing.T) {
	t.Parallel()

	s := &Server{config: config.Default()}
	req := httptest.NewRequest(http.MethodGet, "http://game.local:1780/api/rooms/ABCD/qr", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://game.local:1780/?room=ABCD", s.joinURL(req, "ABCD"))
}

func TestRoutes_AdminConfig(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.AdminToken = "letmein"
	})
	auth := map[string]string{adminTokenHeader: "letmein"}

	rec := doRequest(s, http.MethodGet, "/admin/config", nil, map[string]string{adminTokenHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(s, http.MethodGet, "/admin/config", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var current storage.AdminConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, 90, current.SpymasterTime)
	assert.Equal(t, 5, current.TauntCooldown)

	update := storage.AdminConfig{
		SpymasterTime: 120,
		GuesserTime:   45,
		CardSplit:     game.CardSplit{Starting: 8, Other: 7, Neutral: 9, Assassin: 1},
		MaxPlayers:    8,
		TauntCooldown: 2,
	}
	body, _ := json.Marshal(update)
	rec = doRequest(s, http.MethodPut, "/admin/config", body, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	d := s.sessions.Defaults()
	assert.Equal(t, 120, d.TimedMode.SpymasterTime)
	assert.Equal(t, 8, d.MaxPlayers)
	assert.Equal(t, 2*time.Second, s.sessions.TauntCooldown())

	rec = doRequest(s, http.MethodGet, "/admin/config", nil, auth)
	var stored storage.AdminConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, update.CardSplit, stored.CardSplit)

	update.CardSplit.Neutral = 1
	body, _ = json.Marshal(update)
	rec = doRequest(s, http.MethodPut, "/admin/config", body, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPut, "/admin/config", []byte("{"), auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutes_AdminDisabledWithoutToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/admin/config", nil, map[string]string{adminTokenHeader: ""})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewServer_LoadsStoredAdminConfig(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)

	first := config.Default()
	first.Security.TokenSecret = "x"
	first.Redis.Addr = mr.Addr()
	s1, err := NewServer(first)
	require.NoError(t, err)
	require.NoError(t, s1.redisStore.SaveAdminConfig(context.Background(), &storage.AdminConfig{
		SpymasterTime: 200,
		GuesserTime:   100,
		CardSplit:     game.DefaultCardSplit(),
		MaxPlayers:    6,
	}))

	s2, err := NewServer(first)
	require.NoError(t, err)
	t.Cleanup(func() {
		s1.Shutdown(context.Background())
		s2.Shutdown(context.Background())
	})
	assert.Equal(t, 200, s2.sessions.Defaults().TimedMode.SpymasterTime)
	assert.Equal(t, 6, s2.sessions.Defaults().MaxPlayers)
}

func TestWebSocket_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("blocked ip", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, func(cfg *config.Config) {
			cfg.Security.BlockedIPs = []string{"192.0.2.0/24"}
		})
		rec := doRequest(s, http.MethodGet, "/ws", nil, nil) // httptest 默认来源 192.0.2.1
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("maintenance", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)
		s.EnterMaintenanceMode()
		rec := doRequest(s, http.MethodGet, "/ws", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("bad origin", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, func(cfg *config.Config) {
			cfg.Security.AllowedOrigins = []string{"https://ok.example.com"}
		})
		ts := httptest.NewServer(s.Routes())
		defer ts.Close()

		header := http.Header{"Origin": []string{"https://evil.example.com"}}
		_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType) *protocol.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg protocol.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return &msg
		}
	}
}

func TestWebSocket_EndToEnd(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	alice, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer alice.Close()

	require.NoError(t, alice.WriteJSON(codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Username: "Alice"})))
	created, err := codec.ParsePayload[protocol.RoomJoinedPayload](readUntil(t, alice, protocol.MsgRoomCreated))
	require.NoError(t, err)
	require.NotEmpty(t, created.RoomCode)

	bob, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.NoError(t, bob.WriteJSON(codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: created.RoomCode,
		Username: "Bob",
	})))
	readUntil(t, bob, protocol.MsgRoomJoined)

	joined, err := codec.ParsePayload[protocol.PlayerJoinedPayload](readUntil(t, alice, protocol.MsgPlayerJoined))
	require.NoError(t, err)
	assert.Equal(t, "Bob", joined.Username)

	// Bob 断线后座位保留，Alice 看到离线状态
	require.NoError(t, bob.Close())
	require.Eventually(t, func() bool {
		return !s.router.IsOnline(created.RoomCode, joined.PlayerID)
	}, 3*time.Second, 10*time.Millisecond)

	state, err := s.sessions.Snapshot(created.RoomCode)
	require.NoError(t, err)
	assert.Len(t, state.Players, 2)

	require.NoError(t, alice.WriteJSON(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 7})))
	pong, err := codec.ParsePayload[protocol.PongPayload](readUntil(t, alice, protocol.MsgPong))
	require.NoError(t, err)
	assert.Equal(t, int64(7), pong.ClientTimestamp)
}

func TestWebSocket_InvalidMessage(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	errMsg, err := codec.ParsePayload[protocol.ErrorPayload](readUntil(t, conn, protocol.MsgError))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errMsg.Code)
}
