// Package broadcast 维护房间号到连接集合的映射，并在每次提交后推送完整视图。
package broadcast

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/rule"
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
	"github.com/palemoky/codenames-arena/internal/protocol/convert"
	"github.com/palemoky/codenames-arena/internal/types"
)

// roomConns 一个房间的连接。mu 同时串行化该房间的发送，
// 保证同一连接收到的视图版本单调递增。
type roomConns struct {
	mu      sync.Mutex
	conns   map[string]types.ClientInterface // playerID -> 连接
	version int64
	sent    bool
}

// Router 广播路由
type Router struct {
	rooms map[string]*roomConns
	now   func() time.Time
	mu    sync.RWMutex
}

// NewRouter 创建广播路由
func NewRouter() *Router {
	return &Router{
		rooms: make(map[string]*roomConns),
		now:   time.Now,
	}
}

func (r *Router) room(roomCode string, create bool) *roomConns {
	r.mu.RLock()
	rc, ok := r.rooms[roomCode]
	r.mu.RUnlock()
	if ok || !create {
		return rc
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if rc, ok = r.rooms[roomCode]; !ok {
		rc = &roomConns{conns: make(map[string]types.ClientInterface)}
		r.rooms[roomCode] = rc
	}
	return rc
}

// Bind 把连接绑定到房间中的玩家。同一玩家的旧连接会被解绑。
func (r *Router) Bind(roomCode, playerID string, client types.ClientInterface) {
	rc := r.room(roomCode, true)
	rc.mu.Lock()
	old := rc.conns[playerID]
	rc.conns[playerID] = client
	rc.mu.Unlock()

	client.SetSession(roomCode, playerID)
	if old != nil && old != client {
		old.ClearSession()
		zap.L().Debug("旧连接已被替换", zap.String("room", roomCode), zap.String("player", playerID))
	}
}

// Unbind 解绑连接，只有当前绑定的就是该连接时才生效
func (r *Router) Unbind(roomCode, playerID string, client types.ClientInterface) bool {
	rc := r.room(roomCode, false)
	if rc == nil {
		return false
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if cur, ok := rc.conns[playerID]; !ok || cur != client {
		return false
	}
	delete(rc.conns, playerID)
	return true
}

// CloseRoom 房间被回收：通知仍在线的连接并全部解绑
func (r *Router) CloseRoom(roomCode string) {
	r.mu.Lock()
	rc, ok := r.rooms[roomCode]
	delete(r.rooms, roomCode)
	r.mu.Unlock()
	if !ok {
		return
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	msg := codec.MustNewMessage(protocol.MsgLeftRoom, protocol.LeftRoomPayload{RoomCode: roomCode})
	for _, c := range rc.conns {
		c.SendMessage(msg)
		c.ClearSession()
	}
	rc.conns = nil
}

// IsOnline 玩家在房间中是否有连接
func (r *Router) IsOnline(roomCode, playerID string) bool {
	rc := r.room(roomCode, false)
	if rc == nil {
		return false
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	_, ok := rc.conns[playerID]
	return ok
}

// Connections 房间内的连接数
func (r *Router) Connections(roomCode string) int {
	rc := r.room(roomCode, false)
	if rc == nil {
		return 0
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.conns)
}

// Publish 推送一次提交：先发事件，再给每个连接发送按身份裁剪的完整视图。
// 比已发送版本更旧的提交（事件和视图）直接丢弃。
func (r *Router) Publish(roomCode string, state *game.GameState, events []rule.Event) {
	rc := r.room(roomCode, false)
	if rc == nil || state == nil {
		return
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	// 旧版本的提交整体丢弃，事件和视图都不再发送
	if rc.sent && state.Version < rc.version {
		zap.L().Debug("丢弃旧版本提交",
			zap.String("room", roomCode),
			zap.Int64("version", state.Version),
			zap.Int64("latest", rc.version),
			zap.Int("events", len(events)))
		return
	}
	rc.version = state.Version
	rc.sent = true

	settings := convert.SettingsToDTO(state.Settings)
	for _, ev := range events {
		if msg := convert.EventMessage(roomCode, ev, settings); msg != nil {
			for _, c := range rc.conns {
				c.SendMessage(msg)
			}
		}
	}

	online := func(playerID string) bool {
		_, ok := rc.conns[playerID]
		return ok
	}
	now := r.now()
	for playerID, c := range rc.conns {
		view := convert.GameView(state, playerID, online, now)
		c.SendMessage(codec.MustNewMessage(protocol.MsgGameUpdated, view))
	}
}

// Broadcast 向房间内所有连接发送非权威消息（聊天、嘲讽、评价），尽力而为
func (r *Router) Broadcast(roomCode string, msg *protocol.Message) {
	rc := r.room(roomCode, false)
	if rc == nil || msg == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, c := range rc.conns {
		c.SendMessage(msg)
	}
}

// SendTo 向房间内某个玩家发送消息
func (r *Router) SendTo(roomCode, playerID string, msg *protocol.Message) bool {
	rc := r.room(roomCode, false)
	if rc == nil {
		return false
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	c, ok := rc.conns[playerID]
	if ok {
		c.SendMessage(msg)
	}
	return ok
}

// Rooms 有连接的房间数量
func (r *Router) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
