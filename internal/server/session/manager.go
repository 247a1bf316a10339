// Package session 持有每个房间唯一的对局状态，并保证同一房间的状态变更串行执行。
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/room"
	"github.com/palemoky/codenames-arena/internal/game/rule"
	"github.com/palemoky/codenames-arena/internal/integrity"
)

// recordTimeout 异步记录对局结果的超时时间
const recordTimeout = 5 * time.Second

// Manager 会话管理器
type Manager struct {
	rooms    *room.RoomManager
	engine   *rule.Engine
	tokens   *TokenIssuer
	presence *Presence
	now      func() time.Time

	mu        sync.RWMutex
	cfg       Config
	publisher Publisher
	timers    TimerSync
	results   ResultRecorder
}

// Option 会话管理器选项
type Option func(*Manager)

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager 创建会话管理器
func NewManager(rooms *room.RoomManager, engine *rule.Engine, tokens *TokenIssuer, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		rooms:     rooms,
		engine:    engine,
		tokens:    tokens,
		now:       time.Now,
		cfg:       cfg,
		publisher: noopPublisher{},
		timers:    noopTimers{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.presence = NewPresence(m.now)
	return m
}

// SetPublisher 设置广播出口
func (m *Manager) SetPublisher(p Publisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publisher = p
}

// SetScheduler 设置回合计时器
func (m *Manager) SetScheduler(t TimerSync) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers = t
}

// SetResultRecorder 设置对局结果记录器，nil 表示不记录
func (m *Manager) SetResultRecorder(r ResultRecorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = r
}

// SetDefaults 更新新房间的默认设置和嘲讽冷却，已存在的房间不受影响
func (m *Manager) SetDefaults(settings game.Settings, tauntCooldown time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Defaults = settings
	m.cfg.TauntCooldown = tauntCooldown
}

// Defaults 新房间的默认设置
func (m *Manager) Defaults() game.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Defaults
}

// TauntCooldown 当前嘲讽冷却
func (m *Manager) TauntCooldown() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.TauntCooldown
}

// Engine 规则引擎
func (m *Manager) Engine() *rule.Engine {
	return m.engine
}

// Rooms 房间目录
func (m *Manager) Rooms() *room.RoomManager {
	return m.rooms
}

// Presence 在线状态表
func (m *Manager) Presence() *Presence {
	return m.presence
}

func (m *Manager) outlets() (Publisher, TimerSync, ResultRecorder) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.publisher, m.timers, m.results
}

// CreateRoom 创建房间，创建者成为房主
func (m *Manager) CreateRoom(username, password string) (*JoinResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || len([]rune(username)) > rule.MaxUsernameLength {
		return nil, apperrors.ErrInvalidMessage
	}

	defaults := m.Defaults()
	r, err := m.rooms.CreateRoom(password, func(code string) *game.GameState {
		return game.NewGameState(code, defaults, m.now())
	})
	if err != nil {
		return nil, err
	}

	res, err := m.seat(r, username)
	if err != nil {
		m.rooms.RemoveRoom(r.Code)
		return nil, err
	}
	return res, nil
}

// JoinRoom 加入房间。existingPlayerID 对应房间内已有玩家时视为重连：
// 不新增玩家，也不改变队伍和角色。
func (m *Manager) JoinRoom(roomCode, username, password, existingPlayerID, token string) (*JoinResult, error) {
	r, err := m.rooms.GetRoom(strings.ToUpper(strings.TrimSpace(roomCode)))
	if err != nil {
		return nil, err
	}

	if existingPlayerID != "" {
		if p, ok := r.Snapshot().Player(existingPlayerID); ok {
			return m.reconnect(r, *p, password, token)
		}
	}

	if !r.CheckPassword(password) {
		return nil, apperrors.ErrWrongPassword
	}
	return m.seat(r, strings.TrimSpace(username))
}

// seat 在房间中新增一名玩家
func (m *Manager) seat(r *room.Room, username string) (*JoinResult, error) {
	playerID := uuid.NewString()
	state, err := m.dispatch(r, playerID, rule.AddPlayer(game.Player{ID: playerID, Username: username}))
	if err != nil {
		return nil, err
	}

	token, err := m.tokens.Issue(r.Code, playerID)
	if err != nil {
		return nil, err
	}
	m.presence.SetOnline(r.Code, playerID)

	p, _ := state.Player(playerID)
	zap.L().Info("👤 玩家加入房间",
		zap.String("room", r.Code),
		zap.String("player", playerID),
		zap.String("username", p.Username))

	return &JoinResult{
		RoomCode:     r.Code,
		PlayerID:     playerID,
		Username:     p.Username,
		SessionToken: token,
		State:        state,
	}, nil
}

// reconnect 已有玩家重新连接。带令牌时校验令牌；不带令牌时只允许
// 接管已离线的座位，并校验房间密码。
func (m *Manager) reconnect(r *room.Room, p game.Player, password, token string) (*JoinResult, error) {
	switch {
	case token != "":
		if err := m.tokens.Verify(token, r.Code, p.ID); err != nil {
			return nil, err
		}
	case m.requireToken():
		return nil, apperrors.ErrUnauthorized
	case m.presence.IsOnline(p.ID):
		// 座位仍在线时只认令牌，否则知道 playerId 的人就能顶替他
		return nil, apperrors.ErrUnauthorized
	case !r.CheckPassword(password):
		return nil, apperrors.ErrWrongPassword
	}

	newToken, err := m.tokens.Issue(r.Code, p.ID)
	if err != nil {
		return nil, err
	}
	m.presence.SetOnline(r.Code, p.ID)

	// 版本号不变，重新推送一次视图让其他玩家看到上线状态
	state := r.Snapshot()
	publisher, _, _ := m.outlets()
	publisher.Publish(r.Code, state, nil)

	zap.L().Info("🔄 玩家重连成功", zap.String("room", r.Code), zap.String("player", p.ID))
	return &JoinResult{
		RoomCode:     r.Code,
		PlayerID:     p.ID,
		Username:     p.Username,
		SessionToken: newToken,
		Reconnected:  true,
		State:        state,
	}, nil
}

func (m *Manager) requireToken() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.RequireSessionToken
}

// Dispatch 在房间锁内校验并执行动作，成功后在锁外广播
func (m *Manager) Dispatch(roomCode, playerID string, action rule.Action) (*game.GameState, error) {
	r, err := m.rooms.GetRoom(roomCode)
	if err != nil {
		return nil, err
	}
	return m.dispatch(r, playerID, action)
}

func (m *Manager) dispatch(r *room.Room, playerID string, action rule.Action) (*game.GameState, error) {
	var events []rule.Event
	state, err := r.Apply(playerID, string(action.Type), func(cur *game.GameState) (*game.GameState, error) {
		if err := integrity.Authorize(cur, playerID, action); err != nil {
			return nil, err
		}
		next, evs, err := m.engine.Apply(cur, playerID, action)
		if err != nil {
			return nil, err
		}
		events = evs
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	m.afterCommit(r.Code, state, events)
	return state, nil
}

// afterCommit 锁外同步计时器并广播，对局结束时异步记录结果
func (m *Manager) afterCommit(roomCode string, state *game.GameState, events []rule.Event) {
	publisher, timers, results := m.outlets()
	timers.Sync(roomCode, state)
	publisher.Publish(roomCode, state, events)

	if results == nil {
		return
	}
	for _, ev := range events {
		if ev.Type != rule.EventGameOver {
			continue
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := results.RecordGame(ctx, state); err != nil {
				zap.L().Warn("记录对局结果失败", zap.String("room", roomCode), zap.Error(err))
			}
		}()
		return
	}
}

// LeaveRoom 玩家主动离开房间。房间变空后由清理任务在宽限期后回收。
func (m *Manager) LeaveRoom(roomCode, playerID string) error {
	_, err := m.Dispatch(roomCode, playerID, rule.RemovePlayer())
	m.presence.Remove(playerID)
	if err != nil {
		return err
	}
	zap.L().Info("👋 玩家离开房间", zap.String("room", roomCode), zap.String("player", playerID))
	return nil
}

// Disconnect 连接断开：只记录离线，不改变对局状态，座位保留到重连或超时
func (m *Manager) Disconnect(roomCode, playerID string) {
	m.presence.SetOffline(playerID)
	r, err := m.rooms.GetRoom(roomCode)
	if err != nil {
		return
	}
	publisher, _, _ := m.outlets()
	publisher.Publish(roomCode, r.Snapshot(), nil)
}

// Taunt 发送嘲讽，受冷却限制，不产生新版本
func (m *Manager) Taunt(roomCode, playerID string) (game.Player, error) {
	r, err := m.rooms.GetRoom(roomCode)
	if err != nil {
		return game.Player{}, err
	}
	cooldown := m.TauntCooldown()

	state, err := r.Apply(playerID, "send_taunt", func(cur *game.GameState) (*game.GameState, error) {
		return m.engine.Taunt(cur, playerID, cooldown)
	})
	if err != nil {
		return game.Player{}, err
	}
	p, _ := state.Player(playerID)
	return *p, nil
}

// Snapshot 房间当前状态
func (m *Manager) Snapshot(roomCode string) (*game.GameState, error) {
	r, err := m.rooms.GetRoom(roomCode)
	if err != nil {
		return nil, err
	}
	return r.Snapshot(), nil
}

// ListRooms 房间列表
func (m *Manager) ListRooms() []room.Summary {
	return m.rooms.GetRoomList()
}

// StartCleanup 启动房间回收和座位回收，直到 ctx 取消
func (m *Manager) StartCleanup(ctx context.Context, interval, maxAge, emptyGrace time.Duration) {
	m.rooms.StartCleanup(ctx, interval, maxAge, emptyGrace, m.onEvict)

	m.mu.RLock()
	grace := m.cfg.SeatGrace
	m.mu.RUnlock()
	if grace <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.ReclaimSeats(grace)
			}
		}
	}()
}

// ReclaimSeats 释放断线超过 grace 的座位
func (m *Manager) ReclaimSeats(grace time.Duration) int {
	count := 0
	for playerID, roomCode := range m.presence.Expired(grace) {
		err := m.LeaveRoom(roomCode, playerID)
		if err != nil && !errors.Is(err, apperrors.ErrRoomNotFound) && !errors.Is(err, apperrors.ErrNotInRoom) {
			zap.L().Warn("释放座位失败", zap.String("room", roomCode), zap.String("player", playerID), zap.Error(err))
			continue
		}
		count++
	}
	return count
}

// onEvict 房间被回收后取消计时器并关闭广播
func (m *Manager) onEvict(codes []string) {
	publisher, timers, _ := m.outlets()
	for _, code := range codes {
		timers.Cancel(code)
		publisher.CloseRoom(code)
		m.presence.DropRoom(code)
	}
}
