// Package room 提供房间句柄（单写者锁）和房间目录。
package room

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/integrity"
)

const (
	roomCodeLength = 5                                  // 房间号长度
	roomCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // 房间号字符集，去掉易混淆的 I O 0 1
)

// Room 房间句柄。状态只通过 Apply 在房间锁内替换，
// 读取到的 *game.GameState 不会再被修改，可以在锁外使用。
type Room struct {
	Code      string    // 房间号
	CreatedAt time.Time // 创建时间

	passwordHash []byte
	now          func() time.Time

	mu         sync.Mutex
	state      *game.GameState
	chain      *integrity.Chain
	emptySince time.Time
}

func newRoom(code string, passwordHash []byte, state *game.GameState, now func() time.Time) *Room {
	r := &Room{
		Code:         code,
		CreatedAt:    state.CreatedAt,
		passwordHash: passwordHash,
		now:          now,
		state:        state,
		chain:        integrity.NewChain(),
	}
	if len(state.Players) == 0 {
		r.emptySince = now()
	}
	r.chain.Append(state.Version, "", "create_room", integrity.StateHash(state), r.CreatedAt)
	return r
}

// HasPassword 是否设置了密码
func (r *Room) HasPassword() bool {
	return len(r.passwordHash) > 0
}

// CheckPassword 校验密码，未设置密码时总是通过
func (r *Room) CheckPassword(password string) bool {
	if !r.HasPassword() {
		return true
	}
	return bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)) == nil
}

// Snapshot 当前状态
func (r *Room) Snapshot() *game.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Apply 在房间锁内执行一次状态迁移。
// fn 返回错误时状态保持不变；返回新状态且版本号变化时写入审计链。
// fn 内不能做任何阻塞 I/O。
func (r *Room) Apply(actor, action string, fn func(cur *game.GameState) (*game.GameState, error)) (*game.GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(r.state)
	if err != nil {
		return nil, err
	}
	if next == nil || next == r.state {
		return r.state, nil
	}

	prevVersion := r.state.Version
	r.state = next
	if next.Version != prevVersion {
		r.chain.Append(next.Version, actor, action, integrity.StateHash(next), next.LastActivity)
	}

	if len(next.Players) == 0 {
		if r.emptySince.IsZero() {
			r.emptySince = r.now()
		}
	} else {
		r.emptySince = time.Time{}
	}
	return next, nil
}

// EmptySince 房间变空的时间，有玩家时为零值
func (r *Room) EmptySince() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emptySince
}

// Chain 审计链
func (r *Room) Chain() *integrity.Chain {
	return r.chain
}

// RoomManager 房间目录：房间号到房间句柄的映射，只由自己的锁保护
type RoomManager struct {
	rooms        map[string]*Room
	now          func() time.Time
	passwordCost int
	mu           sync.RWMutex
}

// Option 房间目录选项
type Option func(*RoomManager)

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(rm *RoomManager) { rm.now = now }
}

// WithPasswordCost 设置 bcrypt 代价
func WithPasswordCost(cost int) Option {
	return func(rm *RoomManager) { rm.passwordCost = cost }
}

// NewRoomManager 创建房间目录
func NewRoomManager(opts ...Option) *RoomManager {
	rm := &RoomManager{
		rooms:        make(map[string]*Room),
		now:          time.Now,
		passwordCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(rm)
	}
	return rm
}
