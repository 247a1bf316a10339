package session

import (
	"context"
	"time"

	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/rule"
)

// Publisher 提交后的广播出口，由广播路由实现。总是在房间锁外调用。
type Publisher interface {
	Publish(roomCode string, state *game.GameState, events []rule.Event)
	CloseRoom(roomCode string)
}

// TimerSync 回合计时出口，由计时调度器实现
type TimerSync interface {
	Sync(roomCode string, state *game.GameState)
	Cancel(roomCode string)
}

// ResultRecorder 记录已结束的对局
type ResultRecorder interface {
	RecordGame(ctx context.Context, state *game.GameState) error
}

// Config 会话管理器配置
type Config struct {
	Defaults            game.Settings // 新房间的默认设置
	TauntCooldown       time.Duration // 嘲讽冷却
	RequireSessionToken bool          // 重连是否必须携带会话令牌
	SeatGrace           time.Duration // 断线后保留座位的时间
}

// JoinResult 创建或加入房间的结果
type JoinResult struct {
	RoomCode     string
	PlayerID     string
	Username     string
	SessionToken string
	Reconnected  bool
	State        *game.GameState
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, *game.GameState, []rule.Event) {}
func (noopPublisher) CloseRoom(string)                              {}

type noopTimers struct{}

func (noopTimers) Sync(string, *game.GameState) {}
func (noopTimers) Cancel(string)                {}
