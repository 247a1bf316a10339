// Package scheduler 负责限时模式的回合倒计时。
// 到期时通过与玩家动作相同的 Dispatch 入口提交 timer_expired，
// 保证超时与玩家动作在同一个房间锁上排队。
package scheduler

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/rule"
)

// Dispatcher 提交动作的入口，由会话管理器实现
type Dispatcher interface {
	Dispatch(roomCode, playerID string, action rule.Action) (*game.GameState, error)
}

// pending 一个房间当前的倒计时
type pending struct {
	timer    *time.Timer
	stageSeq int
	deadline time.Time
}

// Scheduler 回合计时器，每个房间最多一个倒计时
type Scheduler struct {
	dispatcher Dispatcher
	unit       time.Duration // 设置中一“秒”对应的时长
	now        func() time.Time

	mu       sync.Mutex
	timers   map[string]*pending
	versions map[string]int64 // 每个房间最近同步的版本号
	stopped  bool
}

// New 创建计时器，unit 通常为 time.Second
func New(dispatcher Dispatcher, unit time.Duration) *Scheduler {
	if unit <= 0 {
		unit = time.Second
	}
	return &Scheduler{
		dispatcher: dispatcher,
		unit:       unit,
		now:        time.Now,
		timers:     make(map[string]*pending),
		versions:   make(map[string]int64),
	}
}

// Sync 根据最新提交的状态调整倒计时：
// 同一阶段保持原计时，阶段变化时重新计时，对局结束或未开启限时则取消。
func (s *Scheduler) Sync(roomCode string, state *game.GameState) {
	if state == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	// 锁外广播可能乱序到达，忽略旧版本
	if v, ok := s.versions[roomCode]; ok && state.Version < v {
		return
	}
	s.versions[roomCode] = state.Version

	secs := state.Settings.TurnSeconds(state.Stage)
	if state.Phase != game.PhasePlaying || secs <= 0 {
		s.stopLocked(roomCode)
		return
	}
	if p, ok := s.timers[roomCode]; ok && p.stageSeq == state.StageSeq {
		return
	}
	s.stopLocked(roomCode)

	deadline := state.CurrentTurnStartTime.Add(time.Duration(secs) * s.unit)
	delay := max(deadline.Sub(s.now()), 0)
	seq := state.StageSeq

	s.timers[roomCode] = &pending{
		stageSeq: seq,
		deadline: deadline,
		timer:    time.AfterFunc(delay, func() { s.fire(roomCode, seq) }),
	}
}

// fire 倒计时到期，锁外提交 timer_expired
func (s *Scheduler) fire(roomCode string, stageSeq int) {
	s.mu.Lock()
	p, ok := s.timers[roomCode]
	if !ok || p.stageSeq != stageSeq || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, roomCode)
	s.mu.Unlock()

	_, err := s.dispatcher.Dispatch(roomCode, "", rule.TimerExpired(stageSeq))
	switch {
	case err == nil:
		zap.L().Debug("⏰ 回合超时", zap.String("room", roomCode), zap.Int("stageSeq", stageSeq))
	case errors.Is(err, apperrors.ErrStaleTimer), errors.Is(err, apperrors.ErrRoomNotFound):
		// 玩家已先一步结束回合
	default:
		zap.L().Warn("提交超时动作失败", zap.String("room", roomCode), zap.Error(err))
	}
}

// Cancel 取消房间的倒计时并清除版本记录
func (s *Scheduler) Cancel(roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(roomCode)
	delete(s.versions, roomCode)
}

func (s *Scheduler) stopLocked(roomCode string) {
	if p, ok := s.timers[roomCode]; ok {
		p.timer.Stop()
		delete(s.timers, roomCode)
	}
}

// Stop 停止所有倒计时，之后的 Sync 不再生效
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, p := range s.timers {
		p.timer.Stop()
		delete(s.timers, code)
	}
	s.stopped = true
	zap.L().Info("⏹️ 回合计时器已停止")
}

// Active 当前倒计时数量
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Deadline 房间当前倒计时的截止时间
func (s *Scheduler) Deadline(roomCode string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.timers[roomCode]
	if !ok {
		return time.Time{}, false
	}
	return p.deadline, true
}
