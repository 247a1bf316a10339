// Package rule 实现纯函数式的规则引擎：
// 输入当前状态和动作，输出新状态和事件，或者拒绝原因。
package rule

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/board"
)

const (
	// GuessBonus 终局投票猜中隐藏身份的奖励分
	GuessBonus = 3
	// ProphetKnownCards 先知预知的卡牌数量
	ProphetKnownCards = 3
	// FocusPenaltyPasses 连续放弃达到该次数后不能投票猜先知
	FocusPenaltyPasses = 2
	// MaxClueCount 线索数量上限
	MaxClueCount = 9
	// MaxClueLength 线索长度上限（字符）
	MaxClueLength = 32
)

// Engine 规则引擎。Apply 不修改传入的状态，所有房间共享同一个引擎。
type Engine struct {
	// Rand 为空时使用全局随机源
	Rand *rand.Rand
	// Now 为空时使用 time.Now
	Now func() time.Time

	mu    sync.Mutex
	words []string
}

// NewEngine 创建规则引擎，words 为空时使用内置词库
func NewEngine(words []string) *Engine {
	e := &Engine{}
	e.SetWords(words)
	return e
}

// SetWords 替换词库，对之后开局的房间生效
func (e *Engine) SetWords(words []string) {
	normalized := board.NormalizeWords(words)
	if len(normalized) < game.BoardSize {
		normalized = nil
	}
	e.mu.Lock()
	e.words = normalized
	e.mu.Unlock()
}

// Words 当前词库
func (e *Engine) Words() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.words == nil {
		return board.DefaultWords
	}
	return e.words
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// IntN 实现 board.Source
func (e *Engine) IntN(n int) int {
	if e.Rand == nil {
		return rand.IntN(n)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Rand.IntN(n)
}

// Shuffle 实现 board.Source
func (e *Engine) Shuffle(n int, swap func(i, j int)) {
	if e.Rand == nil {
		rand.Shuffle(n, swap)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Rand.Shuffle(n, swap)
}

// Apply 计算动作带来的状态迁移。
// 成功时返回新状态（版本号加一）和事件；失败时返回 *apperrors.GameError，状态不变。
func (e *Engine) Apply(state *game.GameState, playerID string, action Action) (*game.GameState, []Event, error) {
	if state == nil {
		return nil, nil, apperrors.ErrRoomNotFound
	}

	next := state.Clone()
	now := e.now()

	var (
		events []Event
		err    error
	)
	switch action.Type {
	case ActionAddPlayer:
		events, err = e.addPlayer(next, action.Player, now)
	case ActionRemovePlayer:
		events, err = e.removePlayer(next, playerID, now)
	case ActionJoinTeam:
		events, err = e.joinTeam(next, playerID, action.Team, action.Role)
	case ActionUpdateSettings:
		events, err = e.updateSettings(next, playerID, action.Settings)
	case ActionStartGame:
		events, err = e.startGame(next, playerID, now)
	case ActionRestartGame:
		events, err = e.restartGame(next, playerID, now)
	case ActionReturnToLobby:
		events, err = e.returnToLobby(next, playerID)
	case ActionGiveClue:
		events, err = e.giveClue(next, playerID, action.Word, action.Count, now)
	case ActionRevealCard:
		events, err = e.revealCard(next, playerID, action.CardID, now)
	case ActionPassTurn:
		events, err = e.passTurn(next, playerID, now)
	case ActionTimerExpired:
		events, err = e.timerExpired(next, playerID, action.StageSeq, now)
	case ActionVoteProphet:
		events, err = e.vote(next, playerID, game.VoteProphet, action.TargetID, now)
	case ActionVoteDoubleAgent:
		events, err = e.vote(next, playerID, game.VoteDoubleAgent, action.TargetID, now)
	default:
		err = apperrors.ErrInvalidMessage
	}
	if err != nil {
		return nil, nil, err
	}

	next.Version++
	next.LastActivity = now
	return next, events, nil
}

// Taunt 校验嘲讽冷却并记录时间。
// 嘲讽是非权威事件，返回的新状态不增加版本号。
func (e *Engine) Taunt(state *game.GameState, playerID string, cooldown time.Duration) (*game.GameState, error) {
	if state == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	p, ok := state.Player(playerID)
	if !ok {
		return nil, apperrors.ErrNotInRoom
	}
	now := e.now()
	if !p.LastTauntAt.IsZero() && now.Sub(p.LastTauntAt) < cooldown {
		return nil, apperrors.ErrRateLimited
	}

	next := state.Clone()
	np, _ := next.Player(playerID)
	np.LastTauntAt = now
	return next, nil
}

// member 查找发起者，并检查对局阶段
func member(s *game.GameState, playerID string) (*game.Player, error) {
	p, ok := s.Player(playerID)
	if !ok {
		return nil, apperrors.ErrNotInRoom
	}
	return p, nil
}

func requirePlaying(s *game.GameState) error {
	switch s.Phase {
	case game.PhaseLobby:
		return apperrors.ErrGameNotStarted
	case game.PhaseEnded:
		return apperrors.ErrGameAlreadyEnded
	}
	return nil
}

func requireOwner(s *game.GameState, playerID string) (*game.Player, error) {
	p, err := member(s, playerID)
	if err != nil {
		return nil, err
	}
	if !p.IsRoomOwner {
		return nil, apperrors.ErrNotRoomOwner
	}
	return p, nil
}
