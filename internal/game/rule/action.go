package rule

import "github.com/palemoky/codenames-arena/internal/game"

// ActionType 动作类型
type ActionType string

const (
	// 房间成员变更（由会话管理器发起）
	ActionAddPlayer    ActionType = "add_player"
	ActionRemovePlayer ActionType = "remove_player"

	// 大厅
	ActionJoinTeam       ActionType = "join_team"
	ActionUpdateSettings ActionType = "update_settings"
	ActionStartGame      ActionType = "start_game"

	// 对局
	ActionGiveClue     ActionType = "give_clue"
	ActionRevealCard   ActionType = "reveal_card"
	ActionPassTurn     ActionType = "pass_turn"
	ActionTimerExpired ActionType = "timer_expired" // 仅由计时器发起

	// 终局
	ActionVoteProphet     ActionType = "vote_prophet"
	ActionVoteDoubleAgent ActionType = "vote_double_agent"
	ActionRestartGame     ActionType = "restart_game"
	ActionReturnToLobby   ActionType = "return_to_lobby"
)

// Action 一次状态变更请求，只使用与类型相关的字段
type Action struct {
	Type ActionType

	Word   string // give_clue
	Count  int    // give_clue
	CardID int    // reveal_card

	TargetID string // vote_*

	Team game.Team // join_team
	Role game.Role // join_team

	Settings *game.Settings // update_settings
	Player   *game.Player   // add_player

	StageSeq int // timer_expired
}

// OwnerOnly 是否只有房主可以执行
func (a ActionType) OwnerOnly() bool {
	switch a {
	case ActionUpdateSettings, ActionStartGame, ActionRestartGame, ActionReturnToLobby:
		return true
	}
	return false
}

// System 是否为系统动作（没有玩家发起者）
func (a ActionType) System() bool {
	return a == ActionTimerExpired
}

// --- 构造函数 ---

// AddPlayer 玩家入座，由会话管理器发起
func AddPlayer(p game.Player) Action {
	return Action{Type: ActionAddPlayer, Player: &p}
}

// RemovePlayer 玩家离开，由会话管理器发起
func RemovePlayer() Action {
	return Action{Type: ActionRemovePlayer}
}

func JoinTeam(team game.Team, role game.Role) Action {
	return Action{Type: ActionJoinTeam, Team: team, Role: role}
}

func UpdateSettings(s game.Settings) Action {
	return Action{Type: ActionUpdateSettings, Settings: &s}
}

func StartGame() Action {
	return Action{Type: ActionStartGame}
}

func GiveClue(word string, count int) Action {
	return Action{Type: ActionGiveClue, Word: word, Count: count}
}

func RevealCard(cardID int) Action {
	return Action{Type: ActionRevealCard, CardID: cardID}
}

func PassTurn() Action {
	return Action{Type: ActionPassTurn}
}

// TimerExpired 计时器到期，stageSeq 不匹配时被丢弃
func TimerExpired(stageSeq int) Action {
	return Action{Type: ActionTimerExpired, StageSeq: stageSeq}
}

func VoteProphet(target string) Action {
	return Action{Type: ActionVoteProphet, TargetID: target}
}

func VoteDoubleAgent(target string) Action {
	return Action{Type: ActionVoteDoubleAgent, TargetID: target}
}

func RestartGame() Action {
	return Action{Type: ActionRestartGame}
}

func ReturnToLobby() Action {
	return Action{Type: ActionReturnToLobby}
}
