package rule

import "github.com/palemoky/codenames-arena/internal/game"

// EventType 事件类型，与下发的消息类型一致
type EventType string

const (
	EventPlayerJoined    EventType = "player_joined"
	EventPlayerLeft      EventType = "player_left"
	EventTeamChanged     EventType = "team_changed"
	EventSettingsUpdated EventType = "settings_updated"
	EventGameStarted     EventType = "game_started"
	EventGameRestarted   EventType = "game_restarted"
	EventClueGiven       EventType = "clue_given"
	EventCardRevealed    EventType = "card_revealed"
	EventTurnPassed      EventType = "turn_passed"
	EventGameOver        EventType = "game_over"
	EventVotesUpdated    EventType = "votes_updated"
	EventReturnedToLobby EventType = "returned_to_lobby"
)

// 回合交换原因
const (
	PassReasonPass      = "pass"
	PassReasonWrongCard = "wrong_card"
	PassReasonTimer     = "timer"
)

// Event 规则引擎产生的事件，只使用与类型相关的字段
type Event struct {
	Type     EventType
	PlayerID string

	Username string    // player_joined / player_left
	Team     game.Team // team_changed / turn_passed(新的当前队伍) / clue_given
	Role     game.Role // team_changed

	Clue *game.Clue // clue_given
	Card *game.Card // card_revealed

	Reason    string         // turn_passed
	Winner    game.Team      // game_over
	WinReason game.WinReason // game_over

	Category game.VoteCategory // votes_updated
	Result   *game.GuessResult // votes_updated，结算后非空

	NewOwnerID string // player_left，房主变更时非空
}
