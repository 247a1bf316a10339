package convert

import (
	"github.com/palemoky/codenames-arena/internal/game/rule"
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
)

// EventMessage 把规则事件转换为广播消息。
// 事件只携带对所有人公开的信息；player_joined/player_left 等没有对应载荷时返回 nil。
func EventMessage(roomCode string, ev rule.Event, settings protocol.SettingsDTO) *protocol.Message {
	var payload any
	switch ev.Type {
	case rule.EventPlayerJoined:
		payload = protocol.PlayerJoinedPayload{PlayerID: ev.PlayerID, Username: ev.Username}
	case rule.EventPlayerLeft:
		payload = protocol.PlayerLeftPayload{PlayerID: ev.PlayerID, Username: ev.Username, NewOwnerID: ev.NewOwnerID}
	case rule.EventTeamChanged:
		payload = protocol.TeamChangedPayload{PlayerID: ev.PlayerID, Team: string(ev.Team), Role: string(ev.Role)}
	case rule.EventSettingsUpdated:
		payload = protocol.SettingsUpdatedPayload{Settings: settings}
	case rule.EventGameStarted, rule.EventGameRestarted:
		payload = protocol.GameStartedPayload{StartingTeam: string(ev.Team)}
	case rule.EventClueGiven:
		if ev.Clue == nil {
			return nil
		}
		payload = protocol.ClueGivenPayload{
			PlayerID: ev.PlayerID, Team: string(ev.Team), Word: ev.Clue.Word, Count: ev.Clue.Count,
		}
	case rule.EventCardRevealed:
		if ev.Card == nil {
			return nil
		}
		payload = protocol.CardRevealedPayload{
			PlayerID: ev.PlayerID, Team: string(ev.Team), CardID: ev.Card.ID, Word: ev.Card.Word, Type: string(ev.Card.Type),
		}
	case rule.EventTurnPassed:
		payload = protocol.TurnPassedPayload{Team: string(ev.Team), Reason: ev.Reason}
	case rule.EventGameOver:
		payload = protocol.GameOverPayload{Winner: string(ev.Winner), Reason: string(ev.WinReason)}
	case rule.EventVotesUpdated:
		payload = protocol.VotesUpdatedPayload{
			Category: string(ev.Category), VoterID: ev.PlayerID, Result: GuessResultToDTO(ev.Result),
		}
	case rule.EventReturnedToLobby:
		payload = protocol.ReturnedToLobbyPayload{RoomCode: roomCode}
	default:
		return nil
	}
	return codec.MustNewMessage(protocol.MessageType(ev.Type), payload)
}
