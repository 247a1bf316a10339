package handler

import (
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/rule"
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/convert"
	"github.com/palemoky/codenames-arena/internal/types"
)

// dispatch 把动作交给会话管理器，结果由广播路由推送
func (h *Handler) dispatch(client types.ClientInterface, action rule.Action) error {
	roomCode, playerID, err := currentRoom(client)
	if err != nil {
		return err
	}
	_, err = h.sessions.Dispatch(roomCode, playerID, action)
	return err
}

// --- 大厅 ---

func (h *Handler) handleJoinTeam(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := parse[protocol.JoinTeamPayload](msg)
	if err != nil {
		return err
	}
	return h.dispatch(client, rule.JoinTeam(game.Team(payload.Team), game.Role(payload.Role)))
}

func (h *Handler) handleUpdateSettings(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := parse[protocol.UpdateSettingsPayload](msg)
	if err != nil {
		return err
	}
	return h.dispatch(client, rule.UpdateSettings(convert.SettingsFromDTO(payload.Settings)))
}

func (h *Handler) handleStartGame(client types.ClientInterface, _ *protocol.Message) error {
	return h.dispatch(client, rule.StartGame())
}

// --- 对局 ---

func (h *Handler) handleGiveClue(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := parse[protocol.GiveCluePayload](msg)
	if err != nil {
		return err
	}
	return h.dispatch(client, rule.GiveClue(payload.Word, payload.Count))
}

func (h *Handler) handleRevealCard(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := parse[protocol.RevealCardPayload](msg)
	if err != nil {
		return err
	}
	return h.dispatch(client, rule.RevealCard(payload.CardID))
}

func (h *Handler) handlePassTurn(client types.ClientInterface, _ *protocol.Message) error {
	return h.dispatch(client, rule.PassTurn())
}

// --- 终局 ---

func (h *Handler) handleVoteProphet(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := parse[protocol.VotePayload](msg)
	if err != nil {
		return err
	}
	return h.dispatch(client, rule.VoteProphet(payload.TargetID))
}

func (h *Handler) handleVoteDoubleAgent(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := parse[protocol.VotePayload](msg)
	if err != nil {
		return err
	}
	return h.dispatch(client, rule.VoteDoubleAgent(payload.TargetID))
}

func (h *Handler) handleRestartGame(client types.ClientInterface, _ *protocol.Message) error {
	return h.dispatch(client, rule.RestartGame())
}

func (h *Handler) handleReturnToLobby(client types.ClientInterface, _ *protocol.Message) error {
	return h.dispatch(client, rule.ReturnToLobby())
}
