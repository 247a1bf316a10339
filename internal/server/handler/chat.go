package handler

import (
	"strings"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
	"github.com/palemoky/codenames-arena/internal/types"
)

// handleChat 房间聊天，尽力广播，不进入对局状态
func (h *Handler) handleChat(client types.ClientInterface, msg *protocol.Message) error {
	roomCode, playerID, err := currentRoom(client)
	if err != nil {
		return err
	}
	payload, err := parse[protocol.SendChatMessagePayload](msg)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return apperrors.ErrInvalidMessage
	}

	if h.chatLimiter != nil {
		if allowed, reason := h.chatLimiter.AllowChat(client.GetID()); !allowed {
			client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, reason))
			return nil
		}
	}

	state, err := h.sessions.Snapshot(roomCode)
	if err != nil {
		return err
	}
	p, ok := state.Player(playerID)
	if !ok {
		return apperrors.ErrNotInRoom
	}

	h.router.Broadcast(roomCode, codec.MustNewMessage(protocol.MsgChatMessage, protocol.ChatMessagePayload{
		PlayerID:  p.ID,
		Username:  p.Username,
		Team:      string(p.Team),
		Text:      text,
		Timestamp: h.now().UnixMilli(),
	}))
	return nil
}

// handleTaunt 嘲讽，冷却由会话管理器控制
func (h *Handler) handleTaunt(client types.ClientInterface, _ *protocol.Message) error {
	roomCode, playerID, err := currentRoom(client)
	if err != nil {
		return err
	}
	p, err := h.sessions.Taunt(roomCode, playerID)
	if err != nil {
		return err
	}

	h.router.Broadcast(roomCode, codec.MustNewMessage(protocol.MsgTaunt, protocol.TauntPayload{
		PlayerID:  p.ID,
		Username:  p.Username,
		Timestamp: h.now().UnixMilli(),
	}))
	return nil
}
