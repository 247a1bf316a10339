package handler

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
	"github.com/palemoky/codenames-arena/internal/protocol/convert"
	"github.com/palemoky/codenames-arena/internal/server/session"
	"github.com/palemoky/codenames-arena/internal/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) error {
	if h.server.IsMaintenanceMode() {
		return apperrors.ErrMaintenance
	}
	payload, err := parse[protocol.CreateRoomPayload](msg)
	if err != nil {
		return err
	}

	// 如果已在房间中，先离开
	h.leaveCurrent(client)

	res, err := h.sessions.CreateRoom(payload.Username, payload.Password)
	if err != nil {
		return err
	}
	h.welcome(client, res, protocol.MsgRoomCreated)
	h.pushRoomsList()
	return nil
}

// handleJoinRoom 处理加入房间，携带 playerId 时为重连
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) error {
	if h.server.IsMaintenanceMode() {
		return apperrors.ErrMaintenance
	}
	payload, err := parse[protocol.JoinRoomPayload](msg)
	if err != nil {
		return err
	}

	// 同一连接重发当前座位的 join_room 视为重连，不能先离开房间
	code := strings.ToUpper(strings.TrimSpace(payload.RoomCode))
	sameSeat := payload.PlayerID != "" && client.GetRoom() == code && client.GetPlayerID() == payload.PlayerID
	if !sameSeat {
		h.leaveCurrent(client)
	}

	res, err := h.sessions.JoinRoom(payload.RoomCode, payload.Username, payload.Password, payload.PlayerID, payload.SessionToken)
	if err != nil {
		return err
	}
	h.welcome(client, res, protocol.MsgRoomJoined)
	h.pushRoomsList()
	return nil
}

// welcome 绑定连接并下发房间视图，随后刷新全房间的在线状态
func (h *Handler) welcome(client types.ClientInterface, res *session.JoinResult, msgType protocol.MessageType) {
	client.SetSession(res.RoomCode, res.PlayerID)
	h.router.Bind(res.RoomCode, res.PlayerID, client)

	state := res.State
	if latest, err := h.sessions.Snapshot(res.RoomCode); err == nil {
		state = latest
	}
	online := func(playerID string) bool { return h.router.IsOnline(res.RoomCode, playerID) }

	client.SendMessage(codec.MustNewMessage(msgType, protocol.RoomJoinedPayload{
		RoomCode:     res.RoomCode,
		PlayerID:     res.PlayerID,
		Username:     res.Username,
		SessionToken: res.SessionToken,
		Reconnected:  res.Reconnected,
		Game:         convert.GameView(state, res.PlayerID, online, h.now()),
	}))
	h.router.Publish(res.RoomCode, state, nil)
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface, _ *protocol.Message) error {
	roomCode, _, err := currentRoom(client)
	if err != nil {
		return err
	}
	h.leaveCurrent(client)
	client.SendMessage(codec.MustNewMessage(protocol.MsgLeftRoom, protocol.LeftRoomPayload{RoomCode: roomCode}))
	h.pushRoomsList()
	return nil
}

// leaveCurrent 离开当前房间（如果有）
func (h *Handler) leaveCurrent(client types.ClientInterface) {
	roomCode, playerID := client.GetRoom(), client.GetPlayerID()
	if roomCode == "" {
		return
	}
	h.router.Unbind(roomCode, playerID, client)
	client.ClearSession()

	err := h.sessions.LeaveRoom(roomCode, playerID)
	if err != nil && !errors.Is(err, apperrors.ErrRoomNotFound) && !errors.Is(err, apperrors.ErrNotInRoom) {
		zap.L().Warn("离开房间失败", zap.String("room", roomCode), zap.String("player", playerID), zap.Error(err))
	}
}

// handleListRooms 房间列表，只暴露是否有密码
func (h *Handler) handleListRooms(client types.ClientInterface, _ *protocol.Message) error {
	client.SendMessage(h.roomsList())
	return nil
}

func (h *Handler) roomsList() *protocol.Message {
	return codec.MustNewMessage(protocol.MsgRoomsList, protocol.RoomsListPayload{
		Rooms: convert.RoomListItems(h.sessions.ListRooms()),
	})
}

// pushRoomsList 房间人数变化后刷新大厅连接的房间列表
func (h *Handler) pushRoomsList() {
	h.server.BroadcastToLobby(h.roomsList())
}
