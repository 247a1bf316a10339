// Package handler 把客户端消息分发到会话管理器和广播路由。
package handler

import (
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
	"github.com/palemoky/codenames-arena/internal/server/broadcast"
	"github.com/palemoky/codenames-arena/internal/server/session"
	"github.com/palemoky/codenames-arena/internal/server/storage"
	"github.com/palemoky/codenames-arena/internal/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// 词语评价限流：每秒 1 次，突发 3 次
const (
	ratingEvery = time.Second
	ratingBurst = 3
)

// HandlerDeps 处理器依赖，Leaderboard 和 Store 为 nil 时对应功能不可用
type HandlerDeps struct {
	Server      types.ServerInterface
	Sessions    *session.Manager
	Router      *broadcast.Router
	ChatLimiter types.ChatLimiter
	Leaderboard *storage.LeaderboardManager
	Store       *storage.RedisStore
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	sessions    *session.Manager
	router      *broadcast.Router
	chatLimiter types.ChatLimiter
	leaderboard *storage.LeaderboardManager
	store       *storage.RedisStore
	handlers    map[protocol.MessageType]handlerFunc
	ratings     sync.Map // clientID -> *rate.Limiter
	now         func() time.Time
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message) error

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		sessions:    deps.Sessions,
		router:      deps.Router,
		chatLimiter: deps.ChatLimiter,
		leaderboard: deps.Leaderboard,
		store:       deps.Store,
		now:         time.Now,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom: h.handleCreateRoom,
		protocol.MsgJoinRoom:   h.handleJoinRoom,
		protocol.MsgLeaveRoom:  h.handleLeaveRoom,
		protocol.MsgListRooms:  h.handleListRooms,

		// 大厅操作
		protocol.MsgJoinTeam:       h.handleJoinTeam,
		protocol.MsgUpdateSettings: h.handleUpdateSettings,
		protocol.MsgStartGame:      h.handleStartGame,

		// 游戏操作
		protocol.MsgGiveClue:        h.handleGiveClue,
		protocol.MsgRevealCard:      h.handleRevealCard,
		protocol.MsgPassTurn:        h.handlePassTurn,
		protocol.MsgVoteProphet:     h.handleVoteProphet,
		protocol.MsgVoteDoubleAgent: h.handleVoteDoubleAgent,
		protocol.MsgRestartGame:     h.handleRestartGame,
		protocol.MsgReturnToLobby:   h.handleReturnToLobby,

		// 非权威事件
		protocol.MsgSendChatMessage: h.handleChat,
		protocol.MsgSendTaunt:       h.handleTaunt,
		protocol.MsgRateWord:        h.handleRateWord,

		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
	}
}

// Handle 处理消息，错误只回给发送者
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	handler, ok := h.handlers[msg.Type]
	if !ok {
		zap.L().Warn("⚠️ 未知消息类型",
			zap.String("type", string(msg.Type)),
			zap.String("client", client.GetID()),
			zap.Int("payload_bytes", len(msg.Payload)))
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := handler(client, msg); err != nil {
		var gameErr *apperrors.GameError
		if !errors.As(err, &gameErr) {
			zap.L().Error("处理消息失败",
				zap.String("type", string(msg.Type)),
				zap.String("client", client.GetID()),
				zap.Error(err))
		}
		client.SendMessage(codec.NewErrorMessageFrom(err))
	}
}

// OnDisconnect 连接断开时调用。只有当前绑定的连接断开才标记离线。
func (h *Handler) OnDisconnect(client types.ClientInterface) {
	if h.chatLimiter != nil {
		h.chatLimiter.RemoveClient(client.GetID())
	}
	h.ratings.Delete(client.GetID())

	roomCode, playerID := client.GetRoom(), client.GetPlayerID()
	if roomCode == "" {
		return
	}
	if h.router.Unbind(roomCode, playerID, client) {
		h.sessions.Disconnect(roomCode, playerID)
	}
	client.ClearSession()
}

// parse 解析并校验 payload
func parse[T any](msg *protocol.Message) (*T, error) {
	payload, err := codec.ParsePayload[T](msg)
	if err != nil {
		return nil, apperrors.ErrInvalidMessage
	}
	if err := validate.Struct(payload); err != nil {
		zap.L().Debug("payload 校验失败", zap.String("type", string(msg.Type)), zap.Error(err))
		return nil, apperrors.ErrInvalidMessage
	}
	return payload, nil
}

// currentRoom 客户端当前所在房间
func currentRoom(client types.ClientInterface) (roomCode, playerID string, err error) {
	roomCode = client.GetRoom()
	if roomCode == "" {
		return "", "", apperrors.ErrNotInRoom
	}
	return roomCode, client.GetPlayerID(), nil
}

// allowRating 词语评价限流
func (h *Handler) allowRating(clientID string) bool {
	v, _ := h.ratings.LoadOrStore(clientID, rate.NewLimiter(rate.Every(ratingEvery), ratingBurst))
	return v.(*rate.Limiter).AllowN(h.now(), 1)
}
