package types

import (
	"github.com/palemoky/codenames-arena/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	BroadcastToLobby(msg *protocol.Message)
}

// ClientInterface 定义客户端连接接口。
// 连接 ID 每次连接都不同，玩家 ID 在房间内固定，重连后保持不变。
type ClientInterface interface {
	GetID() string
	GetPlayerID() string
	GetRoom() string
	SetSession(roomCode, playerID string)
	ClearSession()
	SendMessage(msg *protocol.Message)
	Close()
}

// ChatLimiter 聊天速率限制器接口
type ChatLimiter interface {
	AllowChat(clientID string) (allowed bool, reason string)
	RemoveClient(clientID string)
}
