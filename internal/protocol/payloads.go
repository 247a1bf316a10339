package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Username string `json:"username" validate:"required,max=24"`
	Password string `json:"password,omitempty" validate:"max=64"`
}

// JoinRoomPayload 加入房间请求。携带 playerId 时视为重连
type JoinRoomPayload struct {
	RoomCode     string `json:"roomCode" validate:"required,max=16"`
	Username     string `json:"username" validate:"required,max=24"`
	Password     string `json:"password,omitempty" validate:"max=64"`
	PlayerID     string `json:"playerId,omitempty" validate:"max=64"`
	SessionToken string `json:"sessionToken,omitempty"`
}

// JoinTeamPayload 选择队伍和角色
type JoinTeamPayload struct {
	Team string `json:"team" validate:"required,oneof=dark light"`
	Role string `json:"role" validate:"required,oneof=spymaster guesser"`
}

// UpdateSettingsPayload 修改房间设置
type UpdateSettingsPayload struct {
	Settings SettingsDTO `json:"settings"`
}

// GiveCluePayload 给出线索
type GiveCluePayload struct {
	Word  string `json:"word" validate:"required,max=32"`
	Count int    `json:"count" validate:"min=0,max=9"`
}

// RevealCardPayload 翻牌
type RevealCardPayload struct {
	CardID int `json:"cardId" validate:"min=0,max=24"`
}

// VotePayload 终局投票
type VotePayload struct {
	TargetID string `json:"targetId" validate:"required"`
}

// SendChatMessagePayload 聊天
type SendChatMessagePayload struct {
	Text string `json:"text" validate:"required,max=200"`
}

// RateWordPayload 词语点赞/点踩
type RateWordPayload struct {
	Word string `json:"word" validate:"required,max=32"`
	Like bool   `json:"like"`
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Limit int `json:"limit" validate:"min=0,max=100"`
}

// --- 服务端响应 Payloads ---

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"serverTimestamp"` // 服务器时间戳（毫秒）
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomCode    string `json:"roomCode"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	HasPassword bool   `json:"hasPassword"`
	Phase       string `json:"phase"`
	CreatedAt   int64  `json:"createdAt"` // 毫秒
}

// RoomsListPayload 房间列表
type RoomsListPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// RoomJoinedPayload 创建或加入房间成功
type RoomJoinedPayload struct {
	RoomCode     string    `json:"roomCode"`
	PlayerID     string    `json:"playerId"`
	Username     string    `json:"username"`
	SessionToken string    `json:"sessionToken"`
	Reconnected  bool      `json:"reconnected"`
	Game         *GameView `json:"game"`
}

// LeftRoomPayload 已离开房间
type LeftRoomPayload struct {
	RoomCode string `json:"roomCode"`
}

// PlayerJoinedPayload 玩家加入
type PlayerJoinedPayload struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

// PlayerLeftPayload 玩家离开
type PlayerLeftPayload struct {
	PlayerID   string `json:"playerId"`
	Username   string `json:"username"`
	NewOwnerID string `json:"newOwnerId,omitempty"` // 房主变更
}

// TeamChangedPayload 玩家换队
type TeamChangedPayload struct {
	PlayerID string `json:"playerId"`
	Team     string `json:"team"`
	Role     string `json:"role"`
}

// SettingsUpdatedPayload 房间设置更新
type SettingsUpdatedPayload struct {
	Settings SettingsDTO `json:"settings"`
}

// GameStartedPayload 开局（game_started / game_restarted）
type GameStartedPayload struct {
	StartingTeam string `json:"startingTeam"`
}

// ClueGivenPayload 线索
type ClueGivenPayload struct {
	PlayerID string `json:"playerId"`
	Team     string `json:"team"`
	Word     string `json:"word"`
	Count    int    `json:"count"`
}

// CardRevealedPayload 翻牌
type CardRevealedPayload struct {
	PlayerID string `json:"playerId"`
	Team     string `json:"team"`
	CardID   int    `json:"cardId"`
	Word     string `json:"word"`
	Type     string `json:"type"`
}

// TurnPassedPayload 回合交换
type TurnPassedPayload struct {
	Team   string `json:"team"`   // 新的当前队伍
	Reason string `json:"reason"` // pass / wrong_card / timer
}

// GameOverPayload 游戏结束
type GameOverPayload struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"` // cards / assassin
}

// VotesUpdatedPayload 终局投票更新
type VotesUpdatedPayload struct {
	Category string          `json:"category"` // prophet / double_agent
	VoterID  string          `json:"voterId,omitempty"`
	Result   *GuessResultDTO `json:"result,omitempty"`
}

// ReturnedToLobbyPayload 返回大厅
type ReturnedToLobbyPayload struct {
	RoomCode string `json:"roomCode"`
}

// ChatMessagePayload 聊天消息
type ChatMessagePayload struct {
	PlayerID  string `json:"playerId"`
	Username  string `json:"username"`
	Team      string `json:"team"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// TauntPayload 嘲讽
type TauntPayload struct {
	PlayerID  string `json:"playerId"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

// WordRatedPayload 词语评价
type WordRatedPayload struct {
	PlayerID string `json:"playerId"`
	Word     string `json:"word"`
	Like     bool   `json:"like"`
	Likes    int64  `json:"likes"`
	Dislikes int64  `json:"dislikes"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	Score    int64   `json:"score"`
	Games    int64   `json:"games"`
	Wins     int64   `json:"wins"`
	WinRate  float64 `json:"winRate"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}
