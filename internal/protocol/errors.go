package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeUnauthorized      = 1003 // 会话令牌无效
	ErrCodeConnectionLost    = 1004
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeGameInProgress    = 2004 // 游戏已开始
	ErrCodeWrongPassword     = 2005
	ErrCodeNotRoomOwner      = 2006
	ErrCodeInvalidSettings   = 2007
	ErrCodeNotEnoughPlayers  = 2008
	ErrCodeInvalidTeam       = 2009
	ErrCodeGameNotStart      = 3001
	ErrCodeNotYourTurn       = 3002
	ErrCodeWrongRole         = 3003
	ErrCodeInvalidClue       = 3004
	ErrCodeCardRevealed      = 3005
	ErrCodeInvalidCard       = 3006
	ErrCodeGameEnded         = 3007
	ErrCodeVotingUnavailable = 4001
	ErrCodeInvalidVote       = 4002
	ErrCodeAlreadyVoted      = 4003
	ErrCodeStaleTimer        = 4004
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeUnauthorized:      "会话令牌无效或已过期",
	ErrCodeConnectionLost:    "连接已断开",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeRoomFull:          "房间已满",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeGameInProgress:    "游戏已开始",
	ErrCodeWrongPassword:     "房间密码错误",
	ErrCodeNotRoomOwner:      "只有房主可以执行此操作",
	ErrCodeInvalidSettings:   "房间设置无效",
	ErrCodeNotEnoughPlayers:  "玩家人数不足",
	ErrCodeInvalidTeam:       "无效的队伍或角色",
	ErrCodeGameNotStart:      "游戏尚未开始",
	ErrCodeNotYourTurn:       "还没轮到您",
	ErrCodeWrongRole:         "您的角色不能执行此操作",
	ErrCodeInvalidClue:       "无效的线索",
	ErrCodeCardRevealed:      "这张牌已经翻开",
	ErrCodeInvalidCard:       "卡牌不存在",
	ErrCodeGameEnded:         "游戏已结束",
	ErrCodeVotingUnavailable: "当前无法投票",
	ErrCodeInvalidVote:       "无效的投票对象",
	ErrCodeAlreadyVoted:      "您已经投过票了",
	ErrCodeStaleTimer:        "计时器已过期",
	ErrCodeServerMaintenance: "服务器维护中",
}
