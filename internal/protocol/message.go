package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "create_room" // 创建房间
	MsgJoinRoom   MessageType = "join_room"   // 加入房间（携带 player_id 即为重连）
	MsgLeaveRoom  MessageType = "leave_room"  // 离开房间
	MsgListRooms  MessageType = "list_rooms"  // 房间列表

	// 大厅操作
	MsgJoinTeam       MessageType = "join_team"       // 选择队伍和角色
	MsgUpdateSettings MessageType = "update_settings" // 房主修改房间设置
	MsgStartGame      MessageType = "start_game"      // 开始游戏

	// 游戏操作
	MsgGiveClue        MessageType = "give_clue"         // 情报官给出线索
	MsgRevealCard      MessageType = "reveal_card"       // 特工翻牌
	MsgPassTurn        MessageType = "pass_turn"         // 结束本队回合
	MsgVoteProphet     MessageType = "vote_prophet"      // 终局投票：先知
	MsgVoteDoubleAgent MessageType = "vote_double_agent" // 终局投票：双面间谍
	MsgRestartGame     MessageType = "restart_game"      // 再来一局
	MsgReturnToLobby   MessageType = "return_to_lobby"   // 返回大厅

	// 非权威事件
	MsgSendChatMessage MessageType = "send_chat_message" // 聊天
	MsgSendTaunt       MessageType = "send_taunt"        // 嘲讽动画
	MsgRateWord        MessageType = "rate_word"         // 词语点赞/点踩

	// 排行榜
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜
)

// 服务端 → 客户端 消息类型
const (
	MsgPong MessageType = "pong" // 心跳 pong

	// 房间相关
	MsgRoomsList    MessageType = "rooms_list"    // 房间列表
	MsgRoomCreated  MessageType = "room_created"  // 房间创建成功
	MsgRoomJoined   MessageType = "room_joined"   // 加入房间成功
	MsgPlayerJoined MessageType = "player_joined" // 其他玩家加入
	MsgPlayerLeft   MessageType = "player_left"   // 玩家离开
	MsgLeftRoom     MessageType = "left_room"     // 自己已离开

	// 游戏流程
	MsgGameUpdated       MessageType = "game_updated"       // 完整游戏视图
	MsgGameStarted       MessageType = "game_started"       // 游戏开始
	MsgGameRestarted     MessageType = "game_restarted"     // 重新开局
	MsgClueGiven         MessageType = "clue_given"         // 有人给出线索
	MsgCardRevealed      MessageType = "card_revealed"      // 有人翻牌
	MsgTurnPassed        MessageType = "turn_passed"        // 回合交换
	MsgGameOver          MessageType = "game_over"          // 游戏结束
	MsgReturnedToLobby   MessageType = "returned_to_lobby"  // 已返回大厅
	MsgVotesUpdated      MessageType = "votes_updated"      // 终局投票更新
	MsgSettingsUpdated   MessageType = "settings_updated"   // 房间设置更新
	MsgTeamChanged       MessageType = "team_changed"       // 玩家换队
	MsgChatMessage       MessageType = "chat_message"       // 聊天消息
	MsgTaunt             MessageType = "taunt"              // 嘲讽
	MsgWordRated         MessageType = "word_rated"         // 词语评价
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
