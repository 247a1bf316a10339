package storage

import (
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/board"
)

// AdminConfig 管理员可调的少量配置，只影响之后创建的房间
type AdminConfig struct {
	Words         []string       `json:"words,omitempty"` // 为空时使用内置词库
	SpymasterTime int            `json:"spymasterTime"`   // 秒
	GuesserTime   int            `json:"guesserTime"`     // 秒
	CardSplit     game.CardSplit `json:"cardSplit"`
	MaxPlayers    int            `json:"maxPlayers"`
	TauntCooldown int            `json:"tauntCooldown"` // 秒
}

// Validate 校验配置
func (c *AdminConfig) Validate() bool {
	if c == nil {
		return false
	}
	if len(c.Words) > 0 && len(board.NormalizeWords(c.Words)) < game.BoardSize {
		return false
	}
	if c.TauntCooldown < 0 {
		return false
	}
	s := c.RoomSettings()
	s.TimedMode.Enabled = true // 限时时长同样需要合法
	return s.Validate(0)
}

// RoomSettings 新房间的默认设置，限时模式默认关闭
func (c *AdminConfig) RoomSettings() game.Settings {
	s := game.DefaultSettings()
	s.TimedMode.SpymasterTime = c.SpymasterTime
	s.TimedMode.GuesserTime = c.GuesserTime
	s.CardSplit = c.CardSplit
	s.MaxPlayers = c.MaxPlayers
	return s
}
