// Package integrity 为房间状态提供防篡改哈希、审计哈希链和动作预校验。
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/palemoky/codenames-arena/internal/game"
)

// authoritativeView 参与哈希的权威字段，字段顺序固定
type authoritativeView struct {
	Cards       []game.Card `json:"cards"`
	CurrentTeam game.Team   `json:"currentTeam"`
	Scores      [2]int      `json:"scores"` // dark, light
	Winner      game.Team   `json:"winner"`
}

// StateHash 计算状态权威字段的 SHA-256（十六进制）
func StateHash(s *game.GameState) string {
	if s == nil {
		return ""
	}
	view := authoritativeView{
		Cards:       s.Cards,
		CurrentTeam: s.CurrentTeam,
		Scores:      [2]int{s.Scores[game.TeamDark], s.Scores[game.TeamLight]},
		Winner:      s.Winner,
	}
	if view.Cards == nil {
		view.Cards = []game.Card{}
	}
	// 字段均为可序列化的基础类型，不会出错
	data, _ := json.Marshal(view)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
