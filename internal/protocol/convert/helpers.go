// Package convert 把领域对象转换为下发给客户端的 DTO。
package convert

import (
	"time"

	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/room"
	"github.com/palemoky/codenames-arena/internal/protocol"
)

// Millis 转为毫秒时间戳，零值为 0
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// SettingsToDTO 房间设置
func SettingsToDTO(s game.Settings) protocol.SettingsDTO {
	return protocol.SettingsDTO{
		TimedMode:     s.TimedMode.Enabled,
		SpymasterTime: s.TimedMode.SpymasterTime,
		GuesserTime:   s.TimedMode.GuesserTime,
		ChaosMode:     s.ChaosMode,
		MaxPlayers:    s.MaxPlayers,
		StartingCards: s.CardSplit.Starting,
		OtherCards:    s.CardSplit.Other,
		NeutralCards:  s.CardSplit.Neutral,
		AssassinCards: s.CardSplit.Assassin,
	}
}

// SettingsFromDTO 客户端提交的房间设置
func SettingsFromDTO(d protocol.SettingsDTO) game.Settings {
	return game.Settings{
		TimedMode: game.TimedMode{
			Enabled:       d.TimedMode,
			SpymasterTime: d.SpymasterTime,
			GuesserTime:   d.GuesserTime,
		},
		ChaosMode:  d.ChaosMode,
		MaxPlayers: d.MaxPlayers,
		CardSplit: game.CardSplit{
			Starting: d.StartingCards,
			Other:    d.OtherCards,
			Neutral:  d.NeutralCards,
			Assassin: d.AssassinCards,
		},
	}
}

// RoomListItems 房间列表
func RoomListItems(list []room.Summary) []protocol.RoomListItem {
	items := make([]protocol.RoomListItem, len(list))
	for i, s := range list {
		items[i] = protocol.RoomListItem{
			RoomCode:    s.RoomCode,
			PlayerCount: s.PlayerCount,
			MaxPlayers:  s.MaxPlayers,
			HasPassword: s.HasPassword,
			Phase:       string(s.Phase),
			CreatedAt:   Millis(s.CreatedAt),
		}
	}
	return items
}

// GuessResultToDTO 终局投票结果
func GuessResultToDTO(r *game.GuessResult) *protocol.GuessResultDTO {
	if r == nil {
		return nil
	}
	votes := make(map[string]int, len(r.Votes))
	for k, v := range r.Votes {
		votes[k] = v
	}
	return &protocol.GuessResultDTO{TargetID: r.TargetID, Success: r.Success, Votes: votes}
}

func teamMap(m map[game.Team]int) map[string]int {
	return map[string]int{
		string(game.TeamDark):  m[game.TeamDark],
		string(game.TeamLight): m[game.TeamLight],
	}
}

func voteMap(votes []game.Vote) map[string]string {
	out := make(map[string]string, len(votes))
	for _, v := range votes {
		out[v.VoterID] = v.TargetID
	}
	return out
}
