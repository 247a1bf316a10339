package room

import (
	"time"

	"github.com/palemoky/codenames-arena/internal/game"
)

// Summary 房间列表中公开的信息，不包含密码
type Summary struct {
	RoomCode    string
	PlayerCount int
	MaxPlayers  int
	HasPassword bool
	Phase       game.Phase
	CreatedAt   time.Time
}

// Summary 房间摘要
func (r *Room) Summary() Summary {
	s := r.Snapshot()
	return Summary{
		RoomCode:    r.Code,
		PlayerCount: len(s.Players),
		MaxPlayers:  s.Settings.MaxPlayers,
		HasPassword: r.HasPassword(),
		Phase:       s.Phase,
		CreatedAt:   r.CreatedAt,
	}
}
