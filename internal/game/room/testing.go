//go:build !production

package room

import (
	"time"

	"github.com/palemoky/codenames-arena/internal/game"
)

// NewMockRoom 创建测试用的 Room
func NewMockRoom(code string, state *game.GameState) *Room {
	if state == nil {
		state = game.NewGameState(code, game.DefaultSettings(), time.Now())
	}
	return newRoom(code, nil, state, time.Now)
}

// AddRoomForTest 添加房间用于测试
func (rm *RoomManager) AddRoomForTest(room *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rooms[room.Code] = room
}
