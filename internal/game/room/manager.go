package room

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
)

// CreateRoom 生成唯一房间号并登记房间，newState 根据房间号生成初始状态
func (rm *RoomManager) CreateRoom(password string, newState func(code string) *game.GameState) (*Room, error) {
	var hash []byte
	if password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), rm.passwordCost)
		if err != nil {
			return nil, fmt.Errorf("生成密码哈希失败: %w", err)
		}
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := rm.generateRoomCode()
	room := newRoom(code, hash, newState(code), rm.now)
	rm.rooms[code] = room

	zap.L().Info("🏠 房间已创建", zap.String("room", code), zap.Bool("password", room.HasPassword()))
	return room, nil
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) (*Room, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	room, ok := rm.rooms[code]
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// RemoveRoom 删除房间
func (rm *RoomManager) RemoveRoom(code string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if _, ok := rm.rooms[code]; !ok {
		return false
	}
	delete(rm.rooms, code)
	return true
}

// GetRoomList 房间列表，按创建时间从新到旧
func (rm *RoomManager) GetRoomList() []Summary {
	rm.mu.RLock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	rm.mu.RUnlock()

	list := make([]Summary, 0, len(rooms))
	for _, room := range rooms {
		list = append(list, room.Summary())
	}
	slices.SortFunc(list, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareString(a.RoomCode, b.RoomCode)
	})
	return list
}

// Count 房间数量
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// GetActiveGamesCount 获取进行中的游戏数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		if room.Snapshot().Phase == game.PhasePlaying {
			count++
		}
	}
	return count
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
