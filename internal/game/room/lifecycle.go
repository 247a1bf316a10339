package room

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// generateRoomCode 生成房间号，调用方需持有写锁
func (rm *RoomManager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// EvictStale 清理过期房间：空置超过 emptyGrace，或最后活动距今超过 maxAge。
// 返回被清理的房间号。
func (rm *RoomManager) EvictStale(maxAge, emptyGrace time.Duration) []string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	now := rm.now()
	var evicted []string
	for code, room := range rm.rooms {
		emptySince := room.EmptySince()
		idle := now.Sub(room.Snapshot().LastActivity)

		switch {
		case !emptySince.IsZero() && now.Sub(emptySince) >= emptyGrace:
			zap.L().Info("🧹 空房间已清理", zap.String("room", code))
		case maxAge > 0 && idle > maxAge:
			zap.L().Info("🧹 房间超时已清理", zap.String("room", code), zap.Duration("idle", idle))
		default:
			continue
		}
		delete(rm.rooms, code)
		evicted = append(evicted, code)
	}
	return evicted
}

// StartCleanup 定期清理过期房间，直到 ctx 取消。onEvict 在目录锁外调用。
func (rm *RoomManager) StartCleanup(ctx context.Context, interval, maxAge, emptyGrace time.Duration, onEvict func(codes []string)) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if codes := rm.EvictStale(maxAge, emptyGrace); len(codes) > 0 && onEvict != nil {
					onEvict(codes)
				}
			}
		}
	}()
}
