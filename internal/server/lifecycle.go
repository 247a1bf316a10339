package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
)

// statsInterval 监控日志间隔
const statsInterval = 30 * time.Second

// monitorStats 定期记录服务器状态并清理空闲的限流条目
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		pruned := s.rateLimiter.Prune()

		zap.L().Info("📊 [监控]",
			zap.Int("online", s.GetOnlineCount()),
			zap.Int("rooms", s.sessions.Rooms().Count()),
			zap.Int("active_games", s.sessions.Rooms().GetActiveGamesCount()),
			zap.Int("timers", s.scheduler.Active()),
			zap.Int("goroutines", runtime.NumGoroutine()),
			zap.String("conns", fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections)),
			zap.Float64("mem_mb", float64(m.Alloc)/1024/1024),
			zap.Int("pruned_limiters", pruned))
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接和新房间
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.BroadcastToLobby(codec.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    protocol.ErrCodeServerMaintenance,
		Message: "👷🏻‍♂️ 维护模式：停止新的房间创建",
	}))
	zap.L().Info("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 等待进行中的对局结束（最多 timeout）后关闭服务器
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	rooms := s.sessions.Rooms()
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		active := rooms.GetActiveGamesCount()
		if active == 0 {
			zap.L().Info("✅ 所有对局已结束", zap.Int("delay_seconds", s.config.Game.RoomCleanupDelay))
			s.Broadcast(codec.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
				Code:    protocol.ErrCodeServerMaintenance,
				Message: fmt.Sprintf("🚧 服务器将在 %d 秒后停机维护！", s.config.Game.RoomCleanupDelay),
			}))
			break
		}
		zap.L().Info("⏳ 等待对局结束", zap.Int("active_games", active))
		<-ticker.C
	}

	if active := rooms.GetActiveGamesCount(); active > 0 {
		zap.L().Warn("⚠️ 超时，强制关闭", zap.Int("active_games", active))
	}

	time.Sleep(s.config.Game.RoomCleanupDelayDuration())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Shutdown(ctx)
}

// Shutdown 停止后台任务，关闭所有连接和 Redis
func (s *Server) Shutdown(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			zap.L().Warn("HTTP 服务关闭失败", zap.Error(err))
		}
	}

	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.RUnlock()

	if s.redis != nil {
		_ = s.redis.Close()
	}
	zap.L().Info("👋 服务器已关闭")
}
