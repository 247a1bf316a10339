// Package server 提供 WebSocket 接入、HTTP 接口和连接安全控制。
package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/codenames-arena/internal/config"
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/room"
	"github.com/palemoky/codenames-arena/internal/game/rule"
	"github.com/palemoky/codenames-arena/internal/server/broadcast"
	"github.com/palemoky/codenames-arena/internal/server/handler"
	"github.com/palemoky/codenames-arena/internal/server/scheduler"
	"github.com/palemoky/codenames-arena/internal/server/session"
	"github.com/palemoky/codenames-arena/internal/server/storage"
)

// Version 构建版本，由 -ldflags 注入
var Version = "dev"

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client // 未配置 Redis 时为 nil
	redisStore  *storage.RedisStore
	leaderboard *storage.LeaderboardManager
	engine      *rule.Engine
	sessions    *session.Manager
	router      *broadcast.Router
	scheduler   *scheduler.Scheduler
	handler     *handler.Handler
	clients     map[string]*Client
	clientsMu   sync.RWMutex
	startedAt   time.Time

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	chatLimiter    *ChatRateLimiter
	ipFilter       *IPFilter
	upgrader       websocket.Upgrader

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	httpServer *http.Server
	cancel     context.CancelFunc
}

// NewServer 创建服务器实例，redis.addr 为空时不启用持久化
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:    cfg,
		engine:    rule.NewEngine(nil),
		router:    broadcast.NewRouter(),
		clients:   make(map[string]*Client),
		startedAt: time.Now(),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		chatLimiter: NewChatRateLimiter(
			cfg.Security.ChatLimit.MaxPerSecond,
			cfg.Security.ChatLimit.MaxPerMinute,
			cfg.Security.ChatLimit.CooldownDuration(),
		),
		ipFilter:       NewIPFilter(cfg.Security.BlockedIPs...),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}
		s.redis = rdb
		s.redisStore = storage.NewRedisStore(rdb)
		s.leaderboard = storage.NewLeaderboardManager(rdb)
	}

	s.sessions = session.NewManager(
		room.NewRoomManager(),
		s.engine,
		session.NewTokenIssuer(cfg.Security.TokenSecret, cfg.Security.TokenTTLDuration()),
		session.Config{
			Defaults:            defaultSettings(cfg),
			TauntCooldown:       cfg.Game.TauntCooldownDuration(),
			RequireSessionToken: cfg.Security.RequireSessionToken,
			SeatGrace:           cfg.Game.SeatGraceDuration(),
		},
	)
	s.scheduler = scheduler.New(s.sessions, time.Second)
	s.sessions.SetPublisher(s.router)
	s.sessions.SetScheduler(s.scheduler)
	if s.leaderboard != nil {
		s.sessions.SetResultRecorder(s.leaderboard)
	}

	if err := s.loadAdminConfig(); err != nil {
		zap.L().Warn("加载管理配置失败，使用默认配置", zap.Error(err))
	}

	deps := handler.HandlerDeps{
		Server:      s,
		Sessions:    s.sessions,
		Router:      s.router,
		ChatLimiter: s.chatLimiter,
	}
	if s.redis != nil {
		deps.Leaderboard = s.leaderboard
		deps.Store = s.redisStore
	}
	s.handler = handler.NewHandler(deps)

	zap.L().Info("🔒 安全配置",
		zap.Int("conn_per_sec", cfg.Security.RateLimit.MaxPerSecond),
		zap.Int("msg_per_sec", cfg.Security.MessageLimit.MaxPerSecond),
		zap.Int("chat_per_sec", cfg.Security.ChatLimit.MaxPerSecond),
		zap.Int("max_connections", cfg.Server.MaxConnections),
		zap.Bool("require_session_token", cfg.Security.RequireSessionToken))

	return s, nil
}

// defaultSettings 配置文件中的新房间默认设置
func defaultSettings(cfg *config.Config) game.Settings {
	s := game.DefaultSettings()
	s.MaxPlayers = cfg.Game.MaxPlayers
	s.TimedMode.SpymasterTime = cfg.Game.SpymasterTime
	s.TimedMode.GuesserTime = cfg.Game.GuesserTime
	s.CardSplit = game.CardSplit{
		Starting: cfg.Game.CardSplit.Starting,
		Other:    cfg.Game.CardSplit.Other,
		Neutral:  cfg.Game.CardSplit.Neutral,
		Assassin: cfg.Game.CardSplit.Assassin,
	}
	return s
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	g := s.config.Game
	s.sessions.StartCleanup(ctx, g.CleanupIntervalDuration(), g.RoomMaxAgeDuration(), g.EmptyRoomGraceDuration())
	go s.monitorStats(ctx)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	zap.L().Info("🚀 服务器启动",
		zap.String("addr", "ws://"+addr+"/ws"),
		zap.String("version", Version),
		zap.Int("cpus", runtime.NumCPU()))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
