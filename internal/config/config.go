package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	PublicURL      string `yaml:"public_url"` // 分享链接和二维码使用的地址
}

// RedisConfig Redis 配置，addr 为空时不启用持久化
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CardSplitConfig 每局卡牌分布
type CardSplitConfig struct {
	Starting int `yaml:"starting"`
	Other    int `yaml:"other"`
	Neutral  int `yaml:"neutral"`
	Assassin int `yaml:"assassin"`
}

// GameConfig 游戏配置
type GameConfig struct {
	MaxPlayers            int             `yaml:"max_players"`
	SpymasterTime         int             `yaml:"spymaster_time"`          // 情报官限时（秒）
	GuesserTime           int             `yaml:"guesser_time"`            // 特工限时（秒）
	TauntCooldown         int             `yaml:"taunt_cooldown"`          // 嘲讽冷却（秒）
	CardSplit             CardSplitConfig `yaml:"card_split"`              // 卡牌分布
	EmptyRoomGrace        int             `yaml:"empty_room_grace"`        // 空房间保留（秒）
	RoomMaxAge            int             `yaml:"room_max_age"`            // 房间无活动回收（分钟）
	CleanupInterval       int             `yaml:"cleanup_interval"`        // 清理间隔（秒）
	SeatGrace             int             `yaml:"seat_grace"`              // 断线保留座位（秒）
	ShutdownTimeout       int             `yaml:"shutdown_timeout"`        // 优雅关闭超时（秒）
	ShutdownCheckInterval int             `yaml:"shutdown_check_interval"` // 关闭时检查间隔（秒）
	RoomCleanupDelay      int             `yaml:"room_cleanup_delay"`      // 关闭前等待（秒）
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins      []string           `yaml:"allowed_origins"`
	BlockedIPs          []string           `yaml:"blocked_ips"` // 支持 CIDR
	TokenSecret         string             `yaml:"token_secret"`
	TokenTTL            int                `yaml:"token_ttl"` // 会话令牌有效期（小时）
	RequireSessionToken bool               `yaml:"require_session_token"`
	AdminToken          string             `yaml:"admin_token"` // 为空时关闭管理接口
	RateLimit           RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit        MessageLimitConfig `yaml:"message_limit"`
	ChatLimit           ChatLimitConfig    `yaml:"chat_limit"`
}

// RateLimitConfig 连接速率限制（按 IP）
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// MessageLimitConfig 消息速率限制（按连接）
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// ChatLimitConfig 聊天速率限制（按连接）
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	Cooldown     int `yaml:"cooldown"` // 秒
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// 默认值
const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMaxConnections = 10000
	defaultMaxPlayers     = 10
	defaultSpymasterTime  = 90
	defaultGuesserTime    = 60
	defaultTokenTTL       = 24
	defaultLogLevel       = "info"
)

// --- 时长辅助 ---

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// TauntCooldownDuration 返回嘲讽冷却时长
func (c *GameConfig) TauntCooldownDuration() time.Duration { return seconds(c.TauntCooldown) }

// EmptyRoomGraceDuration 返回空房间保留时长
func (c *GameConfig) EmptyRoomGraceDuration() time.Duration { return seconds(c.EmptyRoomGrace) }

// RoomMaxAgeDuration 返回房间无活动回收时长
func (c *GameConfig) RoomMaxAgeDuration() time.Duration {
	return time.Duration(c.RoomMaxAge) * time.Minute
}

// CleanupIntervalDuration 返回清理间隔
func (c *GameConfig) CleanupIntervalDuration() time.Duration { return seconds(c.CleanupInterval) }

// SeatGraceDuration 返回断线保留座位时长
func (c *GameConfig) SeatGraceDuration() time.Duration { return seconds(c.SeatGrace) }

// ShutdownTimeoutDuration 返回优雅关闭超时时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration { return seconds(c.ShutdownTimeout) }

// ShutdownCheckIntervalDuration 返回关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return seconds(c.ShutdownCheckInterval)
}

// RoomCleanupDelayDuration 返回关闭前等待时长
func (c *GameConfig) RoomCleanupDelayDuration() time.Duration { return seconds(c.RoomCleanupDelay) }

// TokenTTLDuration 返回会话令牌有效期
func (c *SecurityConfig) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Hour
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration { return seconds(c.BanDuration) }

// CooldownDuration 返回聊天冷却时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration { return seconds(c.Cooldown) }

// Load 加载配置文件，未填写的字段使用默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置，不启用 Redis
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// setDefault 零值时设置默认值
func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.Host, defaultHost)
	setDefault(&c.Server.Port, defaultPort)
	setDefault(&c.Server.MaxConnections, defaultMaxConnections)

	g := &c.Game
	setDefault(&g.MaxPlayers, defaultMaxPlayers)
	setDefault(&g.SpymasterTime, defaultSpymasterTime)
	setDefault(&g.GuesserTime, defaultGuesserTime)
	setDefault(&g.TauntCooldown, 5)
	if g.CardSplit == (CardSplitConfig{}) {
		g.CardSplit = CardSplitConfig{Starting: 9, Other: 8, Neutral: 7, Assassin: 1}
	}
	setDefault(&g.EmptyRoomGrace, 60)
	setDefault(&g.RoomMaxAge, 120)
	setDefault(&g.CleanupInterval, 30)
	setDefault(&g.SeatGrace, 300)
	setDefault(&g.ShutdownTimeout, 300)
	setDefault(&g.ShutdownCheckInterval, 10)
	setDefault(&g.RoomCleanupDelay, 5)

	s := &c.Security
	if len(s.AllowedOrigins) == 0 {
		s.AllowedOrigins = []string{"*"}
	}
	setDefault(&s.TokenTTL, defaultTokenTTL)
	setDefault(&s.RateLimit.MaxPerSecond, 10)
	setDefault(&s.RateLimit.MaxPerMinute, 60)
	setDefault(&s.RateLimit.BanDuration, 60)
	setDefault(&s.MessageLimit.MaxPerSecond, 20)
	setDefault(&s.ChatLimit.MaxPerSecond, 1)
	setDefault(&s.ChatLimit.MaxPerMinute, 30)
	setDefault(&s.ChatLimit.Cooldown, 5)

	setDefault(&c.Log.Level, defaultLogLevel)
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("无效端口: %d", c.Server.Port))
	}
	if c.Server.MaxConnections <= 0 {
		errs = append(errs, errors.New("max_connections 必须大于 0"))
	}
	split := c.Game.CardSplit
	if split.Starting+split.Other+split.Neutral+split.Assassin != 25 {
		errs = append(errs, fmt.Errorf("卡牌分布之和必须为 25: %+v", split))
	}
	if c.Security.TokenSecret == "" {
		errs = append(errs, errors.New("token_secret 不能为空"))
	}
	return errors.Join(errs...)
}
