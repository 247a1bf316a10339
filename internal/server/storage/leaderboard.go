package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/protocol"
)

const (
	// Redis key
	playerStatsKey = "player:stats:"
	leaderboardKey = "leaderboard:score"
)

// PlayerStats 玩家统计数据，以用户名（小写）为键
type PlayerStats struct {
	Username string `json:"username"`

	// 总计
	TotalGames int `json:"total_games"` // 总场次
	Wins       int `json:"wins"`        // 胜场
	Losses     int `json:"losses"`      // 败场

	// 情报官/特工分开统计
	SpymasterGames int `json:"spymaster_games"`
	SpymasterWins  int `json:"spymaster_wins"`
	GuesserGames   int `json:"guesser_games"`
	GuesserWins    int `json:"guesser_wins"`

	// 积分
	Score int `json:"score"`

	// 连胜/连败
	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"` // 最大连胜

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// 积分规则
const (
	WinAsSpymaster  = 20
	WinAsGuesser    = 15
	LoseAsSpymaster = -10
	LoseAsGuesser   = -5

	// 连胜加成
	StreakBonus3  = 5
	StreakBonus5  = 10
	StreakBonus10 = 20
)

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client, now: time.Now}
}

func statsKey(username string) string {
	return playerStatsKey + strings.ToLower(strings.TrimSpace(username))
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, username string) (*PlayerStats, error) {
	data, err := lm.redis.Get(ctx, statsKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lm *LeaderboardManager) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, statsKey(stats.Username), data, 0).Err()
}

// updateRoleStats 更新角色相关统计并返回基础积分变化
func updateRoleStats(stats *PlayerStats, role game.Role, isWinner bool) int {
	switch {
	case role == game.RoleSpymaster && isWinner:
		stats.SpymasterGames++
		stats.SpymasterWins++
		return WinAsSpymaster
	case role == game.RoleSpymaster:
		stats.SpymasterGames++
		return LoseAsSpymaster
	case isWinner:
		stats.GuesserGames++
		stats.GuesserWins++
		return WinAsGuesser
	default:
		stats.GuesserGames++
		return LoseAsGuesser
	}
}

// updateWinLossStats 更新胜负统计和连胜/连败
func updateWinLossStats(stats *PlayerStats, isWinner bool) {
	if isWinner {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	} else {
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}

	if stats.CurrentStreak > stats.MaxWinStreak {
		stats.MaxWinStreak = stats.CurrentStreak
	}
}

// calculateStreakBonus 计算连胜加成
func calculateStreakBonus(streak int) int {
	switch {
	case streak >= 10:
		return StreakBonus10
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// RecordGameResult 记录单个玩家的一局结果
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, username string, role game.Role, isWinner bool) error {
	stats, err := lm.GetPlayerStats(ctx, username)
	if err != nil {
		return err
	}
	now := lm.now().Unix()
	if stats == nil {
		stats = &PlayerStats{CreatedAt: now}
	}

	stats.Username = username
	stats.TotalGames++
	stats.LastPlayedAt = now

	scoreChange := updateRoleStats(stats, role, isWinner)
	updateWinLossStats(stats, isWinner)

	scoreChange += calculateStreakBonus(stats.CurrentStreak)
	stats.Score = max(0, stats.Score+scoreChange)

	if err := lm.SavePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lm.redis.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(stats.Score),
		Member: strings.ToLower(stats.Username),
	}).Err()
}

// RecordGame 记录一局已结束的对局，只统计选择了队伍的玩家
func (lm *LeaderboardManager) RecordGame(ctx context.Context, s *game.GameState) error {
	if s == nil || s.Phase != game.PhaseEnded || !s.Winner.Valid() {
		return nil
	}
	var errs []error
	for _, p := range s.Players {
		if !p.Team.Valid() || p.IsBot {
			continue
		}
		if err := lm.RecordGameResult(ctx, p.Username, p.Role, p.Team == s.Winner); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetLeaderboard 获取排行榜（从高到低）
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	results, err := lm.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(results))
	for i, result := range results {
		member, _ := result.Member.(string)
		stats, err := lm.GetPlayerStats(ctx, member)
		if err != nil || stats == nil {
			continue
		}

		winRate := 0.0
		if stats.TotalGames > 0 {
			winRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
		}
		entries = append(entries, protocol.LeaderboardEntry{
			Rank:     i + 1,
			Username: stats.Username,
			Score:    int64(result.Score),
			Games:    int64(stats.TotalGames),
			Wins:     int64(stats.Wins),
			WinRate:  winRate,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, username string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, strings.ToLower(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
