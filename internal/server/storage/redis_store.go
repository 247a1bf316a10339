package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	adminConfigKey    = "admin:config"
	wordRatingsPrefix = "word:ratings:"

	fieldLikes    = "likes"
	fieldDislikes = "dislikes"
)

// RedisStore Redis 存储：管理员配置和词语评价，不保存任何房间状态
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 管理员配置 ---

// SaveAdminConfig 保存管理员配置
func (rs *RedisStore) SaveAdminConfig(ctx context.Context, cfg *AdminConfig) error {
	if cfg == nil {
		return nil
	}

	jsonData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("序列化管理员配置失败: %w", err)
	}
	return rs.client.Set(ctx, adminConfigKey, jsonData, 0).Err()
}

// LoadAdminConfig 加载管理员配置，不存在时返回 nil
func (rs *RedisStore) LoadAdminConfig(ctx context.Context) (*AdminConfig, error) {
	data, err := rs.client.Get(ctx, adminConfigKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cfg AdminConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("反序列化管理员配置失败: %w", err)
	}
	return &cfg, nil
}

// --- 词语评价 ---

// RateWord 记录一次点赞或点踩，返回累计数量
func (rs *RedisStore) RateWord(ctx context.Context, word string, like bool) (likes, dislikes int64, err error) {
	key := wordRatingsPrefix + strings.ToUpper(strings.TrimSpace(word))
	field := fieldDislikes
	if like {
		field = fieldLikes
	}

	pipe := rs.client.TxPipeline()
	pipe.HIncrBy(ctx, key, field, 1)
	all := pipe.HGetAll(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return parseRatings(all.Val())
}

// WordRatings 获取词语的累计评价
func (rs *RedisStore) WordRatings(ctx context.Context, word string) (likes, dislikes int64, err error) {
	key := wordRatingsPrefix + strings.ToUpper(strings.TrimSpace(word))
	data, err := rs.client.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	return parseRatings(data)
}

func parseRatings(data map[string]string) (likes, dislikes int64, err error) {
	if v, ok := data[fieldLikes]; ok {
		if _, err := fmt.Sscan(v, &likes); err != nil {
			return 0, 0, err
		}
	}
	if v, ok := data[fieldDislikes]; ok {
		if _, err := fmt.Sscan(v, &dislikes); err != nil {
			return 0, 0, err
		}
	}
	return likes, dislikes, nil
}
