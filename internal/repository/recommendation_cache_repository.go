package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"game-recommender-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// RecommendationCache 缓存同一会话、同一作答的推荐结果，
// 使刷新页面时看到相同的随机推荐。
type RecommendationCache interface {
	Get(ctx context.Context, key string) (*model.RecommendResult, bool, error)
	Set(ctx context.Context, key string, result *model.RecommendResult, ttl time.Duration) error
	// Invalidate 删除所有缓存的推荐结果，返回删除的数量。
	Invalidate(ctx context.Context) (int, error)
}

type redisRecommendationCache struct {
	redisClient *redis.Client
}

// NewRecommendationCache 创建一个新的 RecommendationCache 实例。
func NewRecommendationCache(redisClient *redis.Client) RecommendationCache {
	return &redisRecommendationCache{redisClient: redisClient}
}

func (r *redisRecommendationCache) key(k string) string {
	return "recommend:" + k
}

func (r *redisRecommendationCache) Get(ctx context.Context, key string) (*model.RecommendResult, bool, error) {
	data, err := r.redisClient.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached recommendation: %w", err)
	}
	var result model.RecommendResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached recommendation: %w", err)
	}
	return &result, true, nil
}

func (r *redisRecommendationCache) Set(ctx context.Context, key string, result *model.RecommendResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}
	if err := r.redisClient.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache recommendation: %w", err)
	}
	return nil
}

func (r *redisRecommendationCache) Invalidate(ctx context.Context) (int, error) {
	var keys []string
	iter := r.redisClient.Scan(ctx, 0, r.key("*"), 500).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan cached recommendations: %w", err)
	}

	deleted := 0
	for start := 0; start < len(keys); start += 500 {
		end := start + 500
		if end > len(keys) {
			end = len(keys)
		}
		n, err := r.redisClient.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete cached recommendations: %w", err)
		}
		deleted += int(n)
	}
	return deleted, nil
}
