package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript 只在持有者匹配时删除锁。
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// JobLocker 提供基于 Redis 的离线任务互斥锁。
type JobLocker interface {
	// Acquire 尝试获取锁，成功时返回释放锁所需的 token。
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, name, token string) error
}

type redisJobLocker struct {
	redisClient *redis.Client
}

// NewJobLocker 创建一个新的 JobLocker 实例。
func NewJobLocker(redisClient *redis.Client) JobLocker {
	return &redisJobLocker{redisClient: redisClient}
}

func lockKey(name string) string {
	return fmt.Sprintf("lock:job:%s", name)
}

func (r *redisJobLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.redisClient.SetNX(ctx, lockKey(name), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	return token, ok, nil
}

func (r *redisJobLocker) Release(ctx context.Context, name, token string) error {
	if err := releaseScript.Run(ctx, r.redisClient, []string{lockKey(name)}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}
	return nil
}
