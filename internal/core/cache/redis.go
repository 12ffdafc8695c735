package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "directory:revoked:"

// RedisRevoker 把注销的 jti 写入 redis，过期时间与令牌一致
type RedisRevoker struct {
	RDB *redis.Client
}

func NewRedis(addr, pass string, db int) *RedisRevoker {
	return &RedisRevoker{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.RDB.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.RDB.Get(ctx, revokedPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisRevoker) Ping(ctx context.Context) error { return r.RDB.Ping(ctx).Err() }

func (r *RedisRevoker) Close() error { return r.RDB.Close() }
