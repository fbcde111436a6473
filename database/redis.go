package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client *redis.Client
}

func GetRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisClient{client: client}, nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func csrfKey(token string) string {
	return fmt.Sprintf("csrf:%s", token)
}

// SetSession caches the token-to-user mapping for the auth middleware's
// fast path. The database row stays the source of truth.
func (r *RedisClient) SetSession(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKey(token), uint64(userID), ttl).Err()
}

func (r *RedisClient) GetSession(ctx context.Context, token string) (uint, error) {
	v, err := r.client.Get(ctx, sessionKey(token)).Uint64()
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func (r *RedisClient) TouchSession(ctx context.Context, token string, ttl time.Duration) error {
	return r.client.Expire(ctx, sessionKey(token), ttl).Err()
}

func (r *RedisClient) DeleteSession(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKey(token), csrfKey(token)).Err()
}

// SetCSRFToken stores the per-session CSRF secret alongside the session.
func (r *RedisClient) SetCSRFToken(ctx context.Context, sessionToken, csrfToken string, ttl time.Duration) error {
	return r.client.Set(ctx, csrfKey(sessionToken), csrfToken, ttl).Err()
}

func (r *RedisClient) GetCSRFToken(ctx context.Context, sessionToken string) (string, error) {
	return r.client.Get(ctx, csrfKey(sessionToken)).Result()
}
