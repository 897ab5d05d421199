// Package session holds server-side session stores. A session is a small
// string map keyed by an opaque id carried in the session cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "session:"

// RedisStore keeps each session in one hash. Every write refreshes the TTL,
// so active sessions slide forward and idle ones expire.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: defaultKeyPrefix, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	if sessionID == "" {
		return "", false, nil
	}
	val, err := s.client.HGet(ctx, s.buildKey(sessionID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, key, value string) error {
	if sessionID == "" {
		return errors.New("session id cannot be empty")
	}
	redisKey := s.buildKey(sessionID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisKey, key, value)
	pipe.Expire(ctx, redisKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Pop reads and removes key in one MULTI so a value can only be taken once.
func (s *RedisStore) Pop(ctx context.Context, sessionID, key string) (string, bool, error) {
	if sessionID == "" {
		return "", false, nil
	}
	redisKey := s.buildKey(sessionID)

	pipe := s.client.TxPipeline()
	get := pipe.HGet(ctx, redisKey, key)
	pipe.HDel(ctx, redisKey, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return "", false, fmt.Errorf("failed to pop session value: %w", err)
	}

	val, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to pop session value: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.buildKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func (s *RedisStore) buildKey(sessionID string) string {
	return s.prefix + sessionID
}
