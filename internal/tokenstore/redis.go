package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps the token under a single Redis key so several client processes share one session.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore builds a Redis-backed store. A zero ttl keeps the token until cleared.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if key == "" {
		key = "auth_token"
	}
	return &RedisStore{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger.With().Str("component", "token_store").Logger(),
	}
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	s.logger.Debug().Msg("auth token stored")
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.logger.Debug().Msg("auth token cleared")
	return nil
}
