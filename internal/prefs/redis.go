package prefs

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the mode under a single Redis key so that several
// machines share it.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store using key "taskboard:<profile>:view_mode".
func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{client: client, key: "taskboard:" + profile + ":view_mode"}
}

// Key returns the Redis key holding the mode.
func (s *RedisStore) Key() string {
	return s.key
}

// Load returns the stored mode, DefaultMode when the key is missing or holds
// an unknown value.
func (s *RedisStore) Load(ctx context.Context) (Mode, error) {
	v, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return DefaultMode, nil
	}
	if err != nil {
		return DefaultMode, err
	}
	return Resolve(v), nil
}

// Save writes the mode without expiry.
func (s *RedisStore) Save(ctx context.Context, m Mode) error {
	if err := validate(m); err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, string(m), 0).Err()
}
