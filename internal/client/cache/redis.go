package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/starford/inkwell/internal/models"
)

// RedisSlot keeps the snapshot as a single Redis string value.
type RedisSlot struct {
	client *redis.Client
	key    string
}

var _ Slot = (*RedisSlot)(nil)

// NewRedisSlot stores the snapshot under key in client.
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	if key == "" {
		key = DefaultKey
	}
	return &RedisSlot{client: client, key: key}
}

// Load fetches the snapshot; a missing key is ErrMiss.
func (s *RedisSlot) Load(ctx context.Context) ([]models.Post, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: redis get %s: %w", s.key, err)
	}
	return decode(data)
}

// Save overwrites the snapshot with no expiry.
func (s *RedisSlot) Save(ctx context.Context, posts []models.Post) error {
	data, err := encode(posts)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("cache: redis set %s: %w", s.key, err)
	}
	return nil
}
