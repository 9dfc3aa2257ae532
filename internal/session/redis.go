package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions as JSON strings that redis expires on its own
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url, %w", err)
	}

	return NewRedisStoreWithClient(redis.NewClient(opt)), nil
}

func NewRedisStoreWithClient(c *redis.Client) *RedisStore {
	return &RedisStore{client: c, now: time.Now}
}

func (s *RedisStore) Put(ctx context.Context, d *Data) error {
	ttl := d.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	b, err := json.Marshal(d)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, redisKeyPrefix+d.ID, b, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	b, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}

		return nil, err
	}

	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("corrupt session %s, %w", id, err)
	}

	return &d, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
