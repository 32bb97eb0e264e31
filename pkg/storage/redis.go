package storage

import (
	"context"
	"time"
)

// RedisClient is the subset of pkg/redis.Client the store needs.
type RedisClient interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	BlobKey(name string) string
}

// RedisStore namespaces every key under the client's blob prefix.
type RedisStore struct {
	client RedisClient
}

func NewRedisStore(client RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.client.GetBytes(ctx, s.client.BlobKey(key))
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.client.BlobKey(key), value, ttl)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.client.BlobKey(key))
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close is a no-op; the shared redis client is closed by its owner.
func (s *RedisStore) Close() error {
	return nil
}
