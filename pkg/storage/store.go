package storage

import (
	"context"
	"time"
)

// Store persists opaque values under string keys. It backs the whole-blob
// data client and the cart session store.
type Store interface {
	// Get returns the value at key; found is false when nothing is stored.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Put replaces the value at key. A positive ttl lets drivers that
	// support expiry drop the key on their own.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
