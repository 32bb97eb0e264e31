package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/grameenmart/storefront/pkg/logger"
	bolt "go.etcd.io/bbolt"
)

const (
	defaultBucket = "storefront"
	expiryBucket  = "storefront_expiry"
)

// BoltStore keeps values in a single bucket of an embedded bbolt file. Keys
// written with a ttl get a deadline in a side bucket; expired keys read as
// absent until PurgeExpired removes them.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	expiry []byte
	now    func() time.Time
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(ctx context.Context, path string, logg *logger.Logger) (*BoltStore, error) {
	if path == "" {
		return nil, errors.New("bolt path is required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file: %w", err)
	}
	store := &BoltStore{db: db, bucket: []byte(defaultBucket), expiry: []byte(expiryBucket), now: time.Now}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(store.bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(store.expiry)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bolt bucket: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "path", path), "bolt store opened")
	}
	return store, nil
}

func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	now := s.now()
	err := s.db.View(func(tx *bolt.Tx) error {
		if s.expired(tx, []byte(key), now) {
			return nil
		}
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw != nil {
			// bolt values are only valid for the life of the transaction
			value = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

func (s *BoltStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := s.now().Add(ttl)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(s.bucket).Put([]byte(key), value); err != nil {
			return err
		}
		if ttl <= 0 {
			return tx.Bucket(s.expiry).Delete([]byte(key))
		}
		stamp := make([]byte, 8)
		binary.BigEndian.PutUint64(stamp, uint64(deadline.UnixNano()))
		return tx.Bucket(s.expiry).Put([]byte(key), stamp)
	})
}

func (s *BoltStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(s.bucket).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket(s.expiry).Delete([]byte(key))
	})
}

// PurgeExpired deletes every key whose ttl has run out and reports how many
// were removed.
func (s *BoltStore) PurgeExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := s.now()
	purged := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		var keys [][]byte
		err := tx.Bucket(s.expiry).ForEach(func(k, v []byte) error {
			if deadlinePassed(v, now) {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := tx.Bucket(s.bucket).Delete(k); err != nil {
				return err
			}
			if err := tx.Bucket(s.expiry).Delete(k); err != nil {
				return err
			}
		}
		purged = len(keys)
		return nil
	})
	return purged, err
}

func (s *BoltStore) expired(tx *bolt.Tx, key []byte, now time.Time) bool {
	return deadlinePassed(tx.Bucket(s.expiry).Get(key), now)
}

func deadlinePassed(stamp []byte, now time.Time) bool {
	if len(stamp) != 8 {
		return false
	}
	return !now.Before(time.Unix(0, int64(binary.BigEndian.Uint64(stamp))))
}

func (s *BoltStore) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return errors.New("bolt bucket missing")
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
