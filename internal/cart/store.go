package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/storage"
)

const keyPrefix = "cart:"

// Store persists carts in a blob store. Expiry is kept inside the value so
// drivers without native TTLs behave the same.
type Store struct {
	blobs storage.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewStore(blobs storage.Store, ttl time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{blobs: blobs, ttl: ttl, now: now}
}

// Load returns the cart for sessionID; an absent or expired cart is empty.
func (s *Store) Load(ctx context.Context, sessionID string) (*Cart, error) {
	empty := &Cart{SessionID: sessionID, Items: []models.CartItem{}}

	raw, found, err := s.blobs.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if !found {
		return empty, nil
	}
	var cart Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if !cart.ExpiresAt.IsZero() && !s.now().Before(cart.ExpiresAt) {
		_ = s.blobs.Delete(ctx, keyPrefix+sessionID)
		return empty, nil
	}
	cart.SessionID = sessionID
	return &cart, nil
}

// Save writes cart and pushes its expiry forward.
func (s *Store) Save(ctx context.Context, cart *Cart) error {
	if s.ttl > 0 {
		cart.ExpiresAt = s.now().Add(s.ttl).UTC()
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.blobs.Put(ctx, keyPrefix+cart.SessionID, raw, s.ttl); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.blobs.Delete(ctx, keyPrefix+sessionID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
