package binding

import (
	"context"
	"fmt"
	"sync"

	"github.com/grameenmart/storefront/internal/dataclient"
	"github.com/grameenmart/storefront/pkg/storage"
)

// DefaultBanner is shown until an admin saves a banner.
const DefaultBanner = "🎉 Special Offer: Free delivery on orders above ₹500! 🎉"

// Banner caches the storefront banner text. The text is stored raw, not
// JSON encoded.
type Banner struct {
	store storage.Store

	mu     sync.Mutex
	loaded bool
	text   string
}

func NewBanner(store storage.Store) (*Banner, error) {
	if store == nil {
		return nil, fmt.Errorf("banner store required")
	}
	return &Banner{store: store}, nil
}

// Get returns the saved banner, or DefaultBanner when none (or an empty one)
// is stored.
func (b *Banner) Get(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		if err := b.reloadLocked(ctx); err != nil {
			return "", err
		}
	}
	return b.text, nil
}

func (b *Banner) Set(ctx context.Context, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.Put(ctx, dataclient.BannerBlobKey, []byte(text), 0); err != nil {
		return fmt.Errorf("write banner: %w", err)
	}
	return b.reloadLocked(ctx)
}

func (b *Banner) Reload(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reloadLocked(ctx)
}

func (b *Banner) reloadLocked(ctx context.Context) error {
	raw, found, err := b.store.Get(ctx, dataclient.BannerBlobKey)
	if err != nil {
		return fmt.Errorf("read banner: %w", err)
	}
	b.text = DefaultBanner
	if found && len(raw) > 0 {
		b.text = string(raw)
	}
	b.loaded = true
	return nil
}
