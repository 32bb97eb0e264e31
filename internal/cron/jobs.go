package cron

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/grameenmart/storefront/pkg/logger"
)

const (
	PurgeExpiredJobName = "purge-expired-blobs"
	ReloadJobName       = "reload-bindings"
)

type expiryPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// PurgeExpiredJob drops carts and admin sessions whose ttl ran out from a
// store that has no native expiry.
type PurgeExpiredJob struct {
	store expiryPurger
	logg  *logger.Logger
}

func NewPurgeExpiredJob(store expiryPurger, logg *logger.Logger) (*PurgeExpiredJob, error) {
	if store == nil {
		return nil, fmt.Errorf("expiry purger required")
	}
	return &PurgeExpiredJob{store: store, logg: logg}, nil
}

func (j *PurgeExpiredJob) Name() string { return PurgeExpiredJobName }

func (j *PurgeExpiredJob) Run(ctx context.Context) error {
	purged, err := j.store.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge expired keys: %w", err)
	}
	if purged > 0 && j.logg != nil {
		j.logg.Info(j.logg.WithField(ctx, "purged", purged), "expired keys removed")
	}
	return nil
}

// Reloader refreshes an in-memory view from its backend.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadJob refreshes every binding so writes made by other processes, such
// as the catalog importer, reach the cached views.
type ReloadJob struct {
	targets map[string]Reloader
}

func NewReloadJob(targets map[string]Reloader) (*ReloadJob, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("at least one reload target required")
	}
	return &ReloadJob{targets: targets}, nil
}

func (j *ReloadJob) Name() string { return ReloadJobName }

func (j *ReloadJob) Run(ctx context.Context) error {
	names := make([]string, 0, len(j.targets))
	for name := range j.targets {
		names = append(names, name)
	}
	sort.Strings(names)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		target := j.targets[name]
		g.Go(func() error {
			if err := target.Reload(gctx); err != nil {
				return fmt.Errorf("reload %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
