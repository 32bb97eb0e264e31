package cron

import (
	"context"
	"sync"
)

// Lock keeps two cycles from overlapping.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LocalLock is an in-process Lock. The bolt file is held exclusively by one
// process, so nothing wider is needed for the jobs that touch it.
type LocalLock struct {
	mu sync.Mutex
}

// Acquire never blocks; it reports false while another cycle holds the lock.
func (l *LocalLock) Acquire(context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

func (l *LocalLock) Release(context.Context) error {
	l.mu.Unlock()
	return nil
}
