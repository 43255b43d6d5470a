package tokens

import (
	"context"
	"time"
)

// Reloader keeps a Cache in sync with a Repository.
type Reloader struct {
	repo     Repository
	cache    *Cache
	interval time.Duration
}

func NewReloader(repo Repository, cache *Cache, interval time.Duration) *Reloader {
	return &Reloader{repo: repo, cache: cache, interval: interval}
}

// LoadOnce loads the token set once. On error the current cache contents
// are left untouched.
func (r *Reloader) LoadOnce(ctx context.Context) error {
	m, err := r.repo.LoadTokens(ctx)
	if err != nil {
		return err
	}
	r.cache.Replace(m)
	return nil
}

// Run reloads the token set at the configured interval until ctx is done.
// Load errors are reported through onError and do not stop the loop.
func (r *Reloader) Run(ctx context.Context, onError func(error)) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := r.LoadOnce(ctx); err != nil && onError != nil {
				onError(err)
			}
		case <-ctx.Done():
			return
		}
	}
}
