// Package tokens holds the in-memory API token cache and its reloader.
// Tokens only raise per-client rate limits; anonymous use stays possible.
package tokens

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInvalidAPIKey signals that the provided API key is not known.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrStoreNotReady signals that the token store has not been loaded yet.
	// This can happen during startup when the DB isn't ready.
	ErrStoreNotReady = errors.New("token store not ready")
)

// Entry is one provisioned API token.
type Entry struct {
	RateLimit int
	Comment   string
}

// Repository loads the full token set from a backing store.
type Repository interface {
	LoadTokens(ctx context.Context) (map[string]Entry, error)
}

// Cache is the RWMutex-guarded token set consulted on every keyed request.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewCache() *Cache {
	return &Cache{}
}

// Ready reports whether the cache has been populated at least once.
func (c *Cache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries != nil
}

// Replace swaps in a new token set wholesale.
func (c *Cache) Replace(m map[string]Entry) {
	entries := make(map[string]Entry, len(m))
	for k, v := range m {
		entries[k] = v
	}
	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
}

// Validate checks whether the given token exists.
func (c *Cache) Validate(token string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[token]
	return ok
}

// RateLimit returns the configured limit for the token, or 0 when the token
// is unknown, which disables token-based limiting for that request.
func (c *Cache) RateLimit(token string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[token].RateLimit
}
