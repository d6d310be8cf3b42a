package api

import (
	"context"
	"sync"
	"time"

	"github.com/lienzo/lienzo-go/internal/models"
)

// UserDirectory resolves public profiles by username.
type UserDirectory interface {
	ByUsername(ctx context.Context, username string) (models.PublicUser, error)
}

type userCacheEntry struct {
	user    models.PublicUser
	expires time.Time
}

// CachingUserDirectory wraps another UserDirectory with a TTL-based
// in-memory cache. Feed rendering resolves the same handful of authors over
// and over; a short TTL keeps that off the network without letting renames
// go stale for long.
type CachingUserDirectory struct {
	base UserDirectory
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]userCacheEntry
}

// NewCachingUserDirectory returns a UserDirectory that caches lookups for
// the provided TTL.
func NewCachingUserDirectory(base UserDirectory, ttl time.Duration) *CachingUserDirectory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingUserDirectory{
		base:  base,
		ttl:   ttl,
		items: make(map[string]userCacheEntry),
	}
}

// ByUsername returns the cached profile when available, otherwise it
// delegates to the underlying directory and stores the result.
func (c *CachingUserDirectory) ByUsername(ctx context.Context, username string) (models.PublicUser, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[username]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.user, nil
	}

	user, err := c.base.ByUsername(ctx, username)
	if err != nil {
		return models.PublicUser{}, err
	}

	c.mu.Lock()
	c.items[username] = userCacheEntry{user: user, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return user, nil
}

// Invalidate drops a cached profile, forcing the next lookup to refetch.
func (c *CachingUserDirectory) Invalidate(username string) {
	c.mu.Lock()
	delete(c.items, username)
	c.mu.Unlock()
}
