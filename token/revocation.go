package token

import (
	"context"
	"sync"
	"time"
)

// RevokedTokenCache records the jti of logged-out session tokens until they would have expired anyway
type RevokedTokenCache interface {
	Add(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Cleanup() // Remove expired entries
}

// InMemoryRevokedTokenCache is a simple in-memory implementation
type InMemoryRevokedTokenCache struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
	now     func() time.Time
}

func NewInMemoryRevokedTokenCache() *InMemoryRevokedTokenCache {
	return &InMemoryRevokedTokenCache{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (c *InMemoryRevokedTokenCache) Add(_ context.Context, jti string, exp time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
	return nil
}

func (c *InMemoryRevokedTokenCache) IsRevoked(_ context.Context, jti string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists, nil
}

func (c *InMemoryRevokedTokenCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
}

// Len returns the number of tracked revocations.
func (c *InMemoryRevokedTokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.revoked)
}

// StartCleanup runs Cleanup every interval until ctx is cancelled.
func StartCleanup(ctx context.Context, cache RevokedTokenCache, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cache.Cleanup()
			}
		}
	}()
}
