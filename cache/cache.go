// Package cache provides a TTL byte cache for rendered API responses, keyed
// by logical endpoint name. Racing writers last-write-win; entries are
// idempotent within a refresh window so this has no correctness impact.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// Cache is a TTL response cache backed by bigcache.
type Cache struct {
	store *bigcache.BigCache
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) (*Cache, error) {
	config := bigcache.DefaultConfig(ttl)
	config.CleanWindow = time.Minute
	if ttl < time.Minute {
		config.CleanWindow = ttl
	}

	store, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, err
	}

	return &Cache{store: store}, nil
}

// Get returns the cached payload for key, or false if absent or expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	payload, err := c.store.Get(key)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Set stores a payload under key.
func (c *Cache) Set(key string, payload []byte) error {
	return c.store.Set(key, payload)
}

// Delete removes a key. Missing keys are not an error.
func (c *Cache) Delete(key string) error {
	err := c.store.Delete(key)
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Close releases the cache resources.
func (c *Cache) Close() error {
	return c.store.Close()
}
