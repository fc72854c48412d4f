// Package mem provides an optional in-process read layer backed by
// ristretto. It sits in front of the file store: loads consult it first and
// disk hits are promoted into it. It never owns entry lifecycle — deletes
// and sweeps on the durable store invalidate it.
package mem

import (
	"bytes"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is the memory layer. Each entry costs 1 toward maxCost.
type Cache struct {
	rc *ristretto.Cache[string, []byte]
}

// New creates a memory layer holding at most maxCost entries.
func New(maxCost int64) (*Cache, error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{rc: rc}, nil
}

// Get returns the cached payload for key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	v, ok := c.rc.Get(key)
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

// Set stores payload under key. A ttl <= 0 keeps the entry until eviction.
func (c *Cache) Set(key string, payload []byte, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	c.rc.SetWithTTL(key, bytes.Clone(payload), 1, ttl)
	c.rc.Wait()
}

// Del drops the entry for key.
func (c *Cache) Del(key string) { c.rc.Del(key) }

// Clear drops every entry.
func (c *Cache) Clear() { c.rc.Clear() }

// Close releases the layer's resources.
func (c *Cache) Close() { c.rc.Close() }
