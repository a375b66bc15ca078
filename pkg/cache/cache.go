// Package cache provides a small in-process TTL cache with
// stale-while-revalidate and singleflight-collapsed loads. It fronts
// hot read paths such as the trending-topics list.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Options struct {
	TTL                  time.Duration
	StaleWhileRevalidate time.Duration
	MaxEntries           int
}

type entry struct {
	value     interface{}
	expiresAt time.Time
	staleAt   time.Time
}

type Cache struct {
	mu    sync.RWMutex
	items map[string]*entry
	order []string
	opts  Options
	sf    singleflight.Group
}

func New(opts Options) *Cache {
	return &Cache{
		items: make(map[string]*entry),
		order: make([]string, 0, 64),
		opts:  opts,
	}
}

// Loader fetches the value for key on a cache miss.
type Loader func(ctx context.Context, key string) (interface{}, error)

// Get returns the cached value for key, loading it through loader on a
// miss. A fresh entry is returned directly; a stale-but-usable entry
// is returned while one background refresh runs; concurrent misses for
// the same key are collapsed into a single load.
func (c *Cache) Get(ctx context.Context, key string, loader Loader) (interface{}, error) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.items[key]
	if ok && now.Before(e.expiresAt) {
		val := e.value
		c.mu.RUnlock()
		return val, nil
	}
	if ok && now.Before(e.staleAt) {
		val := e.value
		c.mu.RUnlock()
		go func() {
			_, _, _ = c.sf.Do("refresh:"+key, func() (interface{}, error) {
				if v, err := loader(context.WithoutCancel(ctx), key); err == nil {
					c.Set(key, v)
				}
				return nil, nil
			})
		}()
		return val, nil
	}
	c.mu.RUnlock()

	val, err, _ := c.sf.Do(key, func() (interface{}, error) {
		v, err := loader(ctx, key)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores val under key with the configured TTL.
func (c *Cache) Set(key string, val interface{}) {
	now := time.Now()
	e := &entry{
		value:     val,
		expiresAt: now.Add(c.opts.TTL),
		staleAt:   now.Add(c.opts.TTL + c.opts.StaleWhileRevalidate),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	c.items[key] = e
	c.evictIfNeeded()
}

// Invalidate drops key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok {
		return
	}
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// FIFO eviction keeps the map bounded
func (c *Cache) evictIfNeeded() {
	if c.opts.MaxEntries <= 0 {
		return
	}
	for len(c.items) > c.opts.MaxEntries && len(c.order) > 0 {
		victim := c.order[0]
		c.order = c.order[1:]
		delete(c.items, victim)
	}
}
