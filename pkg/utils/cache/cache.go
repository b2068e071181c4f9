package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mpapenbr/race-strategy-sim/log"
)

var ErrCacheMiss = errors.New("cache miss")

type (
	LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (*V, error)
	Option[K comparable, V any]     func(*Cache[K, V])

	entry[V any] struct {
		data    *V
		expires time.Time
	}
	// Cache keeps loaded values for a fixed duration.
	Cache[K comparable, V any] struct {
		mu         sync.Mutex
		items      map[K]entry[V]
		expiration time.Duration
		loader     LoaderFunc[K, V]
		now        func() time.Time
		l          *log.Logger
	}
)

func WithExpiration[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.expiration = d
	}
}

func WithLoader[K comparable, V any](lf LoaderFunc[K, V]) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.loader = lf
	}
}

func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.now = now
	}
}

func WithLogger[K comparable, V any](l *log.Logger) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.l = l
	}
}

func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		items:      make(map[K]entry[V]),
		expiration: 5 * time.Minute,
		now:        time.Now,
		l:          log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value or loads it. Failed loads are not cached.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (*V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		if c.now().Before(e.expires) {
			return e.data, nil
		}
		delete(c.items, key)
	}
	if c.loader == nil {
		return nil, ErrCacheMiss
	}
	v, err := c.loader(ctx, key)
	if err != nil {
		c.l.Debug("load failed", log.Any("key", key), log.ErrorField(err))
		return nil, err
	}
	c.items[key] = entry[V]{data: v, expires: c.now().Add(c.expiration)}
	return v, nil
}

func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
