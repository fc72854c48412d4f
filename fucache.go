// Package fucache is a namespaced, file-backed byte cache. Payloads are
// stored one file per key inside an application-scoped directory, each
// framed with an expiration header, so any process that can read the
// directory can decide an entry's validity from the file alone.
//
// Build a Cache once with [New] and share it; all operations are safe for
// concurrent use:
//
//	c, err := fucache.New("myapp", fucache.WithDefaultTTL(time.Hour))
//	if err != nil { ... }
//	_ = c.Save(ctx, "greeting", []byte("hello"))
//	v, ok, _ := c.Load(ctx, "greeting")
package fucache

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/futa-t/fucache/mem"
	"github.com/futa-t/fucache/metrics"
	"github.com/futa-t/fucache/namespace"
	"github.com/futa-t/fucache/store"
	"github.com/futa-t/fucache/tracing"
)

// ErrNotConfigured reports a cache operation attempted on a Cache that was
// not built with [New].
var ErrNotConfigured = errors.New("fucache: cache not configured")

// Sentinels re-exported from the store package so most callers only need to
// import fucache. Match with errors.Is.
var (
	ErrStorageUnavailable = store.ErrStorageUnavailable
	ErrInvalidKey         = store.ErrInvalidKey
)

// SweepResult reports the aggregate outcome of one cleanup pass.
type SweepResult = store.SweepResult

// Cache is one configured namespace: every operation acts on the directory
// resolved at construction time. Methods are safe for concurrent use by any
// number of goroutines and cooperate with other processes through filesystem
// atomicity alone; concurrent saves to the same key race and the last writer
// wins.
type Cache struct {
	ns         namespace.Namespace
	defaultTTL time.Duration

	fs      *store.FileStore
	sweeper *store.Sweeper
	mem     *mem.Cache
	met     *metrics.Metrics
	trace   *tracing.Config

	mu    sync.Mutex
	loads map[string]*call
}

// call deduplicates concurrent LoadOrSave loaders for the same key.
type call struct {
	wg  sync.WaitGroup
	val []byte
	err error
}

// New resolves the namespace for appName, creating its directory under the
// platform cache root if needed, and returns a ready Cache.
func New(appName string, opts ...Option) (*Cache, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	ns, err := namespace.Resolve(appName, cfg.baseDir)
	if err != nil {
		return nil, err
	}

	var storeOpts []store.Option
	if cfg.plainNames {
		storeOpts = append(storeOpts, store.WithPlainNames())
	}
	fs := store.New(ns.Dir, storeOpts...)

	c := &Cache{
		ns:         ns,
		defaultTTL: cfg.defaultTTL,
		fs:         fs,
		trace:      cfg.tracing,
		loads:      make(map[string]*call),
	}
	c.sweeper = store.NewSweeper(fs, store.SweepConfig{
		Limiter: cfg.sweepLimiter,
		Logger:  cfg.logger,
	})
	if cfg.metricsReg != nil {
		c.met = metrics.New(cfg.metricsReg, ns.Name)
	}
	if cfg.memCost > 0 {
		m, err := mem.New(cfg.memCost)
		if err != nil {
			return nil, err
		}
		c.mem = m
	}
	return c, nil
}

// Name returns the namespace name the cache was configured with.
func (c *Cache) Name() string { return c.ns.Name }

// Dir returns the directory holding the namespace's entries.
func (c *Cache) Dir() string { return c.ns.Dir }

// ready guards every operation against a Cache that was not built with New.
func (c *Cache) ready() error {
	if c == nil || c.fs == nil {
		return ErrNotConfigured
	}
	return nil
}

// Save stores payload under key with the namespace default TTL; with no
// default configured the entry never expires. Any previous entry for the key
// is replaced.
func (c *Cache) Save(ctx context.Context, key string, payload []byte) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.save(ctx, key, payload, c.defaultTTL)
}

// SaveTTL stores payload under key with an explicit TTL, overriding the
// namespace default. A ttl <= 0 means the entry never expires.
func (c *Cache) SaveTTL(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.save(ctx, key, payload, ttl)
}

func (c *Cache) save(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	ctx, span := c.trace.Start(ctx, "save", c.ns.Name)
	err := c.fs.Save(ctx, key, payload, ttl)
	tracing.End(span, err)
	if err != nil {
		return err
	}
	if c.mem != nil {
		c.mem.Set(key, payload, ttl)
	}
	if c.met != nil {
		c.met.Saves.Inc()
	}
	return nil
}

// Load returns the payload stored under key, byte for byte as saved. The
// boolean reports a hit; absent and expired entries are a miss, not an
// error.
func (c *Cache) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := c.ready(); err != nil {
		return nil, false, err
	}
	ctx, span := c.trace.Start(ctx, "load", c.ns.Name)
	payload, ok, err := c.load(ctx, key)
	tracing.SetHit(span, ok)
	tracing.End(span, err)
	return payload, ok, err
}

func (c *Cache) load(ctx context.Context, key string) ([]byte, bool, error) {
	if c.mem != nil {
		if v, ok := c.mem.Get(key); ok {
			if c.met != nil {
				c.met.Hits.Inc()
			}
			return v, true, nil
		}
	}

	e, ok, err := c.fs.LoadEntry(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		if c.met != nil {
			c.met.Misses.Inc()
		}
		return nil, false, nil
	}

	if c.mem != nil {
		// Promote with the entry's remaining lifetime so the memory layer
		// never outlives the durable entry.
		var ttl time.Duration
		if !e.ExpiresAt.IsZero() {
			if ttl = time.Until(e.ExpiresAt); ttl <= 0 {
				ttl = -1 // expired in the meantime; don't cache
			}
		}
		if ttl >= 0 {
			c.mem.Set(key, e.Payload, ttl)
		}
	}
	if c.met != nil {
		c.met.Hits.Inc()
	}
	return e.Payload, true, nil
}

// LoadOrSave returns the payload for key, calling loader on a miss. The
// loader runs at most once per key across concurrent callers of this Cache;
// its result is saved with the given TTL (ttl <= 0 means never expires) and
// returned.
func (c *Cache) LoadOrSave(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	if v, ok, err := c.Load(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return v, nil
	}

	c.mu.Lock()
	if cl, ok := c.loads[key]; ok {
		c.mu.Unlock()
		cl.wg.Wait()
		if cl.err != nil {
			return nil, cl.err
		}
		return bytes.Clone(cl.val), nil
	}

	cl := &call{}
	cl.wg.Add(1)
	c.loads[key] = cl
	c.mu.Unlock()

	cl.val, cl.err = loader(ctx)
	if cl.err == nil {
		cl.err = c.SaveTTL(ctx, key, cl.val, ttl)
	}
	cl.wg.Done()

	c.mu.Lock()
	delete(c.loads, key)
	c.mu.Unlock()

	if cl.err != nil {
		return nil, cl.err
	}
	return bytes.Clone(cl.val), nil
}

// Delete removes the entry for key. Deleting an absent entry succeeds.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.ready(); err != nil {
		return err
	}
	ctx, span := c.trace.Start(ctx, "delete", c.ns.Name)
	err := c.fs.Delete(ctx, key)
	tracing.End(span, err)
	if err != nil {
		return err
	}
	if c.mem != nil {
		c.mem.Del(key)
	}
	if c.met != nil {
		c.met.Deletes.Inc()
	}
	return nil
}

// CleanAll removes every entry in the namespace regardless of expiration.
// The namespace directory itself persists, and files the cache does not own
// are left untouched. Per-entry failures are counted in the result and never
// abort the sweep.
func (c *Cache) CleanAll(ctx context.Context) (SweepResult, error) {
	if err := c.ready(); err != nil {
		return SweepResult{}, err
	}
	ctx, span := c.trace.Start(ctx, "clean_all", c.ns.Name)
	res, err := c.sweeper.All(ctx)
	tracing.SetRemoved(span, res.Removed, res.Failed)
	tracing.End(span, err)
	if c.mem != nil {
		c.mem.Clear()
	}
	c.recordSweep(res)
	return res, err
}

// CleanExpired removes only entries past their expiration. Entries with no
// expiration are never touched. Undecodable entries are treated as garbage
// and removed as well.
func (c *Cache) CleanExpired(ctx context.Context) (SweepResult, error) {
	if err := c.ready(); err != nil {
		return SweepResult{}, err
	}
	ctx, span := c.trace.Start(ctx, "clean_expired", c.ns.Name)
	res, err := c.sweeper.Expired(ctx)
	tracing.SetRemoved(span, res.Removed, res.Failed)
	tracing.End(span, err)
	c.recordSweep(res)
	return res, err
}

func (c *Cache) recordSweep(res SweepResult) {
	if c.met == nil {
		return
	}
	c.met.SweepRemoved.Add(float64(res.Removed))
	c.met.SweepFailed.Add(float64(res.Failed))
}
