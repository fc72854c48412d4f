package fucache

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/futa-t/fucache/tracing"
)

// config holds the internal configuration assembled via functional options.
type config struct {
	baseDir      string
	defaultTTL   time.Duration
	plainNames   bool
	memCost      int64
	metricsReg   prometheus.Registerer
	tracing      *tracing.Config
	logger       *slog.Logger
	sweepLimiter *rate.Limiter
}

// Option configures a Cache.
type Option func(*config)

// WithBaseDir overrides the parent directory namespaces are created under.
// The default is the platform cache root (os.UserCacheDir).
func WithBaseDir(dir string) Option {
	return func(c *config) {
		c.baseDir = dir
	}
}

// WithDefaultTTL sets the TTL applied by Save. A zero d (the default) means
// entries saved without an explicit TTL never expire.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *config) {
		c.defaultTTL = d
	}
}

// WithPlainFilenames stores entries under the raw key instead of its MD5
// digest. Keys must then be single, traversal-safe path elements; operations
// reject anything else with ErrInvalidKey.
func WithPlainFilenames() Option {
	return func(c *config) {
		c.plainNames = true
	}
}

// WithMemoryLayer puts a ristretto-backed in-process layer holding up to
// maxEntries entries in front of the file store. Loads consult it first;
// saves, deletes and sweeps keep it coherent with the files on disk.
func WithMemoryLayer(maxEntries int64) Option {
	return func(c *config) {
		c.memCost = maxEntries
	}
}

// WithMetrics registers Prometheus collectors for the cache's operations on
// reg. One Cache per registry; the collectors carry the namespace as a
// constant label.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.metricsReg = reg
	}
}

// WithTracing enables OpenTelemetry spans around every cache operation.
func WithTracing(cfg *tracing.Config) Option {
	return func(c *config) {
		c.tracing = cfg
	}
}

// WithLogger sets the logger used for sweep diagnostics. The default
// discards them.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithSweepRateLimit throttles cleanup sweeps to rps deletions per second
// with the given burst, keeping bulk cleanup from saturating the disk.
func WithSweepRateLimit(rps float64, burst int) Option {
	return func(c *config) {
		c.sweepLimiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}
