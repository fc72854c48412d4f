package store

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// SweepResult reports the aggregate outcome of one cleanup pass.
type SweepResult struct {
	// Removed counts the entries this sweep actually deleted.
	Removed int

	// Failed counts entries that could not be examined or deleted for a
	// reason other than having already vanished.
	Failed int
}

// SweepConfig holds optional sweep behaviour.
type SweepConfig struct {
	// Limiter throttles deletions when set. The sweep waits for a token
	// before every removal.
	Limiter *rate.Limiter

	// Logger receives per-entry sweep failures. Nil discards them.
	Logger *slog.Logger
}

// Sweeper enumerates and deletes entries in a FileStore directory. Sweeps
// are best-effort and continue on per-entry failures: an entry that
// disappears mid-scan counts as already clean, and one that cannot be
// removed is counted in Failed without aborting the pass.
type Sweeper struct {
	store   *FileStore
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewSweeper creates a Sweeper over s.
func NewSweeper(s *FileStore, cfg SweepConfig) *Sweeper {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{store: s, limiter: cfg.Limiter, log: log}
}

// All deletes every entry in the store directory, regardless of expiration.
// Files without the entry suffix are left untouched. The directory itself
// persists.
func (w *Sweeper) All(ctx context.Context) (SweepResult, error) {
	return w.sweep(ctx, func(string) decision { return condemn })
}

// Expired deletes only entries whose expiration has passed. Entries without
// an expiration are never removed. An entry whose header cannot be decoded
// is treated as garbage and removed as well.
func (w *Sweeper) Expired(ctx context.Context) (SweepResult, error) {
	now := w.store.now()
	return w.sweep(ctx, func(path string) decision { return w.judge(path, now) })
}

type decision int

const (
	condemn decision = iota
	keep
	vanished
	broken
)

// judge decides the fate of one entry from its header alone.
func (w *Sweeper) judge(path string, now time.Time) decision {
	h, err := readHeader(path)
	switch {
	case err == nil && h.expired(now):
		return condemn
	case err == nil:
		return keep
	case errors.Is(err, fs.ErrNotExist):
		vanishedMidScan(w.log, path)
		return vanished
	case errors.Is(err, errShortHeader) || errors.Is(err, errUnknownVersion):
		return condemn
	default:
		w.log.Warn("sweep: cannot read entry header", "path", path, "error", err)
		return broken
	}
}

// sweep is the shared enumeration loop. The context is only consulted while
// waiting on the rate limiter; cancellation there ends the sweep early with
// the partial result.
func (w *Sweeper) sweep(ctx context.Context, judge func(path string) decision) (SweepResult, error) {
	var res SweepResult

	dirents, err := os.ReadDir(w.store.dir)
	if err != nil {
		return res, storageErr("sweep", "", err)
	}

	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), entryExt) {
			continue
		}
		path := filepath.Join(w.store.dir, de.Name())

		switch judge(path) {
		case keep, vanished:
			continue
		case broken:
			res.Failed++
			continue
		case condemn:
		}

		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				return res, err
			}
		}
		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				vanishedMidScan(w.log, path)
				continue
			}
			res.Failed++
			w.log.Warn("sweep: cannot remove entry", "path", path, "error", err)
			continue
		}
		res.Removed++
	}
	return res, nil
}

// vanishedMidScan notes an entry deleted by someone else between enumeration
// and removal. Not an error: the entry is gone either way.
func vanishedMidScan(log *slog.Logger, path string) {
	log.Debug("sweep: entry vanished mid-scan", "path", path)
}
