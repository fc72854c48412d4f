// Package store implements the durable entry store: one file per cache key
// inside a namespace directory, each framed with an expiration header so a
// reader can decide an entry's validity from the file alone.
package store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// entryExt marks files owned by the store; sweeps ignore everything else in
// the directory.
const entryExt = ".cache"

// FileStore maps cache keys to files under a single directory. Methods are
// safe for concurrent use from any number of goroutines or processes, as
// long as the filesystem provides atomic rename semantics. Concurrent saves
// to the same key race; the last rename wins.
type FileStore struct {
	dir       string
	hashNames bool

	now func() time.Time // for testing; defaults to time.Now
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithPlainNames stores entries under the raw key instead of its MD5 digest.
// Keys must then be valid single path elements; operations reject keys
// containing separators or "..".
func WithPlainNames() Option {
	return func(s *FileStore) { s.hashNames = false }
}

// New creates a FileStore rooted at dir. The directory must already exist;
// the namespace resolver creates it.
func New(dir string, opts ...Option) *FileStore {
	s := &FileStore{dir: dir, hashNames: true, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Dir returns the directory the store operates on.
func (s *FileStore) Dir() string { return s.dir }

// filename maps a key to its entry file name. Hashed mode digests the key,
// so any non-empty string is safe; plain mode requires the key itself to be
// a traversal-safe path element.
func (s *FileStore) filename(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if s.hashNames {
		sum := md5.Sum([]byte(key))
		return hex.EncodeToString(sum[:]) + entryExt, nil
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key + entryExt, nil
}

func (s *FileStore) path(key string) (string, error) {
	name, err := s.filename(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes payload under key, replacing any previous entry. A ttl > 0
// stamps the entry with an absolute expiration; ttl <= 0 means the entry
// never expires. The entry is written to a temporary file and renamed into
// place, so a concurrent Load sees either the old entry or the new one,
// never a torn write. On failure any pre-existing entry is left untouched.
func (s *FileStore) Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return storageErr("save", key, err)
	}

	_, err = tmp.Write(encodeEntry(payload, s.now(), ttl))
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return storageErr("save", key, err)
	}
	return nil
}

// Load returns the payload stored under key, byte for byte as saved. The
// boolean reports whether a live entry was found: absent, expired and
// undecodable entries are all a miss, not an error. Expired and undecodable
// files are removed opportunistically; losing that race to another deleter
// is fine.
func (s *FileStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok, err := s.LoadEntry(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return e.Payload, true, nil
}

// LoadEntry is Load plus the entry's metadata (creation and expiration
// timestamps).
func (s *FileStore) LoadEntry(ctx context.Context, key string) (Entry, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return Entry{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, storageErr("load", key, err)
	}

	h, payload, err := decodeEntry(raw)
	if err != nil {
		// An entry we cannot decode holds no data worth returning.
		s.discard(path)
		return Entry{}, false, nil
	}
	if h.expired(s.now()) {
		s.discard(path)
		return Entry{}, false, nil
	}
	return h.entry(payload), true, nil
}

// discard removes an entry file, tolerating a racing deleter.
func (s *FileStore) discard(path string) {
	_ = os.Remove(path)
}

// Delete removes the entry for key. Deleting an absent entry is a no-op.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storageErr("delete", key, err)
	}
	return nil
}
