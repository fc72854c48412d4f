// Package namespace resolves the cache directory for an application name.
// The same name always resolves to the same directory, and a name can never
// form a path outside the base directory.
package namespace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/futa-t/fucache/store"
)

// ErrInvalidName reports an application name that cannot form a safe
// directory segment.
var ErrInvalidName = errors.New("invalid namespace name")

// Namespace is a resolved cache namespace: a name and the directory that
// holds its entries.
type Namespace struct {
	Name string
	Dir  string
}

// Resolve derives the cache directory for name under base and creates it
// (and any parents) if missing; an existing directory is fine. An empty base
// defaults to the platform cache root (os.UserCacheDir).
func Resolve(name, base string) (Namespace, error) {
	if err := checkName(name); err != nil {
		return Namespace{}, err
	}
	if base == "" {
		d, err := os.UserCacheDir()
		if err != nil {
			return Namespace{}, &store.StorageError{Op: "resolve cache root", Err: err}
		}
		base = d
	}
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Namespace{}, &store.StorageError{Op: "create namespace dir", Err: err}
	}
	return Namespace{Name: name, Dir: dir}, nil
}

// checkName rejects names that are empty or could escape the base directory.
func checkName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case filepath.IsAbs(name) || strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}
