package store

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable marks genuine I/O failures (permissions, disk full,
// invalid path). Absence and expiration of an entry are never reported
// through it. Match with errors.Is.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrInvalidKey reports a key that cannot be mapped to an entry file: empty,
// or not a safe path element when plain filenames are in use.
var ErrInvalidKey = errors.New("invalid cache key")

// StorageError wraps an underlying I/O failure with the operation and key it
// occurred on. It matches ErrStorageUnavailable under errors.Is and unwraps
// to the cause.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("fucache: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("fucache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

func storageErr(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Err: err}
}
