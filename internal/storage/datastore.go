// Package storage provides the small durable key-value stores that hold
// per-user state such as the favorite set.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key has never been written.
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnknownBackend is returned by Open for an unrecognised backend name.
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

// Store is the interface that any backend must implement.
type Store interface {
	// Initialize prepares the store (e.g., create tables, open the file).
	Initialize(path string) error

	// Close cleans up resources.
	Close() error

	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Clear removes all data from the store.
	Clear() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// New returns an uninitialized store for the named backend.
func New(backend string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendSQLite:
		return &SQLiteStore{}, nil
	case BackendBolt, "":
		return &BoltStore{}, nil
	case BackendFile:
		return &FileStore{}, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Open creates and initializes the named backend at path.
func Open(backend, path string) (Store, error) {
	s, err := New(backend)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(path); err != nil {
		return nil, fmt.Errorf("open %s store at %s: %w", backend, path, err)
	}
	return s, nil
}
