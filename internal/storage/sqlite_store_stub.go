//go:build !cgo

package storage

import "errors"

type SQLiteStore struct{}

func (s *SQLiteStore) Initialize(path string) error {
	return errors.New("SQLite backend is not available in non-CGO builds. Please use --store bolt or rebuild with CGO_ENABLED=1")
}

func (s *SQLiteStore) Close() error { return nil }

func (s *SQLiteStore) Clear() error { return nil }

func (s *SQLiteStore) Get(key string) ([]byte, error) { return nil, ErrNotFound }

func (s *SQLiteStore) Put(key string, value []byte) error { return nil }

func (s *SQLiteStore) Delete(key string) error { return nil }
