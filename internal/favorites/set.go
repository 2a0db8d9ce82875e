// Package favorites keeps the user's favorited games, persisted as a whole to
// a durable key-value store on every change.
package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"boardshelf/internal/catalog"
	"boardshelf/internal/storage"
)

// StorageKey is the fixed key the set is persisted under.
const StorageKey = "favorites"

// Set maps title to the full record that was favorited. Two records sharing a
// title are the same favorite.
type Set struct {
	mu       sync.Mutex
	store    storage.Store
	entries  map[string]catalog.GameRecord
	degraded bool
	log      *zap.Logger
}

// Option configures a Set.
type Option func(*Set)

// WithLogger sets the logger used to report storage degradation.
func WithLogger(log *zap.Logger) Option {
	return func(s *Set) {
		if log != nil {
			s.log = log
		}
	}
}

// Open loads the persisted set from store. A nil store gives a memory-only set.
// Read failures do not fail Open; the set degrades to memory-only instead.
func Open(store storage.Store, opts ...Option) *Set {
	s := &Set{
		store:   store,
		entries: make(map[string]catalog.GameRecord),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = storage.NewMemoryStore()
	}

	s.mu.Lock()
	s.refresh()
	s.mu.Unlock()
	return s
}

// Toggle adds r if no favorite with its title exists, otherwise removes it.
// It reports whether r is a favorite afterwards.
func (s *Set) Toggle(r catalog.GameRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh()
	_, exists := s.entries[r.Title]
	if exists {
		delete(s.entries, r.Title)
	} else {
		s.entries[r.Title] = r
	}
	s.persist()
	return !exists
}

// Remove deletes the favorite with title, reporting whether one existed.
func (s *Set) Remove(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh()
	if _, ok := s.entries[title]; !ok {
		return false
	}
	delete(s.entries, title)
	s.persist()
	return true
}

// Clear removes every favorite by deleting the stored value.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]catalog.GameRecord)
	if s.degraded {
		return
	}
	if err := s.store.Delete(StorageKey); err != nil {
		s.degrade("delete", err)
	}
}

// Reset wipes the whole backing store, including keys the set does not own,
// and leaves the set empty.
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]catalog.GameRecord)
	if s.degraded {
		return
	}
	if err := s.store.Clear(); err != nil {
		s.degrade("clear", err)
	}
}

// Contains reports whether title is a favorite.
func (s *Set) Contains(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[title]
	return ok
}

// Titles returns a membership snapshot for rendering many cards at once.
func (s *Set) Titles() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.entries))
	for t := range s.entries {
		out[t] = true
	}
	return out
}

// List re-reads the store and returns the favorited records ordered by title.
func (s *Set) List() []catalog.GameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()
	return s.sorted()
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Degraded reports whether the set has fallen back to memory-only because the
// store failed.
func (s *Set) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Set) sorted() []catalog.GameRecord {
	out := make([]catalog.GameRecord, 0, len(s.entries))
	for _, r := range s.entries {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b catalog.GameRecord) int {
		return strings.Compare(a.Title, b.Title)
	})
	return out
}

// refresh replaces the in-memory entries with the stored value. Callers hold mu.
func (s *Set) refresh() {
	if s.degraded {
		return
	}
	data, err := s.store.Get(StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.entries = make(map[string]catalog.GameRecord)
		return
	}
	if err != nil {
		s.degrade("read", err)
		return
	}
	entries, err := decode(data)
	if err != nil {
		s.degrade("decode", err)
		return
	}
	s.entries = entries
}

// persist writes the whole set back. Callers hold mu.
func (s *Set) persist() {
	if s.degraded {
		return
	}
	data, err := json.Marshal(s.sorted())
	if err != nil {
		s.degrade("encode", err)
		return
	}
	if err := s.store.Put(StorageKey, data); err != nil {
		s.degrade("write", err)
	}
}

func (s *Set) degrade(op string, err error) {
	s.degraded = true
	s.log.Warn("favorites storage unavailable, keeping favorites in memory for this session",
		zap.String("op", op),
		zap.Error(err))
}

func decode(data []byte) (map[string]catalog.GameRecord, error) {
	var records []catalog.GameRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	entries := make(map[string]catalog.GameRecord, len(records))
	for _, r := range records {
		entries[r.Title] = r
	}
	return entries, nil
}
