// Package library is the record store: it holds the master collection, loaded
// once from the feed and read-only afterwards.
package library

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"boardshelf/internal/catalog"
)

// Source produces the master collection.
type Source interface {
	Load(ctx context.Context) ([]catalog.GameRecord, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]catalog.GameRecord, error)

func (f SourceFunc) Load(ctx context.Context) ([]catalog.GameRecord, error) {
	return f(ctx)
}

// State describes the load lifecycle.
type State int

const (
	NotLoaded State = iota
	Loading
	Ready
	Unavailable
)

func (s State) String() string {
	switch s {
	case NotLoaded:
		return "not-loaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Library holds the current snapshot. A successful Load replaces the snapshot
// wholesale; the slice handed out is never modified afterwards.
type Library struct {
	mu         sync.RWMutex
	records    []catalog.GameRecord
	state      State
	err        error
	generation uint64
	log        *zap.Logger
}

// New returns an empty, not yet loaded library.
func New(log *zap.Logger) *Library {
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{log: log}
}

// Load fetches the collection from src. On failure the previous snapshot, if
// any, is dropped and the library reports Unavailable until a later Load
// succeeds.
func (l *Library) Load(ctx context.Context, src Source) error {
	l.mu.Lock()
	l.state = Loading
	l.mu.Unlock()

	records, err := src.Load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	if err != nil {
		l.records = nil
		l.state = Unavailable
		l.err = err
		l.log.Warn("catalog load failed", zap.Error(err))
		return err
	}
	l.records = slices.Clip(slices.Clone(records))
	l.state = Ready
	l.err = nil
	return nil
}

// Snapshot returns the master collection and whether it has been loaded.
// Callers must treat the slice as read-only.
func (l *Library) Snapshot() ([]catalog.GameRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.records, l.state == Ready
}

// State returns the current lifecycle state.
func (l *Library) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the error from the last failed load.
func (l *Library) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Generation increments on every completed load, successful or not. Caches
// keyed on the snapshot use it to notice reloads.
func (l *Library) Generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.generation
}

// Find returns the first record with the given title, ignoring case.
func (l *Library) Find(title string) (catalog.GameRecord, bool) {
	records, _ := l.Snapshot()
	for _, r := range records {
		if strings.EqualFold(r.Title, strings.TrimSpace(title)) {
			return r, true
		}
	}
	return catalog.GameRecord{}, false
}
