// Package view holds the front-end state of one catalog session: the current
// criteria snapshot, sort key and page mode. It turns that state into the list
// the presentation layer shows.
package view

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"boardshelf/internal/catalog"
	"boardshelf/internal/favorites"
	"boardshelf/internal/library"
)

const (
	cacheSize       = 64
	suggestionCount = 3
)

// State tells the presentation layer which of its states to show.
type State int

const (
	// NotLoaded means the catalog has not arrived yet; filter controls are inert.
	NotLoaded State = iota
	// Unavailable means loading failed; a retry is possible.
	Unavailable
	// Empty means the catalog is loaded but nothing matched.
	Empty
	// Ready means there is at least one record to show.
	Ready
)

func (s State) String() string {
	switch s {
	case NotLoaded:
		return "not-loaded"
	case Unavailable:
		return "unavailable"
	case Empty:
		return "empty"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result is one refresh of the display list.
type Result struct {
	State       State
	Records     []catalog.GameRecord
	Suggestions []string
	Err         error
}

// Session is not safe for concurrent use; it models a single user's screen.
type Session struct {
	lib       *library.Library
	favs      *favorites.Set
	engine    *catalog.Engine
	favEngine *catalog.Engine
	log       *zap.Logger

	criteria      catalog.FilterCriteria
	sort          catalog.SortKey
	defaultSort   catalog.SortKey
	favoritesOnly bool

	cache       *lru.Cache
	cacheHits   int
	cacheMisses int
}

// Option configures a Session.
type Option func(*Session)

// WithDefaultSort sets the sort key Clear returns to.
func WithDefaultSort(key catalog.SortKey) Option {
	return func(s *Session) {
		s.defaultSort = key
		s.sort = key
	}
}

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSession wires a session over a library, favorite set and engine.
func NewSession(lib *library.Library, favs *favorites.Set, engine *catalog.Engine, opts ...Option) *Session {
	cache, _ := lru.New(cacheSize)
	basic, _ := catalog.CapabilitiesFor(catalog.VariantBasic)
	s := &Session{
		lib:         lib,
		favs:        favs,
		engine:      engine,
		favEngine:   catalog.NewEngine(basic, catalog.WithLocale(engine.Locale())),
		log:         zap.NewNop(),
		criteria:    catalog.DefaultCriteria(),
		sort:        catalog.SortNone,
		defaultSort: catalog.SortNone,
		cache:       cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the catalog into the library. It can be called again after a
// failure to retry.
func (s *Session) Load(ctx context.Context, src library.Source) error {
	err := s.lib.Load(ctx, src)
	s.cache.Purge()
	return err
}

// Loaded reports whether the catalog is available for filtering.
func (s *Session) Loaded() bool {
	return s.lib.State() == library.Ready
}

// Criteria returns the current criteria snapshot.
func (s *Session) Criteria() catalog.FilterCriteria {
	return s.criteria
}

// SetCriteria replaces the criteria snapshot.
func (s *Session) SetCriteria(c catalog.FilterCriteria) {
	s.criteria = c
}

// Update edits the criteria snapshot in place.
func (s *Session) Update(fn func(*catalog.FilterCriteria)) {
	c := s.criteria
	c.Genres = slices.Clone(c.Genres)
	c.Languages = slices.Clone(c.Languages)
	c.Difficulties = slices.Clone(c.Difficulties)
	fn(&c)
	s.criteria = c
}

// Sort returns the current sort key.
func (s *Session) Sort() catalog.SortKey {
	return s.sort
}

// SetSort changes the sort key.
func (s *Session) SetSort(key catalog.SortKey) {
	s.sort = key
}

// Clear resets every criterion and the sort key to their defaults.
func (s *Session) Clear() {
	s.criteria = catalog.DefaultCriteria()
	s.sort = s.defaultSort
}

// ShowFavorites switches between the full catalog and the favorites page.
func (s *Session) ShowFavorites(on bool) {
	s.favoritesOnly = on
}

// FavoritesOnly reports whether the favorites page is shown.
func (s *Session) FavoritesOnly() bool {
	return s.favoritesOnly
}

// Capabilities returns what the catalog view offers.
func (s *Session) Capabilities() catalog.Capabilities {
	return s.engine.Capabilities()
}

// SortAllowed reports whether key is offered on the current page. The
// favorites page has its own, smaller set of sorts.
func (s *Session) SortAllowed(key catalog.SortKey) bool {
	if s.favoritesOnly {
		return s.favEngine.Capabilities().SortAllowed(key)
	}
	return s.engine.Capabilities().SortAllowed(key)
}

// Refresh derives the display list from the current state.
func (s *Session) Refresh() Result {
	if s.favoritesOnly {
		return s.refreshFavorites()
	}

	switch s.lib.State() {
	case library.NotLoaded, library.Loading:
		return Result{State: NotLoaded}
	case library.Unavailable:
		return Result{State: Unavailable, Err: s.lib.Err()}
	}

	records, _ := s.lib.Snapshot()
	key := s.cacheKey()
	var out []catalog.GameRecord
	if v, ok := s.cache.Get(key); ok {
		s.cacheHits++
		out = v.([]catalog.GameRecord)
	} else {
		s.cacheMisses++
		out = s.engine.Apply(records, s.criteria, s.sort)
		s.cache.Add(key, out)
	}
	return s.result(slices.Clone(out), records)
}

func (s *Session) refreshFavorites() Result {
	sortKey := s.sort
	if sortKey == catalog.SortNone {
		sortKey = catalog.SortRating
	}
	favs := s.favs.List()
	return s.result(s.favEngine.Apply(favs, s.criteria, sortKey), favs)
}

func (s *Session) result(out, pool []catalog.GameRecord) Result {
	if len(out) > 0 {
		return Result{State: Ready, Records: out}
	}
	return Result{
		State:       Empty,
		Records:     out,
		Suggestions: catalog.Suggest(pool, s.criteria.Search, suggestionCount),
	}
}

// ToggleFavorite flips the favorite state of the record with title. It reports
// whether the record is a favorite afterwards.
func (s *Session) ToggleFavorite(title string) (bool, error) {
	r, ok := s.lookup(title)
	if !ok {
		return false, fmt.Errorf("no game titled %q", title)
	}
	added := s.favs.Toggle(r)
	s.log.Debug("favorite toggled", zap.String("title", r.Title), zap.Bool("favorite", added))
	return added, nil
}

// RemoveFavorite unconditionally removes title from the favorites.
func (s *Session) RemoveFavorite(title string) bool {
	return s.favs.Remove(strings.TrimSpace(title))
}

// ClearFavorites removes every favorite.
func (s *Session) ClearFavorites() {
	s.favs.Clear()
	s.log.Debug("favorites cleared")
}

// IsFavorite reports whether title is a favorite.
func (s *Session) IsFavorite(title string) bool {
	return s.favs.Contains(title)
}

// Favorites returns the favorite set.
func (s *Session) Favorites() *favorites.Set {
	return s.favs
}

// Find returns the record with title from the catalog, or from the favorites
// when the catalog does not have it.
func (s *Session) Find(title string) (catalog.GameRecord, bool) {
	return s.lookup(title)
}

// Facet returns the selectable values for f, or nil before the catalog loads.
func (s *Session) Facet(f catalog.Facet) []string {
	records, loaded := s.lib.Snapshot()
	if !loaded {
		return nil
	}
	return catalog.DistinctValues(records, f, s.engine.Locale())
}

// CacheStats returns hit and miss counts of the derived-list cache.
func (s *Session) CacheStats() (hits, misses int) {
	return s.cacheHits, s.cacheMisses
}

func (s *Session) lookup(title string) (catalog.GameRecord, bool) {
	if r, ok := s.lib.Find(title); ok {
		return r, true
	}
	title = strings.TrimSpace(title)
	for _, r := range s.favs.List() {
		if strings.EqualFold(r.Title, title) {
			return r, true
		}
	}
	return catalog.GameRecord{}, false
}

func (s *Session) cacheKey() string {
	c, _ := json.Marshal(s.criteria)
	return fmt.Sprintf("%d|%s|%s", s.lib.Generation(), s.sort, c)
}
