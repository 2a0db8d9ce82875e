package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardshelf/internal/catalog"
	"boardshelf/internal/favorites"
	"boardshelf/internal/library"
	"boardshelf/internal/storage"
)

func games() []catalog.GameRecord {
	return []catalog.GameRecord{
		{Title: "Catan", Genre: catalog.StringList{"Strategy"}, Rating: 7.2, Year: catalog.IntPtr(1995)},
		{Title: "Azul", Genre: catalog.StringList{"Abstract"}, Rating: 7.8, Year: catalog.IntPtr(2017)},
		{Title: "Gloomhaven", Genre: catalog.StringList{"Strategy"}, Rating: 8.7, Year: catalog.IntPtr(2017)},
	}
}

func source(records []catalog.GameRecord) library.Source {
	return library.SourceFunc(func(context.Context) ([]catalog.GameRecord, error) {
		return records, nil
	})
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	caps, err := catalog.CapabilitiesFor(catalog.VariantExtended)
	require.NoError(t, err)
	return NewSession(library.New(nil), favorites.Open(storage.NewMemoryStore()), catalog.NewEngine(caps), opts...)
}

func titles(records []catalog.GameRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func TestRefresh_InertUntilLoaded(t *testing.T) {
	s := newSession(t)
	s.Update(func(c *catalog.FilterCriteria) { c.Search = "zzz" })

	res := s.Refresh()
	assert.Equal(t, NotLoaded, res.State)
	assert.Empty(t, res.Records)
	assert.Nil(t, s.Facet(catalog.FacetGenre))
	_, misses := s.CacheStats()
	assert.Equal(t, 0, misses, "engine is not invoked before load")
}

func TestRefresh_EmptyIsDistinctFromNotLoaded(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Load(context.Background(), source(games())))

	s.Update(func(c *catalog.FilterCriteria) { c.Search = "glomhaven" })
	res := s.Refresh()

	assert.Equal(t, Empty, res.State)
	assert.Empty(t, res.Records)
	assert.Equal(t, []string{"Gloomhaven"}, res.Suggestions)
}

func TestRefresh_UnavailableThenRetry(t *testing.T) {
	s := newSession(t)
	boom := errors.New("offline")
	err := s.Load(context.Background(), library.SourceFunc(func(context.Context) ([]catalog.GameRecord, error) {
		return nil, boom
	}))
	require.ErrorIs(t, err, boom)

	res := s.Refresh()
	assert.Equal(t, Unavailable, res.State)
	assert.ErrorIs(t, res.Err, boom)

	require.NoError(t, s.Load(context.Background(), source(games())))
	assert.Equal(t, Ready, s.Refresh().State)
}

func TestRefresh_FiltersAndSorts(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Load(context.Background(), source(games())))

	s.Update(func(c *catalog.FilterCriteria) { c.Genres = []string{"strategy"} })
	s.SetSort(catalog.SortRating)
	res := s.Refresh()

	assert.Equal(t, Ready, res.State)
	assert.Equal(t, []string{"Gloomhaven", "Catan"}, titles(res.Records))
}

func TestClear_RestoresUnfilteredDefaultOrder(t *testing.T) {
	s := newSession(t, WithDefaultSort(catalog.SortTitle))
	require.NoError(t, s.Load(context.Background(), source(games())))

	s.Update(func(c *catalog.FilterCriteria) {
		c.Search = "a"
		c.Year = catalog.Range[int]{From: 2000, To: catalog.MaxYear}
	})
	s.SetSort(catalog.SortYear)
	require.Len(t, s.Refresh().Records, 2)

	s.Clear()

	assert.True(t, s.Criteria().IsDefault())
	assert.Equal(t, catalog.SortTitle, s.Sort())
	assert.Equal(t, []string{"Azul", "Catan", "Gloomhaven"}, titles(s.Refresh().Records))
}

func TestRefresh_CachesDerivedLists(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Load(context.Background(), source(games())))

	first := s.Refresh()
	first.Records[0].Title = "mutated"
	second := s.Refresh()

	hits, misses := s.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, "Catan", second.Records[0].Title, "cached lists are copied out")

	require.NoError(t, s.Load(context.Background(), source(games()[:1])))
	assert.Len(t, s.Refresh().Records, 1, "reload invalidates the cache")
}

func TestFavorites(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Load(context.Background(), source(games())))

	added, err := s.ToggleFavorite("catan")
	require.NoError(t, err)
	assert.True(t, added)
	_, err = s.ToggleFavorite("Azul")
	require.NoError(t, err)
	assert.True(t, s.IsFavorite("Catan"))

	_, err = s.ToggleFavorite("Monopoly")
	assert.Error(t, err)

	s.ShowFavorites(true)
	res := s.Refresh()
	assert.Equal(t, []string{"Azul", "Catan"}, titles(res.Records), "favorites page sorts by rating")

	s.Update(func(c *catalog.FilterCriteria) {
		c.Search = "cat"
		c.Genres = []string{"Abstract"}
	})
	assert.Equal(t, []string{"Catan"}, titles(s.Refresh().Records), "favorites page only searches")

	assert.True(t, s.RemoveFavorite("Catan"))
	assert.Equal(t, Empty, s.Refresh().State)
	assert.False(t, s.RemoveFavorite("Catan"))
}

func TestFavoritesPage_WorksWithoutCatalog(t *testing.T) {
	store := storage.NewMemoryStore()
	favs := favorites.Open(store)
	favs.Toggle(games()[2])

	caps, err := catalog.CapabilitiesFor(catalog.VariantExtended)
	require.NoError(t, err)
	s := NewSession(library.New(nil), favs, catalog.NewEngine(caps))
	s.ShowFavorites(true)

	res := s.Refresh()
	assert.Equal(t, Ready, res.State)
	assert.Equal(t, []string{"Gloomhaven"}, titles(res.Records))

	added, err := s.ToggleFavorite("Gloomhaven")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestFacet(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Load(context.Background(), source(games())))
	assert.Equal(t, []string{"Abstract", "Strategy"}, s.Facet(catalog.FacetGenre))
}

func TestSortAllowed_FollowsPage(t *testing.T) {
	s := newSession(t)
	assert.True(t, s.SortAllowed(catalog.SortYear))

	s.ShowFavorites(true)
	assert.False(t, s.SortAllowed(catalog.SortYear), "favorites page only sorts by title or rating")
	assert.True(t, s.SortAllowed(catalog.SortRating))
	assert.True(t, s.SortAllowed(catalog.SortNone))
}

func TestClearFavorites(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Load(context.Background(), source(games())))
	_, err := s.ToggleFavorite("Azul")
	require.NoError(t, err)

	s.ClearFavorites()
	s.ShowFavorites(true)

	assert.False(t, s.IsFavorite("Azul"))
	assert.Equal(t, Empty, s.Refresh().State)
}
