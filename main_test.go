package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boardshelf/internal/catalog"
	"boardshelf/internal/config"
	"boardshelf/internal/favorites"
	"boardshelf/internal/storage"
)

const testFeed = `[
  {"title": "Catan", "genre": ["Strategy", "Family"], "rating": 7.2, "year": 1995,
   "players": {"min": 3, "max": 4}, "playtime": 90, "location": "Stue", "language": "Dansk"},
  {"title": "Azul", "genre": "Abstract", "rating": 7.8, "year": 2017,
   "players": {"min": 2, "max": 4}, "playtime": 45, "location": "Kontor", "language": "English"},
  {"title": "Gloomhaven", "genre": ["Strategy"], "rating": 8.7, "year": 2017,
   "players": {"min": 1, "max": 4}, "playtime": 120, "location": "Stue", "language": "English"}
]`

func writeFeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newTestApp(t *testing.T, feedPath string, variant catalog.Variant) (*app, *bytes.Buffer) {
	t.Helper()
	logger = zap.NewNop()
	c := config.Default()
	c.Feed.URL = feedPath
	c.Feed.Retries = 0
	c.Storage.Backend = storage.BackendMemory
	c.Catalog.Variant = string(variant)
	cfg = &c

	var out bytes.Buffer
	a, err := newApp(&out)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, &out
}

func loadedShell(t *testing.T, variant catalog.Variant) (*shell, *bytes.Buffer) {
	t.Helper()
	a, out := newTestApp(t, writeFeed(t, testFeed), variant)
	sh := newShell(a, strings.NewReader(""))
	t.Cleanup(sh.close)
	sh.reload(context.Background())
	require.True(t, a.session.Loaded())
	return sh, out
}

func TestShell_FiltersAndSorts(t *testing.T) {
	sh, out := loadedShell(t, catalog.VariantExtended)
	ctx := context.Background()
	assert.Contains(t, out.String(), "Azul")

	out.Reset()
	assert.False(t, sh.exec(ctx, "genre strategy"))
	assert.Contains(t, out.String(), "Catan")
	assert.Contains(t, out.String(), "Gloomhaven")
	assert.NotContains(t, out.String(), "Azul")

	out.Reset()
	sh.exec(ctx, "sort rating")
	listing := out.String()
	assert.Less(t, strings.Index(listing, "Gloomhaven"), strings.Index(listing, "Catan"))

	out.Reset()
	sh.exec(ctx, "year 2000")
	assert.Contains(t, out.String(), "Gloomhaven")
	assert.NotContains(t, out.String(), "Catan")

	out.Reset()
	sh.exec(ctx, "clear")
	assert.True(t, sh.a.session.Criteria().IsDefault())
	for _, title := range []string{"Catan", "Azul", "Gloomhaven"} {
		assert.Contains(t, out.String(), title)
	}
}

func TestShell_PlayersAndLocation(t *testing.T) {
	sh, out := loadedShell(t, catalog.VariantExtended)
	ctx := context.Background()

	out.Reset()
	sh.exec(ctx, "players 1 1")
	assert.Contains(t, out.String(), "Gloomhaven")
	assert.NotContains(t, out.String(), "Azul")

	sh.exec(ctx, "players")
	out.Reset()
	sh.exec(ctx, "location Kontor")
	assert.Contains(t, out.String(), "Azul")
	assert.NotContains(t, out.String(), "Catan")
}

func TestShell_EmptyResultSuggests(t *testing.T) {
	sh, out := loadedShell(t, catalog.VariantExtended)

	out.Reset()
	sh.exec(context.Background(), "search glomhaven")
	assert.Contains(t, out.String(), "Ingen spil matchede dine filtre")
	assert.Contains(t, out.String(), "Gloomhaven")
}

func TestShell_Favorites(t *testing.T) {
	sh, out := loadedShell(t, catalog.VariantExtended)
	ctx := context.Background()

	out.Reset()
	sh.exec(ctx, "fav catan")
	assert.Contains(t, out.String(), "Added Catan")
	assert.True(t, sh.a.session.IsFavorite("Catan"))

	out.Reset()
	sh.exec(ctx, "favorites on")
	assert.Contains(t, out.String(), "Catan")
	assert.NotContains(t, out.String(), "Azul")

	out.Reset()
	sh.exec(ctx, "unfav Catan")
	assert.Contains(t, out.String(), "Ingen spil")
	assert.False(t, sh.a.session.IsFavorite("Catan"))

	out.Reset()
	sh.exec(ctx, "fav Monopoly")
	assert.Contains(t, out.String(), "Monopoly")
}

func TestShell_FavoritesPageSorts(t *testing.T) {
	sh, out := loadedShell(t, catalog.VariantExtended)
	ctx := context.Background()
	sh.exec(ctx, "fav Catan")
	sh.exec(ctx, "favorites on")

	out.Reset()
	sh.exec(ctx, "sort year")
	assert.Contains(t, out.String(), "not offered on the favorites page")
	assert.Equal(t, catalog.SortNone, sh.a.session.Sort())

	sh.exec(ctx, "favorites off")
	out.Reset()
	sh.exec(ctx, "sort year")
	assert.Equal(t, catalog.SortYear, sh.a.session.Sort())
}

func TestShell_FavoritesClear(t *testing.T) {
	sh, out := loadedShell(t, catalog.VariantExtended)
	ctx := context.Background()
	sh.exec(ctx, "fav Catan")
	sh.exec(ctx, "fav Azul")

	out.Reset()
	sh.exec(ctx, "favorites clear")
	assert.Zero(t, sh.a.session.Favorites().Len())
	_, err := sh.a.store.Get(favorites.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestShell_RespectsVariant(t *testing.T) {
	sh, out := loadedShell(t, catalog.VariantBasic)

	out.Reset()
	sh.exec(context.Background(), "genre strategy")
	assert.Contains(t, out.String(), "not offered")
	assert.Empty(t, sh.a.session.Criteria().Genres)
}

func TestShell_UnavailableFeed(t *testing.T) {
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "missing.json"), catalog.VariantExtended)
	sh := newShell(a, strings.NewReader("search catan\nquit\n"))
	defer sh.close()

	sh.reload(context.Background())
	sh.run(context.Background())

	assert.Contains(t, out.String(), "Spillene kunne ikke hentes")
	assert.Contains(t, out.String(), "[boardshelf | unavailable]")
}

func TestShell_FindAndShow(t *testing.T) {
	sh, out := loadedShell(t, catalog.VariantExtended)
	ctx := context.Background()

	out.Reset()
	sh.exec(ctx, "find !abstract")
	assert.Contains(t, out.String(), "Azul")
	assert.NotContains(t, out.String(), "Catan")

	out.Reset()
	sh.exec(ctx, "show catan")
	assert.Contains(t, out.String(), "3 til 4")

	out.Reset()
	sh.exec(ctx, "facets location")
	assert.Equal(t, "all\nKontor\nStue\n", out.String())

	assert.True(t, sh.exec(ctx, "quit"))
}

func TestListOptions_Criteria(t *testing.T) {
	c := listOptions{
		genres:   []string{"Strategy, Family", " Party "},
		ageTo:    "abc",
		yearFrom: "2000",
		ratingTo: "0",
	}.criteria()

	assert.Equal(t, []string{"Strategy", "Family", "Party"}, c.Genres)
	assert.Equal(t, catalog.Range[int]{From: 0, To: catalog.MaxAge}, c.Age)
	assert.Equal(t, catalog.Range[int]{From: 2000, To: catalog.MaxYear}, c.Year)
	assert.Equal(t, catalog.MaxRating, c.Rating.To)
	assert.Equal(t, catalog.AllValues, c.Location)
}

func TestListCommand_JSON(t *testing.T) {
	feedPath := writeFeed(t, testFeed)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"list",
		"--config", filepath.Join(t.TempDir(), "none.toml"),
		"--store", "memory",
		"--feed", feedPath,
		"--genre", "strategy",
		"--sort", "rating",
		"--json",
	})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		listOpts = listOptions{}
	})

	require.NoError(t, rootCmd.Execute())

	var got []catalog.GameRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Gloomhaven", got[0].Title)
	assert.Equal(t, "Catan", got[1].Title)
}

func TestCommatize(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}
	for n, want := range tests {
		assert.Equal(t, want, commatize(n))
	}
}
