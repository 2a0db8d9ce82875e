package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDistinctValues(t *testing.T) {
	records := shelf()

	assert.Equal(t,
		[]string{"Abstract", "Adventure", "Family", "Party", "Strategy"},
		DistinctValues(records, FacetGenre, language.Danish))
	assert.Equal(t, []string{"Kælder", "Stue"}, DistinctValues(records, FacetLocation, language.Danish))
	assert.Equal(t, []string{"Easy", "Hard", "Medium"}, DistinctValues(records, FacetDifficulty, language.English),
		"case variants collapse to the first spelling")
	assert.Equal(t, []string{"Dansk", "English"}, DistinctValues(records, FacetLanguage, language.English))
	assert.Empty(t, DistinctValues(nil, FacetGenre, language.Danish))
}

func TestParseFacet(t *testing.T) {
	f, err := ParseFacet(" Genre ")
	require.NoError(t, err)
	assert.Equal(t, FacetGenre, f)
	assert.False(t, f.SingleSelect())
	assert.True(t, FacetLocation.SingleSelect())

	_, err = ParseFacet("director")
	assert.Error(t, err)
}

func TestCapabilitiesFor(t *testing.T) {
	caps, err := CapabilitiesFor(VariantClassic)
	require.NoError(t, err)
	assert.Equal(t, []Facet{FacetGenre}, caps.Facets())
	assert.True(t, caps.SortAllowed(SortYear))
	assert.True(t, caps.SortAllowed(SortNone))

	caps, err = CapabilitiesFor(VariantBasic)
	require.NoError(t, err)
	assert.Empty(t, caps.Facets())
	assert.False(t, caps.SortAllowed(SortYear))

	_, err = CapabilitiesFor("deluxe")
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	got := Suggest(shelf(), "glmhvn", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "Gloomhaven", got[0])

	assert.Empty(t, Suggest(shelf(), "", 3))
	assert.Empty(t, Suggest(shelf(), "qqq", 3))
	assert.Len(t, Suggest(shelf(), "a", 2), 2)
}
