package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"boardshelf/internal/catalog"
)

var catan = catalog.GameRecord{
	Title: "Catan", Genre: catalog.StringList{"Strategy", "Family"}, Rating: 7.2,
	Year: catalog.IntPtr(1995), Players: &catalog.Players{Min: 3, Max: 4},
	Playtime: catalog.IntPtr(90), Difficulty: "Medium", Location: "Stue", Shelf: "A1",
	Description: "Trade and build.",
}

func TestCard(t *testing.T) {
	out := Card(catan, true)
	assert.Contains(t, out, "Catan")
	assert.Contains(t, out, "(1995)")
	assert.Contains(t, out, "Strategy, Family")
	assert.Contains(t, out, "7.2")
	assert.Contains(t, out, "♥")

	assert.NotContains(t, Card(catalog.GameRecord{Title: "Bare"}, false), "♥")
}

func TestDetail(t *testing.T) {
	var buf bytes.Buffer
	Detail(&buf, catan, false)
	out := buf.String()

	assert.Contains(t, out, "3 til 4")
	assert.Contains(t, out, "90 min")
	assert.Contains(t, out, "A1")
	assert.Contains(t, out, "Trade and build.")
	assert.NotContains(t, out, "Alder", "absent age is not shown")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, nil, 0))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, JSON(&buf, []catalog.GameRecord{catan}, 2))
	var decoded []catalog.GameRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []catalog.GameRecord{catan}, decoded)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Ingen spil matchede dine filtre 😢", EmptyMessage(language.Danish))
	assert.Equal(t, "No games matched your filters 😢", EmptyMessage(language.BritishEnglish))
	assert.Equal(t, "Ingen spil matchede dine filtre 😢", EmptyMessage(language.Japanese), "falls back to the first supported locale")
	assert.NotEqual(t, UnavailableMessage(language.English), NotLoadedMessage(language.English))
	assert.Equal(t, "Did you mean:", SuggestPrefix(language.English))
}
