package render

import (
	"golang.org/x/text/language"
)

type messageID int

const (
	msgEmpty messageID = iota
	msgUnavailable
	msgNotLoaded
	msgSuggest
)

var supported = []language.Tag{language.Danish, language.English}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[messageID]string{
	language.Danish: {
		msgEmpty:       "Ingen spil matchede dine filtre 😢",
		msgUnavailable: "Spillene kunne ikke hentes. Prøv igen med 'reload'.",
		msgNotLoaded:   "Spillene er ikke hentet endnu.",
		msgSuggest:     "Mente du:",
	},
	language.English: {
		msgEmpty:       "No games matched your filters 😢",
		msgUnavailable: "The game list could not be fetched. Try again with 'reload'.",
		msgNotLoaded:   "The game list has not been loaded yet.",
		msgSuggest:     "Did you mean:",
	},
}

func lookup(tag language.Tag, id messageID) string {
	_, idx, _ := matcher.Match(tag)
	return messages[supported[idx]][id]
}

// EmptyMessage is shown when a loaded catalog has no matches.
func EmptyMessage(tag language.Tag) string { return lookup(tag, msgEmpty) }

// UnavailableMessage is shown when the catalog failed to load.
func UnavailableMessage(tag language.Tag) string { return lookup(tag, msgUnavailable) }

// NotLoadedMessage is shown before the catalog has arrived.
func NotLoadedMessage(tag language.Tag) string { return lookup(tag, msgNotLoaded) }

// SuggestPrefix introduces fuzzy title suggestions.
func SuggestPrefix(tag language.Tag) string { return lookup(tag, msgSuggest) }
