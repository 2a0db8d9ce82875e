package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// titleSource implements fuzzy.Source over record titles.
type titleSource []GameRecord

func (s titleSource) String(i int) string {
	return strings.ToLower(s[i].Title)
}

func (s titleSource) Len() int {
	return len(s)
}

// Suggest returns up to limit titles that fuzzily resemble query, best first.
// It is offered alongside an empty result and never changes what Apply returns.
func Suggest(records []GameRecord, query string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 || len(records) == 0 {
		return nil
	}
	matches := fuzzy.FindFrom(query, titleSource(records))
	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, records[m.Index].Title)
	}
	return out
}
