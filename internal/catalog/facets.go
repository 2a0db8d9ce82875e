package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Facet is a categorical dimension whose selectable values come from the data.
type Facet string

const (
	FacetGenre      Facet = "genre"
	FacetLanguage   Facet = "language"
	FacetDifficulty Facet = "difficulty"
	FacetLocation   Facet = "location"
	FacetShelf      Facet = "shelf"
)

// ParseFacet maps a field name to a Facet.
func ParseFacet(s string) (Facet, error) {
	switch f := Facet(strings.ToLower(strings.TrimSpace(s))); f {
	case FacetGenre, FacetLanguage, FacetDifficulty, FacetLocation, FacetShelf:
		return f, nil
	default:
		return "", fmt.Errorf("unknown facet %q", s)
	}
}

// SingleSelect reports whether the facet is offered as a single-choice
// dropdown with an "all" entry rather than a checkbox group.
func (f Facet) SingleSelect() bool {
	return f == FacetLocation || f == FacetShelf
}

func (f Facet) values(r *GameRecord) []string {
	switch f {
	case FacetGenre:
		return r.Genre
	case FacetLanguage:
		return []string{r.Language}
	case FacetDifficulty:
		return []string{r.Difficulty}
	case FacetLocation:
		return []string{r.Location}
	case FacetShelf:
		return []string{r.Shelf}
	}
	return nil
}

// DistinctValues collects the distinct non-empty values of a facet across
// records, flattening multi-valued fields, ordered with the collator for tag.
// Values differing only in case are one value; the first spelling is kept.
func DistinctValues(records []GameRecord, f Facet, tag language.Tag) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range records {
		for _, v := range f.values(&records[i]) {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	SortStrings(out, tag)
	return out
}
