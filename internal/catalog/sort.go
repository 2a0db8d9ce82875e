package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortNone   SortKey = "none"
	SortTitle  SortKey = "title"
	SortRating SortKey = "rating"
	SortYear   SortKey = "year"
)

// ParseSortKey maps user input to a SortKey. Unknown keys fall back to SortNone,
// which keeps the filtered order.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortTitle:
		return SortTitle
	case SortRating:
		return SortRating
	case SortYear:
		return SortYear
	default:
		return SortNone
	}
}

// DefaultLocale is used for title collation when none is configured.
var DefaultLocale = language.Danish

// sortRecords reorders records in place. All orders are stable so ties keep
// their filtered order.
func sortRecords(records []GameRecord, key SortKey, tag language.Tag) {
	switch key {
	case SortTitle:
		col := collate.New(tag)
		slices.SortStableFunc(records, func(a, b GameRecord) int {
			return col.CompareString(a.Title, b.Title)
		})
	case SortRating:
		slices.SortStableFunc(records, func(a, b GameRecord) int {
			switch {
			case a.Rating > b.Rating:
				return -1
			case a.Rating < b.Rating:
				return 1
			}
			return 0
		})
	case SortYear:
		slices.SortStableFunc(records, func(a, b GameRecord) int {
			switch {
			case a.Year == nil && b.Year == nil:
				return 0
			case a.Year == nil:
				return 1
			case b.Year == nil:
				return -1
			}
			return *b.Year - *a.Year
		})
	}
}

// SortStrings orders values with the collator for tag.
func SortStrings(values []string, tag language.Tag) {
	col := collate.New(tag)
	slices.SortStableFunc(values, col.CompareString)
}
