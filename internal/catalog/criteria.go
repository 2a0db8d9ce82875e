package catalog

import (
	"math"
	"strconv"
	"strings"
)

// Upper bounds of each numeric domain. A range whose To sits at the bound is open.
const (
	MaxAge      = 99
	MaxPlayers  = 99
	MaxPlaytime = 9999
	MaxYear     = 9999
	MaxRating   = 10.0
)

// AllValues is the single-select sentinel meaning "no restriction".
const AllValues = "all"

// Range is an inclusive [From, To] bound on a numeric field.
type Range[T int | float64] struct {
	From T `json:"from"`
	To   T `json:"to"`
}

// OpenRange returns the default, unrestricted range for a domain.
func OpenRange[T int | float64](max T) Range[T] {
	return Range[T]{From: 0, To: max}
}

// Active reports whether the range restricts anything within [0, max].
func (r Range[T]) Active(max T) bool {
	return r.From > 0 || r.To < max
}

// Contains reports whether v lies within the inclusive range.
func (r Range[T]) Contains(v T) bool {
	return v >= r.From && v <= r.To
}

// FilterCriteria is the snapshot of every filter input at the moment the engine
// runs. The zero value is not the default; use DefaultCriteria.
type FilterCriteria struct {
	Search       string   `json:"search,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Languages    []string `json:"languages,omitempty"`
	Difficulties []string `json:"difficulties,omitempty"`
	Location     string   `json:"location,omitempty"`

	Age      Range[int]     `json:"age"`
	Players  Range[int]     `json:"players"`
	Playtime Range[int]     `json:"playtime"`
	Year     Range[int]     `json:"year"`
	Rating   Range[float64] `json:"rating"`
}

// DefaultCriteria returns the cleared criteria: no search, no selections and
// every range open.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Location: AllValues,
		Age:      OpenRange(MaxAge),
		Players:  OpenRange(MaxPlayers),
		Playtime: OpenRange(MaxPlaytime),
		Year:     OpenRange(MaxYear),
		Rating:   OpenRange(MaxRating),
	}
}

// IsDefault reports whether c filters nothing.
func (c FilterCriteria) IsDefault() bool {
	return c.Search == "" &&
		len(nonEmpty(c.Genres)) == 0 &&
		len(nonEmpty(c.Languages)) == 0 &&
		len(nonEmpty(c.Difficulties)) == 0 &&
		!locationActive(c.Location) &&
		!c.Age.Active(MaxAge) &&
		!c.Players.Active(MaxPlayers) &&
		!c.Playtime.Active(MaxPlaytime) &&
		!c.Year.Active(MaxYear) &&
		!c.Rating.Active(MaxRating)
}

// ParseIntBound parses a range bound typed by the user. Empty, malformed or zero
// input yields def, so a bad "to" never collapses the range to zero.
func ParseIntBound(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return def
	}
	return int(f)
}

// ParseFloatBound is ParseIntBound for fractional domains such as rating.
func ParseFloatBound(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return def
	}
	return f
}

// ParseList splits a comma-separated selection, trimming blanks.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func locationActive(loc string) bool {
	loc = strings.TrimSpace(loc)
	return loc != "" && !strings.EqualFold(loc, AllValues)
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && !strings.EqualFold(v, AllValues) {
			out = append(out, v)
		}
	}
	return out
}
