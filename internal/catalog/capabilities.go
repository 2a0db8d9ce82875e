package catalog

import (
	"fmt"
	"strings"
)

// Capabilities lists which filter dimensions a catalog view offers. Criteria for a
// dimension that is not enabled are ignored by the engine.
type Capabilities struct {
	Genre      bool
	Language   bool
	Difficulty bool
	Location   bool

	Age      bool
	Players  bool
	Playtime bool
	Year     bool
	Rating   bool

	Sorts []SortKey
}

// Variant names a preset capability set.
type Variant string

const (
	// VariantBasic offers search and sorting only, as on the favorites page.
	VariantBasic Variant = "basic"
	// VariantClassic offers genre plus year and rating ranges.
	VariantClassic Variant = "classic"
	// VariantExtended offers every facet and range.
	VariantExtended Variant = "extended"
)

// CapabilitiesFor returns the preset for v.
func CapabilitiesFor(v Variant) (Capabilities, error) {
	switch Variant(strings.ToLower(string(v))) {
	case VariantBasic:
		return Capabilities{Sorts: []SortKey{SortTitle, SortRating}}, nil
	case VariantClassic:
		return Capabilities{
			Genre:  true,
			Year:   true,
			Rating: true,
			Sorts:  []SortKey{SortTitle, SortYear, SortRating},
		}, nil
	case VariantExtended, "":
		return Capabilities{
			Genre:      true,
			Language:   true,
			Difficulty: true,
			Location:   true,
			Age:        true,
			Players:    true,
			Playtime:   true,
			Year:       true,
			Rating:     true,
			Sorts:      []SortKey{SortTitle, SortYear, SortRating},
		}, nil
	default:
		return Capabilities{}, fmt.Errorf("unknown catalog variant %q", v)
	}
}

// SortAllowed reports whether key is offered. SortNone is always allowed.
func (c Capabilities) SortAllowed(key SortKey) bool {
	if key == SortNone {
		return true
	}
	for _, k := range c.Sorts {
		if k == key {
			return true
		}
	}
	return false
}

// Facets lists the categorical dimensions that are enabled.
func (c Capabilities) Facets() []Facet {
	var out []Facet
	if c.Genre {
		out = append(out, FacetGenre)
	}
	if c.Language {
		out = append(out, FacetLanguage)
	}
	if c.Difficulty {
		out = append(out, FacetDifficulty)
	}
	if c.Location {
		out = append(out, FacetLocation)
	}
	return out
}

// Restrict zeroes out every criterion the capability set does not offer.
func (c Capabilities) Restrict(fc FilterCriteria) FilterCriteria {
	def := DefaultCriteria()
	if !c.Genre {
		fc.Genres = nil
	}
	if !c.Language {
		fc.Languages = nil
	}
	if !c.Difficulty {
		fc.Difficulties = nil
	}
	if !c.Location {
		fc.Location = def.Location
	}
	if !c.Age {
		fc.Age = def.Age
	}
	if !c.Players {
		fc.Players = def.Players
	}
	if !c.Playtime {
		fc.Playtime = def.Playtime
	}
	if !c.Year {
		fc.Year = def.Year
	}
	if !c.Rating {
		fc.Rating = def.Rating
	}
	return fc
}
