// Package catalog holds the board-game record model and the engine that derives
// display lists from it: filtering, sorting and facet value derivation.
package catalog

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// GameRecord represents a single game on the shelf. Optional numeric fields are
// pointers so an absent value can be told apart from zero.
type GameRecord struct {
	Title       string     `json:"title"`
	Genre       StringList `json:"genre"`
	Rating      float64    `json:"rating"`
	Year        *int       `json:"year,omitempty"`
	Age         *int       `json:"age,omitempty"`
	Players     *Players   `json:"players,omitempty"`
	Playtime    *int       `json:"playtime,omitempty"`
	Difficulty  string     `json:"difficulty,omitempty"`
	Language    string     `json:"language,omitempty"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	Image       string     `json:"image,omitempty"`
	Shelf       string     `json:"shelf,omitempty"`
}

// Players is the supported player count interval.
type Players struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// WellFormed reports whether p describes a usable interval.
func (p *Players) WellFormed() bool {
	return p != nil && p.Min > 0 && p.Min <= p.Max
}

// ID returns a stable synthetic identifier derived from the record's immutable
// fields. Favorites are still keyed by title.
func (r GameRecord) ID() string {
	h := sha1.New()
	fmt.Fprintf(h, "%s\x00", r.Title)
	if r.Year != nil {
		fmt.Fprintf(h, "%d", *r.Year)
	}
	fmt.Fprintf(h, "\x00%s", r.Location)
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// StringList decodes either a JSON string or an array of strings. Feeds differ
// on whether genre is single or multi-valued.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		if v == "" {
			*s = nil
		} else {
			*s = StringList{v}
		}
		return nil
	}
	var vs []string
	if err := json.Unmarshal(data, &vs); err != nil {
		return fmt.Errorf("genre: expected string or array of strings: %w", err)
	}
	*s = vs
	return nil
}

// String joins the values the way the detail view shows them.
func (s StringList) String() string {
	var b bytes.Buffer
	for i, v := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v)
	}
	return b.String()
}

// IntPtr is a small helper for building records in code.
func IntPtr(v int) *int {
	return &v
}

// FormatOptional renders an optional integer, or "-" when absent.
func FormatOptional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
