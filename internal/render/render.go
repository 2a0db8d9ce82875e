// Package render prints catalog results for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"boardshelf/internal/catalog"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(48)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	yearStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	genreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Italic(true)
	ratingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	favStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// Cards prints one card per record. favorites marks which titles get a heart.
func Cards(w io.Writer, records []catalog.GameRecord, favorites map[string]bool) {
	for _, r := range records {
		fmt.Fprintln(w, Card(r, favorites[r.Title]))
	}
}

// Card renders the summary card for one record.
func Card(r catalog.GameRecord, favorite bool) string {
	heading := titleStyle.Render(r.Title)
	if r.Year != nil {
		heading += " " + yearStyle.Render("("+strconv.Itoa(*r.Year)+")")
	}
	if favorite {
		heading += " " + favStyle.Render("♥")
	}

	lines := []string{heading}
	if len(r.Genre) > 0 {
		lines = append(lines, genreStyle.Render(r.Genre.String()))
	}
	lines = append(lines, ratingStyle.Render("⭐ "+formatRating(r.Rating)))
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// Detail prints the full record, the terminal counterpart of the detail dialog.
func Detail(w io.Writer, r catalog.GameRecord, favorite bool) {
	fmt.Fprintln(w, Card(r, favorite))

	row := func(label, value string) {
		if value == "" || value == "-" {
			return
		}
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label+":"), value)
	}
	if r.Players.WellFormed() {
		row("Spillere", fmt.Sprintf("%d til %d", r.Players.Min, r.Players.Max))
	}
	row("Sværhedsgrad", r.Difficulty)
	row("Alder", catalog.FormatOptional(r.Age))
	if r.Playtime != nil {
		row("Spilletid", fmt.Sprintf("%d min", *r.Playtime))
	}
	row("Placering", r.Location)
	row("Hylde", r.Shelf)
	row("Sprog", r.Language)
	if r.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", r.Description)
	}
}

// JSON writes records as an indented JSON array. An empty result is "[]".
func JSON(w io.Writer, records []catalog.GameRecord, indent int) error {
	if records == nil {
		records = []catalog.GameRecord{}
	}
	enc := json.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	return enc.Encode(records)
}

// Notice prints a dimmed status line such as the empty-result message.
func Notice(w io.Writer, msg string) {
	fmt.Fprintln(w, noticeStyle.Render(msg))
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
