package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boardshelf/internal/catalog"
	"boardshelf/internal/index"
	"boardshelf/internal/render"
	"boardshelf/internal/view"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Browse the catalog interactively (the default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd)
	},
}

func runShell(cmd *cobra.Command) error {
	a, err := newApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	sh := newShell(a, cmd.InOrStdin())
	defer sh.close()
	sh.reload(cmd.Context())
	sh.run(cmd.Context())
	return nil
}

// shell is the interactive loop. Every command that changes the criteria
// re-derives and prints the list.
type shell struct {
	a  *app
	in *bufio.Scanner

	idx    *index.Index
	idxGen uint64
}

func newShell(a *app, in io.Reader) *shell {
	return &shell{a: a, in: bufio.NewScanner(in)}
}

func (sh *shell) close() {
	if sh.idx != nil {
		_ = sh.idx.Close()
	}
}

func (sh *shell) run(ctx context.Context) {
	out := sh.a.out
	fmt.Fprintln(out, "Type 'help' for commands. Filters: search, genre, language, difficulty, location,")
	fmt.Fprintln(out, "age, players, playtime, year, rating. Shelf lookup: find !genre @language #location $title")

	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "\n%s > ", sh.prompt())
		if !sh.in.Scan() {
			fmt.Fprintln(out, "\nFarvel.")
			return
		}
		if sh.exec(ctx, sh.in.Text()) {
			return
		}
	}
}

func (sh *shell) prompt() string {
	s := sh.a.session
	page := "games"
	if s.FavoritesOnly() {
		page = "favorites"
	}
	res := s.Refresh()
	if res.State == view.NotLoaded || res.State == view.Unavailable {
		return fmt.Sprintf("[boardshelf | %s]", res.State)
	}
	return fmt.Sprintf("[boardshelf | %s %s]", commatize(len(res.Records)), page)
}

// exec runs one command line and reports whether the shell should exit.
func (sh *shell) exec(ctx context.Context, line string) bool {
	s := sh.a.session
	out := sh.a.out
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	caps := s.Capabilities()

	switch strings.ToLower(cmd) {
	case "":
		return false
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(out, shellHelp)
		return false
	case "reload":
		sh.reload(ctx)
		return false

	case "search", "s":
		s.Update(func(c *catalog.FilterCriteria) { c.Search = rest })
	case "genre":
		if !sh.offered(caps.Genre, cmd) {
			return false
		}
		s.Update(func(c *catalog.FilterCriteria) { c.Genres = selection(rest) })
	case "language":
		if !sh.offered(caps.Language, cmd) {
			return false
		}
		s.Update(func(c *catalog.FilterCriteria) { c.Languages = selection(rest) })
	case "difficulty":
		if !sh.offered(caps.Difficulty, cmd) {
			return false
		}
		s.Update(func(c *catalog.FilterCriteria) { c.Difficulties = selection(rest) })
	case "location":
		if !sh.offered(caps.Location, cmd) {
			return false
		}
		s.Update(func(c *catalog.FilterCriteria) {
			c.Location = rest
			if c.Location == "" {
				c.Location = catalog.AllValues
			}
		})
	case "age", "players", "playtime", "year", "rating":
		if !sh.setRange(strings.ToLower(cmd), args, caps) {
			return false
		}
	case "sort":
		key := catalog.ParseSortKey(rest)
		if !s.SortAllowed(key) {
			render.Notice(out, fmt.Sprintf("Sorting by %q is not offered %s.", rest, pageName(s)))
			return false
		}
		s.SetSort(key)
	case "clear":
		s.Clear()

	case "favorites", "favs":
		switch strings.ToLower(rest) {
		case "on", "":
			s.ShowFavorites(true)
		case "off":
			s.ShowFavorites(false)
		case "clear":
			s.ClearFavorites()
		default:
			render.Notice(out, "Usage: favorites on|off|clear")
			return false
		}
	case "fav":
		if err := sh.a.toggle(rest); err != nil {
			render.Notice(out, err.Error())
		}
		return false
	case "unfav":
		if !s.RemoveFavorite(rest) {
			render.Notice(out, fmt.Sprintf("%q is not a favorite.", rest))
			return false
		}
		if !s.FavoritesOnly() {
			fmt.Fprintf(out, "Removed %s from favorites.\n", rest)
			return false
		}

	case "show":
		r, ok := s.Find(rest)
		if !ok {
			render.Notice(out, fmt.Sprintf("No game titled %q.", rest))
			return false
		}
		render.Detail(out, r, s.IsFavorite(r.Title))
		return false
	case "facets":
		f, err := catalog.ParseFacet(rest)
		if err != nil {
			render.Notice(out, err.Error())
			return false
		}
		printFacet(out, f, s.Facet(f))
		return false
	case "find":
		sh.find(rest)
		return false

	default:
		render.Notice(out, fmt.Sprintf("Unknown command %q. Type 'help' for commands.", cmd))
		return false
	}

	sh.list()
	return false
}

func (sh *shell) offered(on bool, name string) bool {
	if !on {
		render.Notice(sh.a.out, fmt.Sprintf("Filtering by %s is not offered by the %s catalog.", name, cfg.Catalog.Variant))
	}
	return on
}

// setRange applies "<dimension> [from] [to]". Missing or unusable bounds fall
// back to the open defaults.
func (sh *shell) setRange(dim string, args []string, caps catalog.Capabilities) bool {
	from, to := "", ""
	if len(args) > 0 {
		from = args[0]
	}
	if len(args) > 1 {
		to = args[1]
	}

	s := sh.a.session
	switch dim {
	case "age":
		if !sh.offered(caps.Age, dim) {
			return false
		}
		s.Update(func(c *catalog.FilterCriteria) { c.Age = intRange(from, to, catalog.MaxAge) })
	case "players":
		if !sh.offered(caps.Players, dim) {
			return false
		}
		s.Update(func(c *catalog.FilterCriteria) { c.Players = intRange(from, to, catalog.MaxPlayers) })
	case "playtime":
		if !sh.offered(caps.Playtime, dim) {
			return false
		}
		s.Update(func(c *catalog.FilterCriteria) { c.Playtime = intRange(from, to, catalog.MaxPlaytime) })
	case "year":
		if !sh.offered(caps.Year, dim) {
			return false
		}
		s.Update(func(c *catalog.FilterCriteria) { c.Year = intRange(from, to, catalog.MaxYear) })
	case "rating":
		if !sh.offered(caps.Rating, dim) {
			return false
		}
		s.Update(func(c *catalog.FilterCriteria) {
			c.Rating = catalog.Range[float64]{
				From: catalog.ParseFloatBound(from, 0),
				To:   catalog.ParseFloatBound(to, catalog.MaxRating),
			}
		})
	}
	return true
}

func selection(rest string) []string {
	if strings.EqualFold(rest, catalog.AllValues) {
		return nil
	}
	return catalog.ParseList(rest)
}

func (sh *shell) reload(ctx context.Context) {
	fmt.Fprintf(sh.a.out, "Fetching games from %s ...\n", sh.a.loader.Source())
	if err := sh.a.load(ctx); err != nil {
		logger.Warn("catalog load failed", zap.Error(err))
	}
	sh.list()
}

// list prints the current result with numbered entries.
func (sh *shell) list() {
	res := sh.a.session.Refresh()
	if res.State != view.Ready {
		_ = sh.a.print(res, false, 0)
		return
	}

	out := sh.a.out
	favs := sh.a.session.Favorites().Titles()
	width := int(math.Log10(float64(len(res.Records)))) + 1
	for i, r := range res.Records {
		fmt.Fprintf(out, "[ %*d ] %s\n", width, i+1, summary(r, favs[r.Title]))
	}
}

func summary(r catalog.GameRecord, favorite bool) string {
	var b strings.Builder
	b.WriteString(r.Title)
	if r.Year != nil {
		fmt.Fprintf(&b, " (%d)", *r.Year)
	}
	fmt.Fprintf(&b, "  ⭐ %s", strconv.FormatFloat(r.Rating, 'f', -1, 64))
	if len(r.Genre) > 0 {
		fmt.Fprintf(&b, "  %s", r.Genre)
	}
	if favorite {
		b.WriteString("  ♥")
	}
	return b.String()
}

func (sh *shell) find(query string) {
	records, loaded := sh.a.lib.Snapshot()
	if !loaded {
		_ = sh.a.print(sh.a.session.Refresh(), false, 0)
		return
	}
	if sh.idx == nil || sh.idxGen != sh.a.lib.Generation() {
		sh.close()
		idx, err := index.Build(records)
		if err != nil {
			render.Notice(sh.a.out, err.Error())
			sh.idx = nil
			return
		}
		sh.idx, sh.idxGen = idx, sh.a.lib.Generation()
	}
	if err := sh.a.find(sh.idx, query); err != nil {
		render.Notice(sh.a.out, err.Error())
	}
}

func commatize(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var res []string
	for len(s) > 3 {
		res = append(res, s[len(s)-3:])
		s = s[:len(s)-3]
	}
	res = append(res, s)
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return strings.Join(res, ",")
}

const shellHelp = `
search <text>                 - title contains text (empty clears)
genre <a, b, ...>             - any of these genres ("all" clears)
language <a, b, ...>          - any of these languages
difficulty <a, b, ...>        - any of these difficulties
location <name|all>           - one location
age|players|playtime <from> <to>
year|rating <from> <to>       - ranges; missing or 0 bounds are open
sort <title|rating|year|none> - ordering
clear                         - reset every filter and the sort
fav <title>                   - add or remove a favorite
unfav <title>                 - remove a favorite
favorites on|off              - switch to the favorites page and back
favorites clear               - remove every favorite
show <title>                  - full details of one game
facets <field>                - values of genre, language, difficulty, location, shelf
find <query>                  - shelf lookup, e.g. find !party, @dansk
reload                        - fetch the games again
quit                          - leave
`
