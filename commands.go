package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boardshelf/internal/catalog"
	"boardshelf/internal/feed"
	"boardshelf/internal/index"
	"boardshelf/internal/render"
	"boardshelf/internal/view"
)

type listOptions struct {
	search       string
	genres       []string
	languages    []string
	difficulties []string
	location     string

	ageFrom, ageTo           string
	playersFrom, playersTo   string
	playtimeFrom, playtimeTo string
	yearFrom, yearTo         string
	ratingFrom, ratingTo     string

	sort      string
	favorites bool
	json      bool
	indent    int
}

var listOpts listOptions

// criteria builds a criteria snapshot from the flags. Range bounds go through
// the same lenient parsing as shell input.
func (o listOptions) criteria() catalog.FilterCriteria {
	c := catalog.DefaultCriteria()
	c.Search = o.search
	c.Genres = splitAll(o.genres)
	c.Languages = splitAll(o.languages)
	c.Difficulties = splitAll(o.difficulties)
	if strings.TrimSpace(o.location) != "" {
		c.Location = o.location
	}
	c.Age = intRange(o.ageFrom, o.ageTo, catalog.MaxAge)
	c.Players = intRange(o.playersFrom, o.playersTo, catalog.MaxPlayers)
	c.Playtime = intRange(o.playtimeFrom, o.playtimeTo, catalog.MaxPlaytime)
	c.Year = intRange(o.yearFrom, o.yearTo, catalog.MaxYear)
	c.Rating = catalog.Range[float64]{
		From: catalog.ParseFloatBound(o.ratingFrom, 0),
		To:   catalog.ParseFloatBound(o.ratingTo, catalog.MaxRating),
	}
	return c
}

func intRange(from, to string, max int) catalog.Range[int] {
	return catalog.Range[int]{
		From: catalog.ParseIntBound(from, 0),
		To:   catalog.ParseIntBound(to, max),
	}
}

func splitAll(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, catalog.ParseList(v)...)
	}
	return out
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Filter and sort the catalog once and print the result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()

		if !listOpts.favorites {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
		}

		a.session.ShowFavorites(listOpts.favorites)
		a.session.SetCriteria(listOpts.criteria())
		if cmd.Flags().Changed("sort") {
			key := catalog.ParseSortKey(listOpts.sort)
			if !a.session.SortAllowed(key) {
				return fmt.Errorf("sort %q is not offered %s", listOpts.sort, pageName(a.session))
			}
			a.session.SetSort(key)
		}
		return a.print(a.session.Refresh(), listOpts.json, listOpts.indent)
	},
}

var facetsCmd = &cobra.Command{
	Use:   "facets <field>",
	Short: "List the selectable values of genre, language, difficulty, location or shelf",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := catalog.ParseFacet(args[0])
		if err != nil {
			return err
		}
		a, err := newApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.load(cmd.Context()); err != nil {
			return err
		}
		printFacet(a.out, f, a.session.Facet(f))
		return nil
	},
}

func printFacet(w io.Writer, f catalog.Facet, values []string) {
	if f.SingleSelect() {
		fmt.Fprintln(w, catalog.AllValues)
	}
	for _, v := range values {
		fmt.Fprintln(w, v)
	}
}

var favJSON bool

var favCmd = &cobra.Command{
	Use:   "fav",
	Short: "Manage favorites",
}

var favToggleCmd = &cobra.Command{
	Use:   "toggle <title>",
	Short: "Add a game to the favorites, or remove it if it is already there",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()

		// A failed load still lets an existing favorite be toggled off.
		if err := a.load(cmd.Context()); err != nil {
			logger.Warn("catalog unavailable, only favorites can be toggled", zap.Error(err))
		}
		return a.toggle(strings.Join(args, " "))
	},
}

var favRemoveCmd = &cobra.Command{
	Use:   "remove <title>",
	Short: "Remove a game from the favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()

		title := strings.Join(args, " ")
		if !a.session.RemoveFavorite(title) {
			return fmt.Errorf("%q is not a favorite", title)
		}
		fmt.Fprintf(a.out, "Removed %s from favorites.\n", title)
		return nil
	},
}

var favListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the favorites, best rated first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()

		a.session.ShowFavorites(true)
		return a.print(a.session.Refresh(), favJSON, 2)
	},
}

var favClearAll bool

var favClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every favorite",
	Long: `Remove every favorite. With --all the whole favorites store is wiped,
including anything else kept in it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()

		if favClearAll {
			a.session.Favorites().Reset()
			fmt.Fprintln(a.out, "Favorites store wiped.")
		} else {
			a.session.ClearFavorites()
			fmt.Fprintln(a.out, "Favorites cleared.")
		}
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Free-form lookup over titles, genres and descriptions",
	Long:  "Free-form lookup over titles, genres and descriptions.\n" + findSyntax,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.load(cmd.Context()); err != nil {
			return err
		}
		records, _ := a.lib.Snapshot()
		idx, err := index.Build(records)
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}
		defer idx.Close()

		return a.find(idx, strings.Join(args, " "))
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [path-or-url]",
	Short: "Check a games feed against the expected record shape",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := cfg.Feed.URL
		if len(args) == 1 {
			source = args[0]
		}
		loader := feed.NewLoader(source,
			feed.WithRetries(cfg.Feed.Retries, 0),
			feed.WithLogger(logger.Named("feed")))

		data, err := loader.Fetch(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		problems, err := feed.Validate(data)
		if err != nil {
			return err
		}
		records, skipped, err := feed.Decode(data)
		if err != nil {
			return err
		}
		for _, p := range problems {
			fmt.Fprintf(out, "  %s\n", p)
		}
		fmt.Fprintf(out, "%s: %s games, %d skipped, %d problems\n",
			loader.Source(), commatize(len(records)), skipped, len(problems))
		if len(problems) > 0 {
			return errInvalidFeed
		}
		return nil
	},
}

var errInvalidFeed = errors.New("feed does not match the expected shape")

func init() {
	f := listCmd.Flags()
	f.StringVarP(&listOpts.search, "search", "s", "", "case-insensitive title search")
	f.StringArrayVar(&listOpts.genres, "genre", nil, "genre to include (repeatable, or comma-separated)")
	f.StringArrayVar(&listOpts.languages, "language", nil, "language to include (repeatable, or comma-separated)")
	f.StringArrayVar(&listOpts.difficulties, "difficulty", nil, "difficulty to include (repeatable, or comma-separated)")
	f.StringVar(&listOpts.location, "location", "", "location, or \"all\"")
	f.StringVar(&listOpts.ageFrom, "age-from", "", "minimum age")
	f.StringVar(&listOpts.ageTo, "age-to", "", "maximum age")
	f.StringVar(&listOpts.playersFrom, "players-from", "", "lowest player count wanted")
	f.StringVar(&listOpts.playersTo, "players-to", "", "highest player count wanted")
	f.StringVar(&listOpts.playtimeFrom, "playtime-from", "", "shortest playtime in minutes")
	f.StringVar(&listOpts.playtimeTo, "playtime-to", "", "longest playtime in minutes")
	f.StringVar(&listOpts.yearFrom, "year-from", "", "earliest release year")
	f.StringVar(&listOpts.yearTo, "year-to", "", "latest release year")
	f.StringVar(&listOpts.ratingFrom, "rating-from", "", "lowest rating")
	f.StringVar(&listOpts.ratingTo, "rating-to", "", "highest rating")
	f.StringVar(&listOpts.sort, "sort", "", "sort by title, rating or year")
	f.BoolVar(&listOpts.favorites, "favorites", false, "list favorites instead of the catalog")
	f.BoolVar(&listOpts.json, "json", false, "output matching games in JSON")
	f.IntVarP(&listOpts.indent, "indent", "i", 2, "with --json, # of spaces to indent by")

	favListCmd.Flags().BoolVar(&favJSON, "json", false, "output favorites in JSON")
	favClearCmd.Flags().BoolVar(&favClearAll, "all", false, "wipe the whole favorites store")
	favCmd.AddCommand(favToggleCmd, favRemoveCmd, favListCmd, favClearCmd)
}

// print writes one refresh result in the state the session reports.
func (a *app) print(res view.Result, asJSON bool, indent int) error {
	if asJSON {
		if res.State == view.Unavailable {
			return res.Err
		}
		return render.JSON(a.out, res.Records, indent)
	}

	switch res.State {
	case view.NotLoaded:
		render.Notice(a.out, render.NotLoadedMessage(a.locale))
	case view.Unavailable:
		render.Notice(a.out, render.UnavailableMessage(a.locale))
	case view.Empty:
		render.Notice(a.out, render.EmptyMessage(a.locale))
		if len(res.Suggestions) > 0 {
			render.Notice(a.out, render.SuggestPrefix(a.locale)+" "+strings.Join(res.Suggestions, ", "))
		}
	case view.Ready:
		render.Cards(a.out, res.Records, a.session.Favorites().Titles())
	}
	return nil
}

func pageName(s *view.Session) string {
	if s.FavoritesOnly() {
		return "on the favorites page"
	}
	return fmt.Sprintf("by the %s catalog", cfg.Catalog.Variant)
}

func (a *app) toggle(title string) error {
	added, err := a.session.ToggleFavorite(title)
	if err != nil {
		return err
	}
	r, _ := a.session.Find(title)
	if added {
		fmt.Fprintf(a.out, "♥ Added %s to favorites.\n", r.Title)
	} else {
		fmt.Fprintf(a.out, "Removed %s from favorites.\n", r.Title)
	}
	if a.session.Favorites().Degraded() {
		render.Notice(a.out, "Favorites could not be saved and will be lost on exit.")
	}
	return nil
}

func (a *app) find(idx *index.Index, query string) error {
	results, err := idx.Search(query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		render.Notice(a.out, render.EmptyMessage(a.locale))
		return nil
	}
	render.Cards(a.out, results, a.session.Favorites().Titles())
	return nil
}

const findSyntax = `
Queries are comma-separated terms. A leading character restricts a term to one field:

!<some string>    - genre
@<some string>    - language
#<some string>    - location
$<some string>    - title

A bare term matches title or description. Like-type terms are ORed, unlike-type terms
are ANDed, so "!party, !family, @dansk" finds Danish party or family games.

Input without any of these markers uses Bleve query string syntax, for example
"title:catan~1" or "+genre:strategy -genre:party".`
