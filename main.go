package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"boardshelf/internal/catalog"
	"boardshelf/internal/config"
	"boardshelf/internal/favorites"
	"boardshelf/internal/feed"
	"boardshelf/internal/library"
	"boardshelf/internal/logging"
	"boardshelf/internal/storage"
	"boardshelf/internal/view"
)

var (
	configPath string
	feedURL    string
	storeName  string
	storePath  string
	variant    string
	locale     string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

func truePath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	abs, _ := filepath.Abs(path)
	return abs
}

var rootCmd = &cobra.Command{
	Use:   "boardshelf",
	Short: "Browse, filter and favorite the games on the shelf",
	Long: `boardshelf fetches the shelf's game list and lets you filter it by title,
genre, language, difficulty, location, age, players, playtime, year and rating,
sort it, and keep a list of favorites that survives between sessions.

Run without arguments to start the interactive shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to config file")
	rootCmd.PersistentFlags().StringVar(&feedURL, "feed", "", "URL or file path of the games feed")
	rootCmd.PersistentFlags().StringVar(&storeName, "store", "", "favorites backend: bolt, sqlite, file or memory")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "location of the favorites store")
	rootCmd.PersistentFlags().StringVar(&variant, "variant", "", "catalog variant: basic, classic or extended")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "", "locale for sorting and messages (da, en)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(shellCmd, listCmd, facetsCmd, favCmd, findCmd, validateCmd)
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("feed") {
		c.Feed.URL = feedURL
	}
	if flags.Changed("store") {
		c.Storage.Backend = storeName
	}
	if flags.Changed("store-path") {
		c.Storage.Path = storePath
	}
	if flags.Changed("variant") {
		c.Catalog.Variant = variant
	}
	if flags.Changed("locale") {
		c.Catalog.Locale = locale
	}
}

// app bundles the components one command works with.
type app struct {
	session *view.Session
	lib     *library.Library
	loader  *feed.Loader
	store   storage.Store
	locale  language.Tag
	out     io.Writer
}

func newApp(out io.Writer) (*app, error) {
	caps, err := catalog.CapabilitiesFor(catalog.Variant(cfg.Catalog.Variant))
	if err != nil {
		return nil, err
	}
	tag := cfg.LocaleTag()

	store := openStore()
	favs := favorites.Open(store, favorites.WithLogger(logger.Named("favorites")))
	engine := catalog.NewEngine(caps,
		catalog.WithLocale(tag),
		catalog.WithLogger(logger.Named("catalog")))
	lib := library.New(logger.Named("library"))
	session := view.NewSession(lib, favs, engine,
		view.WithDefaultSort(catalog.ParseSortKey(cfg.Catalog.DefaultSort)),
		view.WithLogger(logger.Named("view")))

	loader := feed.NewLoader(cfg.Feed.URL,
		feed.WithTimeout(time.Duration(cfg.Feed.Timeout)),
		feed.WithRetries(cfg.Feed.Retries, time.Duration(cfg.Feed.RetryDelay)),
		feed.WithLogger(logger.Named("feed")))

	return &app{
		session: session,
		lib:     lib,
		loader:  loader,
		store:   store,
		locale:  tag,
		out:     out,
	}, nil
}

// openStore opens the configured favorites store. A store that cannot be
// opened is replaced by a memory store so favoriting still works this session.
func openStore() storage.Store {
	path := cfg.Storage.Path
	if cfg.Storage.Backend != storage.BackendMemory {
		path = truePath(path)
	}
	store, err := storage.Open(cfg.Storage.Backend, path)
	if err != nil {
		logger.Warn("favorites store unavailable, favorites will not be saved",
			zap.String("backend", cfg.Storage.Backend),
			zap.Error(err))
		return storage.NewMemoryStore()
	}
	return store
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("closing favorites store", zap.Error(err))
	}
}

// load fetches the catalog. The error is returned for one-shot commands; the
// shell reports it and keeps running.
func (a *app) load(ctx context.Context) error {
	return a.session.Load(ctx, a.loader)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
