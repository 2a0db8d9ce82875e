// Package config loads boardshelf settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"boardshelf/internal/catalog"
	"boardshelf/internal/feed"
	"boardshelf/internal/storage"
)

type Config struct {
	Feed    FeedConfig    `toml:"feed"`
	Storage StorageConfig `toml:"storage"`
	Catalog CatalogConfig `toml:"catalog"`
	Log     LogConfig     `toml:"log"`
}

type FeedConfig struct {
	URL        string   `toml:"url"         env:"BOARDSHELF_FEED_URL"`
	Timeout    Duration `toml:"timeout"     env:"BOARDSHELF_FEED_TIMEOUT"`
	Retries    int      `toml:"retries"     env:"BOARDSHELF_FEED_RETRIES"`
	RetryDelay Duration `toml:"retry_delay" env:"BOARDSHELF_FEED_RETRY_DELAY"`
}

// Duration reads "1m30s" style strings from both TOML and the environment.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type StorageConfig struct {
	Backend string `toml:"backend" env:"BOARDSHELF_STORE"`
	Path    string `toml:"path"    env:"BOARDSHELF_STORE_PATH"`
}

type CatalogConfig struct {
	Variant     string `toml:"variant"      env:"BOARDSHELF_VARIANT"`
	Locale      string `toml:"locale"       env:"BOARDSHELF_LOCALE"`
	DefaultSort string `toml:"default_sort" env:"BOARDSHELF_DEFAULT_SORT"`
}

type LogConfig struct {
	Level  string `toml:"level"  env:"BOARDSHELF_LOG_LEVEL"`
	Format string `toml:"format" env:"BOARDSHELF_LOG_FORMAT"`
}

// Default returns the built-in settings.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Feed: FeedConfig{
			URL:        feed.DefaultURL,
			Timeout:    Duration(15 * time.Second),
			Retries:    2,
			RetryDelay: Duration(500 * time.Millisecond),
		},
		Storage: StorageConfig{
			Backend: storage.BackendBolt,
			Path:    filepath.Join(home, ".boardshelf.db"),
		},
		Catalog: CatalogConfig{
			Variant:     string(catalog.VariantExtended),
			Locale:      "da",
			DefaultSort: string(catalog.SortNone),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "boardshelf", "config.toml")
	}
	return "boardshelf.toml"
}

// Load reads path over the defaults, then applies BOARDSHELF_* environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to open config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if _, err := catalog.CapabilitiesFor(catalog.Variant(c.Catalog.Variant)); err != nil {
		return err
	}
	if _, err := storage.New(c.Storage.Backend); err != nil {
		return err
	}
	if _, err := language.Parse(c.Catalog.Locale); err != nil {
		return fmt.Errorf("catalog locale %q: %w", c.Catalog.Locale, err)
	}
	if c.Feed.Retries < 0 {
		return fmt.Errorf("feed retries must not be negative, got %d", c.Feed.Retries)
	}
	return nil
}

// LocaleTag returns the parsed collation locale, falling back to Danish.
func (c Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Catalog.Locale)
	if err != nil {
		return catalog.DefaultLocale
	}
	return tag
}
