// Package feed fetches the game catalog from its source: an HTTP URL serving a
// JSON array of records, or a local file with the same content.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"boardshelf/internal/catalog"
)

// DefaultURL is the published games feed.
const DefaultURL = "https://raw.githubusercontent.com/cederdorff/race/refs/heads/master/data/games.json"

// ErrUnavailable wraps every failure to produce a catalog, after retries.
var ErrUnavailable = errors.New("catalog data unavailable")

// maxFeedBytes bounds how much of a response body is read.
const maxFeedBytes = 32 << 20

// Loader fetches and decodes the feed.
type Loader struct {
	source     string
	client     *http.Client
	attempts   int
	retryDelay time.Duration
	log        *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithTimeout bounds each fetch attempt.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.client = &http.Client{Timeout: d, Transport: l.client.Transport}
		}
	}
}

// WithRetries sets how many times a failed fetch is retried and the delay before
// the first retry. The delay doubles after each attempt.
func WithRetries(retries int, delay time.Duration) Option {
	return func(l *Loader) {
		if retries >= 0 {
			l.attempts = retries + 1
		}
		if delay > 0 {
			l.retryDelay = delay
		}
	}
}

// WithLogger sets the loader's logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader creates a loader for source, which is an http(s) URL, a file:// URL
// or a plain file path. An empty source means DefaultURL.
func NewLoader(source string, opts ...Option) *Loader {
	if strings.TrimSpace(source) == "" {
		source = DefaultURL
	}
	l := &Loader{
		source:     source,
		client:     &http.Client{Timeout: 15 * time.Second},
		attempts:   3,
		retryDelay: 500 * time.Millisecond,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns where the loader reads from.
func (l *Loader) Source() string {
	return l.source
}

// Load fetches the feed, retrying transient failures, and decodes it. Records
// are returned as-is; schema problems are only logged.
func (l *Loader) Load(ctx context.Context) ([]catalog.GameRecord, error) {
	data, err := l.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if problems, err := Validate(data); err == nil && len(problems) > 0 {
		l.log.Warn("catalog feed does not match the expected schema",
			zap.Int("problems", len(problems)),
			zap.String("first", problems[0].String()))
	}

	records, skipped, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	l.log.Info("catalog loaded",
		zap.String("source", l.source),
		zap.Int("records", len(records)),
		zap.Int("skipped", skipped))
	return records, nil
}

// Fetch returns the raw feed bytes.
func (l *Loader) Fetch(ctx context.Context) ([]byte, error) {
	delay := l.retryDelay
	var lastErr error
	for attempt := 1; attempt <= l.attempts; attempt++ {
		data, err := l.fetchOnce(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		var perm permanentError
		if errors.As(err, &perm) || ctx.Err() != nil || attempt == l.attempts {
			break
		}

		l.log.Debug("catalog fetch failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

// permanentError marks failures that retrying cannot fix.
type permanentError struct {
	err error
}

func (p permanentError) Error() string { return p.err.Error() }

func (p permanentError) Unwrap() error { return p.err }

func (l *Loader) fetchOnce(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(l.source)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// A bare path, or a Windows drive letter parsed as a scheme.
		return readFile(l.source)
	}
	switch u.Scheme {
	case "file":
		return readFile(u.Path)
	case "http", "https":
	default:
		return nil, permanentError{fmt.Errorf("unsupported feed scheme %q", u.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, permanentError{err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("GET %s: %s", l.source, resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, permanentError{err}
		}
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, permanentError{err}
	}
	return data, nil
}

// Decode parses a feed payload. The payload must be a JSON array. Entries that
// are not JSON objects are skipped and counted; inside an object each field is
// decoded on its own, and a field of the wrong type is left absent.
func Decode(data []byte) ([]catalog.GameRecord, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode catalog: %w", err)
	}
	records := make([]catalog.GameRecord, 0, len(raw))
	skipped := 0
	for _, entry := range raw {
		r, ok := decodeRecord(entry)
		if !ok {
			skipped++
			continue
		}
		records = append(records, r)
	}
	return records, skipped, nil
}

func decodeRecord(entry json.RawMessage) (catalog.GameRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return catalog.GameRecord{}, false
	}

	var r catalog.GameRecord
	decodeField(fields, "title", &r.Title)
	decodeField(fields, "genre", &r.Genre)
	decodeField(fields, "rating", &r.Rating)
	decodeField(fields, "year", &r.Year)
	decodeField(fields, "age", &r.Age)
	decodeField(fields, "players", &r.Players)
	decodeField(fields, "playtime", &r.Playtime)
	decodeField(fields, "difficulty", &r.Difficulty)
	decodeField(fields, "language", &r.Language)
	decodeField(fields, "location", &r.Location)
	decodeField(fields, "description", &r.Description)
	decodeField(fields, "image", &r.Image)
	decodeField(fields, "shelf", &r.Shelf)
	return r, true
}

// decodeField sets *dst only when the named field decodes cleanly.
func decodeField[T any](fields map[string]json.RawMessage, name string, dst *T) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err == nil {
		*dst = v
	}
}
