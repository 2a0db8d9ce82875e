package catalog

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Engine derives display lists from a master collection. It holds no state
// between calls and never modifies its input.
type Engine struct {
	caps   Capabilities
	locale language.Tag
	log    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocale sets the collation locale used for title sorting.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.locale = tag
	}
}

// WithLogger attaches a logger for debug tracing of each run.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates an engine for the given capability set.
func NewEngine(caps Capabilities, opts ...Option) *Engine {
	e := &Engine{
		caps:   caps,
		locale: DefaultLocale,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Capabilities returns the engine's capability set.
func (e *Engine) Capabilities() Capabilities {
	return e.caps
}

// Locale returns the collation locale.
func (e *Engine) Locale() language.Tag {
	return e.locale
}

type predicate func(*GameRecord) bool

// Apply filters records by c and orders the result by key. The returned slice
// is always freshly allocated; records is left untouched.
func (e *Engine) Apply(records []GameRecord, c FilterCriteria, key SortKey) []GameRecord {
	preds := e.compile(e.caps.Restrict(c))

	out := make([]GameRecord, 0, len(records))
	for i := range records {
		if matchAll(&records[i], preds) {
			out = append(out, records[i])
		}
	}

	if !e.caps.SortAllowed(key) {
		key = SortNone
	}
	sortRecords(out, key, e.locale)

	e.log.Debug("catalog filtered",
		zap.Int("input", len(records)),
		zap.Int("matched", len(out)),
		zap.Int("predicates", len(preds)),
		zap.String("sort", string(key)))
	return out
}

func matchAll(r *GameRecord, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// compile turns the active criteria into predicates, cheapest first.
func (e *Engine) compile(c FilterCriteria) []predicate {
	var preds []predicate

	if search := strings.ToLower(c.Search); search != "" {
		preds = append(preds, func(r *GameRecord) bool {
			return strings.Contains(strings.ToLower(r.Title), search)
		})
	}

	if genres := nonEmpty(c.Genres); len(genres) > 0 {
		preds = append(preds, func(r *GameRecord) bool {
			for _, g := range r.Genre {
				if containsFold(genres, g) {
					return true
				}
			}
			return false
		})
	}
	if langs := nonEmpty(c.Languages); len(langs) > 0 {
		preds = append(preds, func(r *GameRecord) bool {
			return containsFold(langs, r.Language)
		})
	}
	if diffs := nonEmpty(c.Difficulties); len(diffs) > 0 {
		preds = append(preds, func(r *GameRecord) bool {
			return containsFold(diffs, r.Difficulty)
		})
	}
	if locationActive(c.Location) {
		loc := strings.TrimSpace(c.Location)
		preds = append(preds, func(r *GameRecord) bool {
			return strings.EqualFold(strings.TrimSpace(r.Location), loc)
		})
	}

	if c.Age.Active(MaxAge) {
		preds = append(preds, optionalIn(func(r *GameRecord) *int { return r.Age }, c.Age))
	}
	if c.Playtime.Active(MaxPlaytime) {
		preds = append(preds, optionalIn(func(r *GameRecord) *int { return r.Playtime }, c.Playtime))
	}
	if c.Year.Active(MaxYear) {
		preds = append(preds, optionalIn(func(r *GameRecord) *int { return r.Year }, c.Year))
	}
	if c.Rating.Active(MaxRating) {
		rng := c.Rating
		preds = append(preds, func(r *GameRecord) bool {
			return rng.Contains(r.Rating)
		})
	}

	if c.Players.Active(MaxPlayers) {
		rng := c.Players
		preds = append(preds, func(r *GameRecord) bool {
			if !r.Players.WellFormed() {
				return false
			}
			return r.Players.Min <= rng.To && r.Players.Max >= rng.From
		})
	}

	return preds
}

// optionalIn excludes records where the field is absent.
func optionalIn(field func(*GameRecord) *int, rng Range[int]) predicate {
	return func(r *GameRecord) bool {
		v := field(r)
		return v != nil && rng.Contains(*v)
	}
}

func containsFold(values []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
