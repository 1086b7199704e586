package search

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	textsearch "golang.org/x/text/search"

	"github.com/mmcdole/marquee/internal/domain"
)

// SlotSource provides the current per-category slots, in category order
type SlotSource interface {
	Snapshot() []domain.CategorySlot
}

// Index answers substring queries over the deduplicated union of every
// category's current items. It holds no state of its own; each call reads
// the source afresh, so loading or failed categories contribute whatever
// items they still hold.
type Index struct {
	source SlotSource
	lang   language.Tag
	logger *slog.Logger
}

// IndexOption configures an Index
type IndexOption func(*Index)

// WithLanguage sets the collation used for containment matching
func WithLanguage(tag language.Tag) IndexOption {
	return func(ix *Index) { ix.lang = tag }
}

// WithIndexLogger sets the logger
func WithIndexLogger(logger *slog.Logger) IndexOption {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndex creates an index over source
func NewIndex(source SlotSource, opts ...IndexOption) *Index {
	ix := &Index{
		source: source,
		lang:   language.Und,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Candidates flattens all slots in category order and collapses entries that
// share an id. The surviving entry sits where the id was first seen and
// carries the fields of its last occurrence.
func (ix *Index) Candidates() []domain.MovieSummary {
	slots := ix.source.Snapshot()

	total := 0
	for _, slot := range slots {
		total += len(slot.Items)
	}

	out := make([]domain.MovieSummary, 0, total)
	pos := make(map[string]int, total)
	for _, slot := range slots {
		for _, m := range slot.Items {
			if i, ok := pos[m.ID]; ok {
				out[i] = m
				continue
			}
			pos[m.ID] = len(out)
			out = append(out, m)
		}
	}
	return out
}

// Search returns the candidates whose title, overview, original title or
// release date contains query. An empty query yields an empty result.
func (ix *Index) Search(query string) []domain.MovieSummary {
	if query == "" {
		return []domain.MovieSummary{}
	}

	m := newMatcher(ix.lang, strings.ToLower(query))
	results := []domain.MovieSummary{}
	for _, movie := range ix.Candidates() {
		if m.matches(movie) {
			results = append(results, movie)
		}
	}

	ix.logger.Debug("search executed", "query", query, "results", len(results))
	return results
}

// matcher tests one normalized query against candidates. Not safe for
// concurrent use; Search builds one per call.
type matcher struct {
	query   string
	pattern *textsearch.Pattern
}

func newMatcher(lang language.Tag, query string) *matcher {
	m := &matcher{query: query}
	// A query with no letters or digits may collate to nothing, which would
	// match everywhere. Those fall back to exact containment.
	if strings.IndexFunc(query, isWordRune) >= 0 {
		m.pattern = textsearch.New(lang, textsearch.Loose).CompileString(query)
	}
	return m
}

func (m *matcher) matches(movie domain.MovieSummary) bool {
	return m.contains(normalizeText(movie.Title)) ||
		m.contains(normalizeText(movie.Overview)) ||
		m.contains(normalizeText(movie.OriginalTitle)) ||
		m.contains(strings.ToLower(movie.ReleaseDate))
}

func (m *matcher) contains(field string) bool {
	if field == "" {
		return false
	}
	if strings.Contains(field, m.query) {
		return true
	}
	if m.pattern == nil {
		return false
	}
	start, _ := m.pattern.IndexString(field)
	return start >= 0
}

// normalizeText lower-cases s and drops everything but letters, digits and whitespace
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
