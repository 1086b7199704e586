package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/marquee/internal/domain"
)

// Suggest returns up to limit titles close to query, for "did you mean"
// hints when a search comes back empty. Titles containing the query's
// characters in order rank first, then titles with a word within typo
// distance of a query word.
func (ix *Index) Suggest(query string, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil
	}
	return suggestTitles(query, ix.Candidates(), limit)
}

func suggestTitles(query string, candidates []domain.MovieSummary, limit int) []string {
	titles := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, m := range candidates {
		if m.Title == "" || seen[m.Title] {
			continue
		}
		seen[m.Title] = true
		titles = append(titles, m.Title)
	}

	var out []string
	picked := make(map[string]bool)
	add := func(title string) bool {
		if picked[title] {
			return false
		}
		picked[title] = true
		out = append(out, title)
		return len(out) >= limit
	}

	// Subsequence matches, closest first
	ranks := fuzzy.RankFindNormalizedFold(query, titles)
	sort.Stable(ranks)
	for _, r := range ranks {
		if add(r.Target) {
			return out
		}
	}

	// Typo tolerance
	type near struct {
		title string
		dist  int
	}
	var typos []near
	queryWords := words(query)
	for _, title := range titles {
		if picked[title] {
			continue
		}
		if d, ok := closestWord(queryWords, words(title)); ok {
			typos = append(typos, near{title: title, dist: d})
		}
	}
	sort.SliceStable(typos, func(i, j int) bool { return typos[i].dist < typos[j].dist })
	for _, t := range typos {
		if add(t.title) {
			break
		}
	}
	return out
}

// closestWord returns the smallest edit distance between any query word and
// any title word, when it is within the allowance for that query word
func closestWord(queryWords, titleWords []string) (int, bool) {
	best, found := 0, false
	for _, q := range queryWords {
		allowed := allowedTypos(len([]rune(q)))
		if allowed == 0 {
			continue
		}
		for _, t := range titleWords {
			d := fuzzy.LevenshteinDistance(q, t)
			if d <= allowed && (!found || d < best) {
				best, found = d, true
			}
		}
	}
	return best, found
}

// allowedTypos scales with word length: 1-3 chars = 0, 4-6 chars = 1, 7+ chars = 2
func allowedTypos(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 6:
		return 1
	default:
		return 2
	}
}

func words(s string) []string {
	return strings.Fields(normalizeText(s))
}
