package search

import (
	"sort"
	"strings"
)

const (
	snippetRadius      = 40
	maxSnippetsPerWord = 2
)

// Match is one keyword found on a page.
type Match struct {
	Keyword  string
	Count    int
	Snippets []string
}

// Matcher scores page text against a keyword list. Matching is
// case-insensitive substring search per keyword.
type Matcher struct {
	maxSnippets int
}

// NewMatcher returns a matcher with default snippet settings.
func NewMatcher() *Matcher {
	return &Matcher{maxSnippets: maxSnippetsPerWord}
}

// Match returns one entry per keyword that occurs in the text, most
// frequent first. Equal counts keep the keyword list order so output is
// stable across runs.
func (m *Matcher) Match(text string, keywords []string) []Match {
	lower := strings.ToLower(text)

	matches := make([]Match, 0, len(keywords))
	for _, keyword := range keywords {
		needle := strings.ToLower(keyword)
		if needle == "" {
			continue
		}

		count := strings.Count(lower, needle)
		if count == 0 {
			continue
		}

		matches = append(matches, Match{
			Keyword:  keyword,
			Count:    count,
			Snippets: extractSnippets(text, lower, needle, m.maxSnippets),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Count > matches[j].Count })

	return matches
}

// extractSnippets collects short context windows around the first
// occurrences of the needle, whitespace collapsed.
func extractSnippets(text, lower, needle string, limit int) []string {
	var snippets []string

	offset := 0
	for len(snippets) < limit {
		idx := strings.Index(lower[offset:], needle)
		if idx < 0 {
			break
		}
		idx += offset

		start := idx - snippetRadius
		if start < 0 {
			start = 0
		}
		end := idx + len(needle) + snippetRadius
		if end > len(text) {
			end = len(text)
		}

		snippet := strings.Join(strings.Fields(text[start:end]), " ")
		if snippet != "" {
			snippets = append(snippets, "..."+snippet+"...")
		}

		offset = idx + len(needle)
	}

	return snippets
}
