package search

// Result is the outcome of fetching and matching one page. Either FetchErr
// is set, or Matches holds whatever keywords were found (possibly none), so
// a reader can tell "no keyword hit" from "page unreachable".
type Result struct {
	Company       string
	URL           string
	Matches       []Match
	ContentLength int
	FetchErr      error
}

// Matched reports whether at least one keyword was found.
func (r *Result) Matched() bool {
	return len(r.Matches) > 0
}

// MatchedKeywords lists the keywords found, most frequent first.
func (r *Result) MatchedKeywords() []string {
	keywords := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		keywords = append(keywords, m.Keyword)
	}
	return keywords
}

// TotalMatches sums occurrence counts across keywords.
func (r *Result) TotalMatches() int {
	total := 0
	for _, m := range r.Matches {
		total += m.Count
	}
	return total
}

// Report is the per-run output of the search engine: one Result per
// dispatched page, in the original page-list order, plus the duplicate
// entries dropped before dispatch. Transient; never persisted here.
type Report struct {
	Results    []Result
	Duplicates []PageSpec
}

// Succeeded counts pages fetched without error.
func (r *Report) Succeeded() int {
	n := 0
	for i := range r.Results {
		if r.Results[i].FetchErr == nil {
			n++
		}
	}
	return n
}

// Failures returns the results whose fetch failed.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, result := range r.Results {
		if result.FetchErr != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// TotalMatches sums keyword occurrences across all pages.
func (r *Report) TotalMatches() int {
	total := 0
	for i := range r.Results {
		total += r.Results[i].TotalMatches()
	}
	return total
}
