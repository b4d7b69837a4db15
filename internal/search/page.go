package search

import (
	"strings"

	"github.com/xrsl/job/internal/config"
)

// PageSpec is a resolved, ready-to-fetch description of one career page.
// Keywords is the effective list after applying the page's own
// override/append declarations over the global defaults. Immutable after
// construction.
type PageSpec struct {
	Company  string
	URL      string
	Keywords []string
	Enabled  bool
}

// PagesFromConfig projects the configured page list into PageSpecs,
// resolving the effective keyword list per page.
func PagesFromConfig(cfg *config.Config) []PageSpec {
	pages := make([]PageSpec, 0, len(cfg.Search.Pages))
	for _, p := range cfg.Search.Pages {
		pages = append(pages, PageSpec{
			Company:  p.Company,
			URL:      p.URL,
			Keywords: config.KeywordsForPage(cfg.Search.Keywords, p),
			Enabled:  p.IsEnabled(),
		})
	}
	return pages
}

// FilterByCompany keeps pages whose company name contains any of the given
// terms, case-insensitively. An empty term list keeps everything.
func FilterByCompany(pages []PageSpec, terms []string) []PageSpec {
	if len(terms) == 0 {
		return pages
	}

	out := make([]PageSpec, 0, len(pages))
	for _, page := range pages {
		company := strings.ToLower(page.Company)
		for _, term := range terms {
			if strings.Contains(company, strings.ToLower(term)) {
				out = append(out, page)
				break
			}
		}
	}
	return out
}
