package search

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds in-flight fetches when no limit is configured.
const DefaultConcurrency = 4

// Fetcher delivers raw page text for a URL. Timeout and retry policy belong
// to the implementation; the orchestrator only distinguishes success from
// failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Orchestrator fans a fetch-then-match unit of work out over every enabled
// page, bounded by a concurrency limit, and reassembles the results in the
// original page order.
type Orchestrator struct {
	fetcher Fetcher
	matcher *Matcher
	limit   int
	logger  *zap.Logger
}

// NewOrchestrator builds an orchestrator. A non-positive limit falls back
// to DefaultConcurrency.
func NewOrchestrator(fetcher Fetcher, matcher *Matcher, limit int, logger *zap.Logger) *Orchestrator {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	if matcher == nil {
		matcher = NewMatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		fetcher: fetcher,
		matcher: matcher,
		limit:   limit,
		logger:  logger,
	}
}

// Run searches every enabled page concurrently and returns one report with
// a result per page, input order preserved. A page's fetch failure is
// recorded on its result and never aborts the other pages. Only context
// cancellation returns an error; a cancelled run yields no partial report.
func (o *Orchestrator) Run(ctx context.Context, pages []PageSpec) (*Report, error) {
	report := &Report{}

	type pageKey struct {
		company string
		url     string
	}

	seen := make(map[pageKey]struct{}, len(pages))
	active := make([]PageSpec, 0, len(pages))
	for _, page := range pages {
		if !page.Enabled {
			o.logger.Debug("skipping disabled page", zap.String("company", page.Company))
			continue
		}

		key := pageKey{company: page.Company, url: page.URL}
		if _, dup := seen[key]; dup {
			o.logger.Warn("dropping duplicate page entry",
				zap.String("company", page.Company),
				zap.String("url", page.URL),
			)
			report.Duplicates = append(report.Duplicates, page)
			continue
		}
		seen[key] = struct{}{}

		active = append(active, page)
	}

	// Results land in indexed slots so the report order matches the input
	// order no matter which fetch completes first.
	results := make([]Result, len(active))

	var g errgroup.Group
	g.SetLimit(o.limit)

	for i, page := range active {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = o.searchPage(ctx, page)

			if err := ctx.Err(); err != nil {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Results = results
	return report, nil
}

func (o *Orchestrator) searchPage(ctx context.Context, page PageSpec) Result {
	result := Result{Company: page.Company, URL: page.URL}

	text, err := o.fetcher.Fetch(ctx, page.URL)
	if err != nil {
		o.logger.Debug("page fetch failed",
			zap.String("company", page.Company),
			zap.String("url", page.URL),
			zap.Error(err),
		)
		result.FetchErr = err
		return result
	}

	result.ContentLength = len(text)
	result.Matches = o.matcher.Match(text, page.Keywords)

	o.logger.Debug("page searched",
		zap.String("company", page.Company),
		zap.Int("content_length", result.ContentLength),
		zap.Int("matched_keywords", len(result.Matches)),
	)

	return result
}
