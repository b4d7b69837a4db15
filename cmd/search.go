package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xrsl/job/internal/fetcher"
	"github.com/xrsl/job/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search configured career pages for keywords",
	Long: `Search every enabled career page from the config for keywords,
fetching pages concurrently. Each page either reports its matched keywords
or the fetch error, so "no hits" and "unreachable" stay distinguishable.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSearch(cmd)
	},
}

// searchFlagBindings maps flags onto config key paths so the CLI acts as
// the highest-precedence settings source.
var searchFlagBindings = map[string]string{
	"search.keywords":       "keyword",
	"search.extra-keywords": "extra-keyword",
	"search.no-js":          "no-js",
	"search.parallel":       "parallel",
	"verbose":               "verbose",
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringArray("keyword", nil, "replace the configured keyword list (can be repeated)")
	searchCmd.Flags().StringArrayP("extra-keyword", "k", nil, "additional keywords on top of the configured list (can be repeated)")
	searchCmd.Flags().StringArray("company", nil, "search only pages whose company name matches (can be repeated)")
	searchCmd.Flags().Bool("no-js", false, "fast mode: skip JavaScript rendering (may miss dynamic content)")
	searchCmd.Flags().IntP("parallel", "p", 0, "maximum concurrent page fetches")
	searchCmd.Flags().BoolP("verbose", "v", false, "show match context snippets")
}

func runSearch(cmd *cobra.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, searchFlagBindings, log)
	if err != nil {
		return err
	}

	pages := search.PagesFromConfig(cfg)
	if len(pages) == 0 {
		return fmt.Errorf("no career pages configured; add [[job.search.in]] entries to job.toml")
	}

	companies, _ := cmd.Flags().GetStringArray("company")
	if len(companies) > 0 {
		filtered := search.FilterByCompany(pages, companies)
		if len(filtered) == 0 {
			names := make([]string, 0, len(pages))
			for _, p := range pages {
				names = append(names, p.Company)
			}
			return fmt.Errorf("no pages found matching %s; configured companies: %s",
				strings.Join(companies, ", "), strings.Join(names, ", "))
		}
		pages = filtered
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	static := fetcher.NewStatic(0, log)
	var fetch search.Fetcher = static
	if !cfg.Search.NoJS {
		fetch = fetcher.NewBrowser(static, log)
	}

	log.Info("starting the search",
		zap.Int("pages", len(pages)),
		zap.Int("parallel", cfg.Search.Parallel),
		zap.Bool("no_js", cfg.Search.NoJS),
	)

	orch := search.NewOrchestrator(fetch, search.NewMatcher(), cfg.Search.Parallel, log)
	report, err := orch.Run(ctx, pages)
	if err != nil {
		return fmt.Errorf("search aborted: %w", err)
	}

	printReport(report, cfg.Verbose)
	return nil
}

func printReport(report *search.Report, verbose bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMPANY\tSTATUS\tMATCHES\tKEYWORDS")

	for i := range report.Results {
		result := &report.Results[i]

		status := "ok"
		matches := "-"
		keywords := "-"
		if result.FetchErr != nil {
			status = "error: " + firstLine(result.FetchErr.Error())
		} else {
			if result.TotalMatches() > 0 {
				matches = fmt.Sprintf("%d", result.TotalMatches())
				keywords = strings.Join(result.MatchedKeywords(), ", ")
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", result.Company, status, matches, keywords)
	}
	w.Flush()

	if verbose {
		for i := range report.Results {
			result := &report.Results[i]
			if !result.Matched() {
				continue
			}
			fmt.Printf("\n%s (%s)\n", result.Company, result.URL)
			for _, match := range result.Matches {
				fmt.Printf("  %s: %d occurrences\n", match.Keyword, match.Count)
				for _, snippet := range match.Snippets {
					fmt.Printf("    %s\n", snippet)
				}
			}
		}
	}

	fmt.Println()
	fmt.Printf("Summary: %d/%d pages searched, %d total keyword matches\n",
		report.Succeeded(), len(report.Results), report.TotalMatches())

	for _, dup := range report.Duplicates {
		fmt.Printf("Warning: duplicate page entry dropped: %s (%s)\n", dup.Company, dup.URL)
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
