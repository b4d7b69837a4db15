package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xrsl/job/internal/ai/gemini"
	"github.com/xrsl/job/internal/fetcher"
	"github.com/xrsl/job/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Fetch a job posting, extract it with AI and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(cmd, args[0])
	},
}

var addFlagBindings = map[string]string{
	"add.browser": "browser",
	"add.model":   "model",
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().BoolP("browser", "b", false, "render the page in a headless browser before extraction")
	addCmd.Flags().StringP("model", "m", "", "AI model for extraction")
}

func runAdd(cmd *cobra.Command, rawURL string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, addFlagBindings, log)
	if err != nil {
		return err
	}

	normalized, err := normalizeURL(rawURL)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()

	if existing, err := s.GetJobByURL(ctx, normalized); err == nil {
		return fmt.Errorf("job already stored with id %d: %s", existing.ID, existing.Title)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	static := fetcher.NewStatic(0, log)

	var text string
	if cfg.Add.Browser {
		text, err = fetcher.NewBrowser(static, log).Fetch(ctx, normalized)
	} else {
		text, err = static.Fetch(ctx, normalized)
	}
	if err != nil {
		return err
	}

	model := cfg.ModelFor("", cfg.Add.Model)
	generator, err := newGenerator(ctx, cfg, model, log)
	if err != nil {
		return err
	}

	extractor := gemini.NewExtractor(generator, cfg.AI.Gemini.MaxLogLength, log)
	posting, err := extractor.Extract(ctx, text)
	if err != nil {
		return fmt.Errorf("extracting posting: %w", err)
	}

	id, err := s.AddJob(ctx, &store.Job{
		Title:         posting.Title,
		Company:       posting.Company,
		Location:      posting.Location,
		Department:    posting.Department,
		Deadline:      posting.Deadline,
		HiringManager: posting.HiringManager,
		URL:           normalized,
		FullAd:        posting.FullAd,
	})
	if err != nil {
		return err
	}

	log.Info("stored job posting",
		zap.Int64("id", id),
		zap.String("title", posting.Title),
		zap.String("company", posting.Company),
	)

	fmt.Printf("Stored job %d: %s @ %s\n", id, posting.Title, posting.Company)
	return nil
}

// normalizeURL validates the posting URL, defaulting to https when the
// scheme is missing.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid url: %s", raw)
	}

	return parsed.String(), nil
}
