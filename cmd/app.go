package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xrsl/job/internal/ai/gemini"
	"github.com/xrsl/job/internal/store"
)

var appCmd = &cobra.Command{
	Use:   "app <id|url>",
	Short: "Draft an application letter for a stored job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}

var appFlagBindings = map[string]string{
	"app.cv":     "cv",
	"app.model":  "model",
	"app.letter": "letter",
	"app.extra":  "extra",
}

func init() {
	rootCmd.AddCommand(appCmd)

	appCmd.Flags().String("cv", "", "path to your CV file (falls back to fit.cv)")
	appCmd.Flags().StringP("model", "m", "", "AI model for drafting")
	appCmd.Flags().String("letter", "", "path to a sample letter whose tone the draft should match")
	appCmd.Flags().StringArrayP("extra", "e", nil, "additional drafting instructions (can be repeated)")
}

func runApp(cmd *cobra.Command, identifier string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, appFlagBindings, log)
	if err != nil {
		return err
	}

	cvPath := cfg.App.CV
	if cvPath == "" {
		cvPath = cfg.Fit.CV
	}
	if cvPath == "" {
		return fmt.Errorf("cv path is required; set app.cv or fit.cv in job.toml or pass --cv")
	}

	cv, err := os.ReadFile(cvPath)
	if err != nil {
		return fmt.Errorf("reading cv: %w", err)
	}

	extra := append([]string{}, cfg.App.Extra...)
	if cfg.App.Letter != "" {
		sample, err := os.ReadFile(cfg.App.Letter)
		if err != nil {
			return fmt.Errorf("reading sample letter: %w", err)
		}
		extra = append(extra, "Match the tone of this sample letter: "+string(sample))
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()

	job, err := findJob(ctx, s, identifier)
	if err != nil {
		return fmt.Errorf("job %s: %w", identifier, err)
	}

	model := cfg.ModelFor("", cfg.App.Model)
	generator, err := newGenerator(ctx, cfg, model, log)
	if err != nil {
		return err
	}

	drafter := gemini.NewDrafter(generator, cfg.AI.Gemini.MaxLogLength, log)
	draft, err := drafter.Draft(ctx, postingFromJob(job), string(cv), extra)
	if err != nil {
		return fmt.Errorf("drafting letter: %w", err)
	}

	id, err := s.SaveDraft(ctx, &store.Draft{
		JobID:  job.ID,
		Letter: draft.Letter,
		Model:  draft.Model,
	})
	if err != nil {
		return err
	}

	log.Info("application draft stored", zap.Int64("job_id", job.ID), zap.Int64("draft_id", id))

	fmt.Println(draft.Letter)
	return nil
}
