package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xrsl/job/internal/ai"
	"github.com/xrsl/job/internal/ai/gemini"
	"github.com/xrsl/job/internal/store"
)

var fitCmd = &cobra.Command{
	Use:   "fit <id|url>",
	Short: "Assess how well your CV matches a stored job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFit(cmd, args[0])
	},
}

var fitFlagBindings = map[string]string{
	"fit.cv":    "cv",
	"fit.model": "model",
	"fit.extra": "extra",
}

func init() {
	rootCmd.AddCommand(fitCmd)

	fitCmd.Flags().String("cv", "", "path to your CV file")
	fitCmd.Flags().StringP("model", "m", "", "AI model for the assessment")
	fitCmd.Flags().StringArrayP("extra", "e", nil, "additional criteria for the assessment (can be repeated)")
}

func runFit(cmd *cobra.Command, identifier string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, fitFlagBindings, log)
	if err != nil {
		return err
	}

	if cfg.Fit.CV == "" {
		return fmt.Errorf("cv path is required; set fit.cv in job.toml or pass --cv")
	}

	cv, err := os.ReadFile(cfg.Fit.CV)
	if err != nil {
		return fmt.Errorf("reading cv: %w", err)
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

	model := cfg.ModelFor("", cfg.Fit.Model)
	generator, err := newGenerator(ctx, cfg, model, log)
	if err != nil {
		return err
	}

	assessor := gemini.NewAssessor(generator, cfg.AI.Gemini.MaxLogLength, log)
	assessment, err := assessor.Assess(ctx, postingFromJob(job), string(cv), cfg.Fit.Extra)
	if err != nil {
		return fmt.Errorf("assessing fit: %w", err)
	}

	if _, err := s.SaveAssessment(ctx, &store.Assessment{
		JobID:  job.ID,
		Fit:    assessment.Fit,
		Score:  assessment.Score,
		Reason: assessment.Reason,
		Model:  assessment.Model,
	}); err != nil {
		return err
	}

	log.Info("fit assessment stored",
		zap.Int64("job_id", job.ID),
		zap.Bool("fit", assessment.Fit),
		zap.Float64("score", assessment.Score),
	)

	verdict := "NO FIT"
	if assessment.Fit {
		verdict = "FIT"
	}
	fmt.Printf("%s (score %.2f) for %s @ %s\n", verdict, assessment.Score, job.Title, job.Company)
	fmt.Println(assessment.Reason)
	return nil
}

func postingFromJob(job *store.Job) *ai.Posting {
	return &ai.Posting{
		Title:         job.Title,
		Company:       job.Company,
		Location:      job.Location,
		Department:    job.Department,
		Deadline:      job.Deadline,
		HiringManager: job.HiringManager,
		FullAd:        job.FullAd,
	}
}
