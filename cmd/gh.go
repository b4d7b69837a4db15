package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xrsl/job/internal/github"
	"github.com/xrsl/job/internal/store"
)

var ghCmd = &cobra.Command{
	Use:   "gh",
	Short: "Mirror stored jobs to GitHub",
}

var ghIssueCmd = &cobra.Command{
	Use:   "issue <id|url>",
	Short: "Create a GitHub issue for a stored job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGHIssue(cmd, args[0])
	},
}

var ghCommentCmd = &cobra.Command{
	Use:   "comment <id|url>",
	Short: "Post the latest fit assessment as a comment on the job's issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGHComment(cmd, args[0])
	},
}

var ghFlagBindings = map[string]string{
	"gh.repo":        "repo",
	"gh.auto-assign": "assign",
}

func init() {
	rootCmd.AddCommand(ghCmd)
	ghCmd.AddCommand(ghIssueCmd)
	ghCmd.AddCommand(ghCommentCmd)

	ghIssueCmd.Flags().StringP("repo", "R", "", "target repository in OWNER/NAME form")
	ghIssueCmd.Flags().Bool("assign", false, "assign the issue to yourself")
	ghIssueCmd.Flags().Bool("force", false, "create even when the job already has an issue")

	ghCommentCmd.Flags().StringP("repo", "R", "", "target repository in OWNER/NAME form")
}

func runGHIssue(cmd *cobra.Command, identifier string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, ghFlagBindings, log)
	if err != nil {
		return err
	}

	if cfg.GH.Repo == "" {
		return fmt.Errorf("no repository configured; set gh.repo in job.toml or pass --repo")
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

	force, _ := cmd.Flags().GetBool("force")
	if job.GitHubIssueNumber.Valid && !force {
		return fmt.Errorf("job %d already has issue %s (use --force to create another)",
			job.ID, job.GitHubIssueURL)
	}

	client := github.New(log)
	issue, err := client.CreateIssue(ctx, cfg.GH.Repo, job, cfg.GH.DefaultLabels, cfg.GH.AutoAssign)
	if err != nil {
		return err
	}

	if err := s.SetGitHubIssue(ctx, job.ID, cfg.GH.Repo, issue.Number, issue.URL); err != nil {
		log.Warn("issue created but the link was not stored", zap.Error(err))
	}

	fmt.Printf("Created issue #%d: %s\n", issue.Number, issue.URL)
	return nil
}

func runGHComment(cmd *cobra.Command, identifier string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, ghFlagBindings, log)
	if err != nil {
		return err
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

	if !job.GitHubIssueNumber.Valid {
		return fmt.Errorf("job %d has no issue yet; run `job gh issue %d` first", job.ID, job.ID)
	}

	repo := job.GitHubRepo
	if repo == "" {
		repo = cfg.GH.Repo
	}
	if repo == "" {
		return fmt.Errorf("no repository configured; set gh.repo in job.toml or pass --repo")
	}

	assessment, err := s.LatestAssessment(ctx, job.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("job %d has no fit assessment yet; run `job fit %d` first", job.ID, job.ID)
		}
		return err
	}

	number := int(job.GitHubIssueNumber.Int64)
	client := github.New(log)
	if err := client.Comment(ctx, repo, number, github.AssessmentComment(assessment)); err != nil {
		return err
	}

	fmt.Printf("Commented on issue #%d with the latest fit assessment\n", number)
	return nil
}
