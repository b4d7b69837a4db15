package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored jobs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id|url>",
	Short: "Show a stored job with its assessments and drafts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, args[0])
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id|url>",
	Short: "Remove a stored job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemove(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(rmCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, nil, log)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	jobs, err := s.ListJobs(cmd.Context())
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs stored yet. Use `job add <url>` to store one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tISSUE\tURL")
	for _, j := range jobs {
		issue := "-"
		if j.GitHubIssueNumber.Valid {
			issue = fmt.Sprintf("#%d", j.GitHubIssueNumber.Int64)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", j.ID, j.Title, j.Company, issue, j.URL)
	}
	return w.Flush()
}

// jobView is the printable shape of a stored job. The raw ad text is
// omitted; it can run to many kilobytes.
type jobView struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Company       string           `json:"company,omitempty"`
	Location      string           `json:"location,omitempty"`
	Department    string           `json:"department,omitempty"`
	Deadline      string           `json:"deadline,omitempty"`
	HiringManager string           `json:"hiring_manager,omitempty"`
	URL           string           `json:"url"`
	GitHubIssue   string           `json:"github_issue,omitempty"`
	CreatedAt     string           `json:"created_at"`
	Assessments   []assessmentView `json:"assessments,omitempty"`
	Drafts        []draftView      `json:"drafts,omitempty"`
}

type assessmentView struct {
	Fit       bool    `json:"fit"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason,omitempty"`
	Model     string  `json:"model,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type draftView struct {
	Letter    string `json:"letter"`
	Model     string `json:"model,omitempty"`
	CreatedAt string `json:"created_at"`
}

func runShow(cmd *cobra.Command, identifier string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, nil, log)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	job, err := findJob(cmd.Context(), s, identifier)
	if err != nil {
		return fmt.Errorf("job %s: %w", identifier, err)
	}

	view := jobView{
		ID:            job.ID,
		Title:         job.Title,
		Company:       job.Company,
		Location:      job.Location,
		Department:    job.Department,
		Deadline:      job.Deadline,
		HiringManager: job.HiringManager,
		URL:           job.URL,
		CreatedAt:     job.CreatedAt.Format("2006-01-02 15:04"),
	}
	if job.GitHubIssueURL != "" {
		view.GitHubIssue = job.GitHubIssueURL
	}

	assessments, err := s.ListAssessments(cmd.Context(), job.ID)
	if err != nil {
		return err
	}
	for _, a := range assessments {
		view.Assessments = append(view.Assessments, assessmentView{
			Fit:       a.Fit,
			Score:     a.Score,
			Reason:    a.Reason,
			Model:     a.Model,
			CreatedAt: a.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	drafts, err := s.ListDrafts(cmd.Context(), job.ID)
	if err != nil {
		return err
	}
	for _, d := range drafts {
		view.Drafts = append(view.Drafts, draftView{
			Letter:    d.Letter,
			Model:     d.Model,
			CreatedAt: d.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runRemove(cmd *cobra.Command, identifier string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, nil, log)
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

	if err := s.DeleteJob(ctx, job.ID); err != nil {
		return err
	}

	fmt.Printf("Removed job %d: %s @ %s\n", job.ID, job.Title, job.Company)
	return nil
}
