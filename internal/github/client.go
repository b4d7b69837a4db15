// Package github mirrors stored jobs to GitHub issues through the gh CLI,
// which handles authentication and API plumbing.
package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/xrsl/job/internal/store"
	"go.uber.org/zap"
)

// runner executes the gh binary; tests substitute a stub.
type runner func(ctx context.Context, args ...string) ([]byte, error)

// Client shells out to the gh CLI.
type Client struct {
	run    runner
	logger *zap.Logger
}

// New builds a client using the gh binary from PATH.
func New(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		run: func(ctx context.Context, args ...string) ([]byte, error) {
			out, err := exec.CommandContext(ctx, "gh", args...).Output()
			if err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
					return nil, fmt.Errorf("gh %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
				}
				return nil, fmt.Errorf("gh %s: %w", args[0], err)
			}
			return out, nil
		},
		logger: logger,
	}
}

// Issue is a created GitHub issue.
type Issue struct {
	Number int
	URL    string
}

// CreateIssue opens an issue for the job in the given repo and returns its
// number and URL. The body goes through a temp file so arbitrary posting
// text never hits the argument list.
func (c *Client) CreateIssue(ctx context.Context, repo string, job *store.Job, labels []string, autoAssign bool) (*Issue, error) {
	if strings.TrimSpace(repo) == "" {
		return nil, fmt.Errorf("repository is required")
	}

	body := issueBody(job)

	bodyFile, err := os.CreateTemp("", "job-issue-*.md")
	if err != nil {
		return nil, fmt.Errorf("creating issue body file: %w", err)
	}
	defer os.Remove(bodyFile.Name())

	if _, err := bodyFile.WriteString(body); err != nil {
		bodyFile.Close()
		return nil, fmt.Errorf("writing issue body: %w", err)
	}
	bodyFile.Close()

	title := job.Title
	if job.Company != "" {
		title = fmt.Sprintf("%s @ %s", job.Title, job.Company)
	}

	args := []string{
		"issue", "create",
		"--repo", repo,
		"--title", title,
		"--body-file", bodyFile.Name(),
	}
	for _, label := range labels {
		args = append(args, "--label", label)
	}
	if autoAssign {
		args = append(args, "--assignee", "@me")
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	// gh prints the issue URL on the last line.
	url := lastLine(string(out))
	number, err := issueNumber(url)
	if err != nil {
		return nil, err
	}

	c.logger.Info("created github issue",
		zap.String("repo", repo),
		zap.Int("number", number),
		zap.String("url", url),
	)

	return &Issue{Number: number, URL: url}, nil
}

// AssessmentComment renders a fit verdict as issue comment markdown.
func AssessmentComment(a *store.Assessment) string {
	verdict := "NO FIT"
	if a.Fit {
		verdict = "FIT"
	}

	body := fmt.Sprintf(`## Fit Assessment

**Verdict:** %s
**Score:** %.2f
**Model:** %s`, verdict, a.Score, a.Model)

	if strings.TrimSpace(a.Reason) != "" {
		body += "\n\n" + a.Reason
	}
	return body
}

// Comment adds a comment, used to mirror fit assessments onto an issue.
func (c *Client) Comment(ctx context.Context, repo string, number int, body string) error {
	_, err := c.run(ctx,
		"issue", "comment", strconv.Itoa(number),
		"--repo", repo,
		"--body", body,
	)
	return err
}

func issueBody(job *store.Job) string {
	orNA := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "N/A"
		}
		return s
	}

	return fmt.Sprintf(`**Company:** %s
**Location:** %s
**Department:** %s
**Deadline:** %s
**Hiring Manager:** %s

**Job Posting:** %s

---

## Full Job Description

%s
`,
		orNA(job.Company), orNA(job.Location), orNA(job.Department),
		orNA(job.Deadline), orNA(job.HiringManager), job.URL, job.FullAd)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func issueNumber(url string) (int, error) {
	idx := strings.LastIndex(url, "/")
	if idx < 0 || idx == len(url)-1 {
		return 0, fmt.Errorf("unexpected gh output: %q", url)
	}
	number, err := strconv.Atoi(url[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("unexpected gh output: %q", url)
	}
	return number, nil
}
