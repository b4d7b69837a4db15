package github

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/xrsl/job/internal/store"
)

func testJob() *store.Job {
	return &store.Job{
		ID:      1,
		Title:   "Senior Go Engineer",
		Company: "Acme",
		URL:     "https://acme.example/jobs/1",
		FullAd:  "We build distributed systems in Go.",
	}
}

func stubClient(fn runner) *Client {
	c := New(nil)
	c.run = fn
	return c
}

func TestCreateIssue(t *testing.T) {
	var gotArgs []string
	var body string

	c := stubClient(func(ctx context.Context, args ...string) ([]byte, error) {
		gotArgs = args
		for i, arg := range args {
			if arg == "--body-file" && i+1 < len(args) {
				raw, err := os.ReadFile(args[i+1])
				if err != nil {
					t.Fatalf("reading body file: %v", err)
				}
				body = string(raw)
			}
		}
		return []byte("https://github.com/octocat/job-hunt/issues/12\n"), nil
	})

	issue, err := c.CreateIssue(context.Background(), "octocat/job-hunt", testJob(),
		[]string{"job", "go"}, true)
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	if issue.Number != 12 {
		t.Errorf("Number = %d, want 12", issue.Number)
	}
	if issue.URL != "https://github.com/octocat/job-hunt/issues/12" {
		t.Errorf("URL = %q", issue.URL)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{
		"issue create",
		"--repo octocat/job-hunt",
		"--title Senior Go Engineer @ Acme",
		"--label job",
		"--label go",
		"--assignee @me",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %v", want, gotArgs)
		}
	}

	for _, want := range []string{
		"**Company:** Acme",
		"**Location:** N/A",
		"**Job Posting:** https://acme.example/jobs/1",
		"We build distributed systems in Go.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("issue body missing %q", want)
		}
	}
}

func TestCreateIssueWithoutRepo(t *testing.T) {
	c := stubClient(func(ctx context.Context, args ...string) ([]byte, error) {
		t.Fatal("gh must not run without a repo")
		return nil, nil
	})

	if _, err := c.CreateIssue(context.Background(), "  ", testJob(), nil, false); err == nil {
		t.Error("CreateIssue accepted an empty repo")
	}
}

func TestCreateIssueGHFailure(t *testing.T) {
	wantErr := errors.New("gh issue: not logged in")
	c := stubClient(func(ctx context.Context, args ...string) ([]byte, error) {
		return nil, wantErr
	})

	if _, err := c.CreateIssue(context.Background(), "octocat/job-hunt", testJob(), nil, false); !errors.Is(err, wantErr) {
		t.Errorf("CreateIssue error = %v, want %v", err, wantErr)
	}
}

func TestCreateIssueUnparseableOutput(t *testing.T) {
	c := stubClient(func(ctx context.Context, args ...string) ([]byte, error) {
		return []byte("something unexpected"), nil
	})

	if _, err := c.CreateIssue(context.Background(), "octocat/job-hunt", testJob(), nil, false); err == nil {
		t.Error("CreateIssue parsed an issue number from garbage")
	}
}

func TestComment(t *testing.T) {
	var gotArgs []string
	c := stubClient(func(ctx context.Context, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	})

	if err := c.Comment(context.Background(), "octocat/job-hunt", 12, "FIT (score 0.85)"); err != nil {
		t.Fatalf("Comment: %v", err)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"issue comment 12", "--repo octocat/job-hunt", "--body FIT (score 0.85)"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %v", want, gotArgs)
		}
	}
}

func TestAssessmentComment(t *testing.T) {
	body := AssessmentComment(&store.Assessment{
		Fit:    true,
		Score:  0.85,
		Reason: "strong overlap",
		Model:  "gemini-2.5-flash",
	})

	for _, want := range []string{
		"## Fit Assessment",
		"**Verdict:** FIT",
		"**Score:** 0.85",
		"**Model:** gemini-2.5-flash",
		"strong overlap",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("comment body missing %q:\n%s", want, body)
		}
	}

	noFit := AssessmentComment(&store.Assessment{Fit: false, Score: 0.2})
	if !strings.Contains(noFit, "**Verdict:** NO FIT") {
		t.Errorf("comment body missing the NO FIT verdict:\n%s", noFit)
	}
	if strings.Contains(noFit, "\n\n\n") {
		t.Error("empty reason left a trailing blank block")
	}
}

func TestIssueNumber(t *testing.T) {
	cases := []struct {
		url     string
		want    int
		wantErr bool
	}{
		{"https://github.com/o/r/issues/42", 42, false},
		{"https://github.com/o/r/issues/", 0, true},
		{"no-slash", 0, true},
		{"https://github.com/o/r/issues/abc", 0, true},
	}

	for _, tc := range cases {
		got, err := issueNumber(tc.url)
		if tc.wantErr {
			if err == nil {
				t.Errorf("issueNumber(%q) succeeded, want error", tc.url)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("issueNumber(%q) = %d, %v, want %d", tc.url, got, err, tc.want)
		}
	}
}
