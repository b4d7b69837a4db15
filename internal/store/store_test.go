package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleJob(url string) *Job {
	return &Job{
		Title:   "Senior Go Engineer",
		Company: "Acme",
		URL:     url,
		FullAd:  "We build distributed systems in Go.",
	}
}

func TestAddAndGetJob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.AddJob(ctx, sampleJob("https://acme.example/jobs/1"))
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	byID, err := s.GetJob(ctx, id)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if byID.Title != "Senior Go Engineer" || byID.Company != "Acme" {
		t.Errorf("GetJob = %+v", byID)
	}
	if byID.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}

	byURL, err := s.GetJobByURL(ctx, "https://acme.example/jobs/1")
	if err != nil {
		t.Fatalf("GetJobByURL: %v", err)
	}
	if byURL.ID != id {
		t.Errorf("GetJobByURL id = %d, want %d", byURL.ID, id)
	}
}

func TestAddJobDuplicateURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.AddJob(ctx, sampleJob("https://acme.example/jobs/1")); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if _, err := s.AddJob(ctx, sampleJob("https://acme.example/jobs/1")); err == nil {
		t.Error("AddJob accepted a duplicate URL")
	}
}

func TestGetJobNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetJob(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetJob error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetJobByURL(context.Background(), "https://nowhere.example"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetJobByURL error = %v, want ErrNotFound", err)
	}
}

func TestListJobsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, _ := s.AddJob(ctx, sampleJob("https://acme.example/jobs/1"))
	second, _ := s.AddJob(ctx, sampleJob("https://acme.example/jobs/2"))

	jobs, err := s.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].ID != second || jobs[1].ID != first {
		t.Errorf("order = [%d %d], want [%d %d]", jobs[0].ID, jobs[1].ID, second, first)
	}
}

func TestDeleteJobCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _ := s.AddJob(ctx, sampleJob("https://acme.example/jobs/1"))
	if _, err := s.SaveAssessment(ctx, &Assessment{JobID: id, Fit: true, Score: 0.8}); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if _, err := s.SaveDraft(ctx, &Draft{JobID: id, Letter: "Dear team"}); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	if err := s.DeleteJob(ctx, id); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Jobs != 0 || stats.Assessments != 0 || stats.Drafts != 0 {
		t.Errorf("Stats after delete = %+v, want all zero", stats)
	}

	if err := s.DeleteJob(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteJob error = %v, want ErrNotFound", err)
	}
}

func TestSetGitHubIssue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _ := s.AddJob(ctx, sampleJob("https://acme.example/jobs/1"))

	if err := s.SetGitHubIssue(ctx, id, "octocat/job-hunt", 7, "https://github.com/octocat/job-hunt/issues/7"); err != nil {
		t.Fatalf("SetGitHubIssue: %v", err)
	}

	job, err := s.GetJob(ctx, id)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if !job.GitHubIssueNumber.Valid || job.GitHubIssueNumber.Int64 != 7 {
		t.Errorf("GitHubIssueNumber = %+v", job.GitHubIssueNumber)
	}
	if job.GitHubRepo != "octocat/job-hunt" {
		t.Errorf("GitHubRepo = %q", job.GitHubRepo)
	}

	if err := s.SetGitHubIssue(ctx, 999, "octocat/job-hunt", 8, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetGitHubIssue on missing job = %v, want ErrNotFound", err)
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _ := s.AddJob(ctx, sampleJob("https://acme.example/jobs/1"))
	s.SaveAssessment(ctx, &Assessment{JobID: id, Fit: false, Score: 0.2})
	s.SaveAssessment(ctx, &Assessment{JobID: id, Fit: true, Score: 0.9})
	s.SaveDraft(ctx, &Draft{JobID: id, Letter: "Dear team"})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Jobs != 1 || stats.Assessments != 2 || stats.Drafts != 1 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestAssessmentReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _ := s.AddJob(ctx, sampleJob("https://acme.example/jobs/1"))

	if _, err := s.LatestAssessment(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestAssessment with no rows = %v, want ErrNotFound", err)
	}

	s.SaveAssessment(ctx, &Assessment{JobID: id, Fit: false, Score: 0.3, Reason: "junior role"})
	s.SaveAssessment(ctx, &Assessment{JobID: id, Fit: true, Score: 0.9, Reason: "strong overlap", Model: "gemini-2.5-flash"})

	latest, err := s.LatestAssessment(ctx, id)
	if err != nil {
		t.Fatalf("LatestAssessment: %v", err)
	}
	if !latest.Fit || latest.Score != 0.9 || latest.Reason != "strong overlap" {
		t.Errorf("LatestAssessment = %+v, want the newest row", latest)
	}
	if latest.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}

	all, err := s.ListAssessments(ctx, id)
	if err != nil {
		t.Fatalf("ListAssessments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d assessments, want 2", len(all))
	}
	if !all[0].Fit || all[1].Fit {
		t.Errorf("order = [%v %v], want newest first", all[0].Fit, all[1].Fit)
	}
}

func TestDraftReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _ := s.AddJob(ctx, sampleJob("https://acme.example/jobs/1"))

	drafts, err := s.ListDrafts(ctx, id)
	if err != nil {
		t.Fatalf("ListDrafts: %v", err)
	}
	if len(drafts) != 0 {
		t.Errorf("got %d drafts before saving any", len(drafts))
	}

	s.SaveDraft(ctx, &Draft{JobID: id, Letter: "first", Model: "gemini-2.5-flash"})
	s.SaveDraft(ctx, &Draft{JobID: id, Letter: "second", Model: "gemini-2.5-flash"})

	drafts, err = s.ListDrafts(ctx, id)
	if err != nil {
		t.Fatalf("ListDrafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("got %d drafts, want 2", len(drafts))
	}
	if drafts[0].Letter != "second" || drafts[1].Letter != "first" {
		t.Errorf("order = [%q %q], want newest first", drafts[0].Letter, drafts[1].Letter)
	}
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv("JOB_DB_PATH", "/tmp/custom.db")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if path != "/tmp/custom.db" {
		t.Errorf("DefaultPath = %q", path)
	}
}

func TestDefaultPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JOB_DB_PATH", "")
	t.Setenv("XDG_DATA_HOME", dir)

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if want := filepath.Join(dir, "job", "jobs.db"); path != want {
		t.Errorf("DefaultPath = %q, want %q", path, want)
	}
}
