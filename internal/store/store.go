// Package store persists jobs, fit assessments and application drafts in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    company TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    department TEXT NOT NULL DEFAULT '',
    deadline TEXT NOT NULL DEFAULT '',
    hiring_manager TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL UNIQUE,
    full_ad TEXT NOT NULL DEFAULT '',
    github_repo TEXT NOT NULL DEFAULT '',
    github_issue_number INTEGER,
    github_issue_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fit_assessments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id INTEGER NOT NULL,
    fit BOOLEAN NOT NULL,
    score REAL NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    model TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS app_drafts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id INTEGER NOT NULL,
    letter TEXT NOT NULL,
    model TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_fit_job ON fit_assessments(job_id);
CREATE INDEX IF NOT EXISTS idx_draft_job ON app_drafts(job_id);
`

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Job is one stored job posting.
type Job struct {
	ID                int64
	Title             string
	Company           string
	Location          string
	Department        string
	Deadline          string
	HiringManager     string
	URL               string
	FullAd            string
	GitHubRepo        string
	GitHubIssueNumber sql.NullInt64
	GitHubIssueURL    string
	CreatedAt         time.Time
}

// Assessment is one stored fit verdict.
type Assessment struct {
	ID        int64
	JobID     int64
	Fit       bool
	Score     float64
	Reason    string
	Model     string
	CreatedAt time.Time
}

// Draft is one stored application letter.
type Draft struct {
	ID        int64
	JobID     int64
	Letter    string
	Model     string
	CreatedAt time.Time
}

// Stats summarizes database contents.
type Stats struct {
	Jobs        int
	Assessments int
	Drafts      int
}

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath resolves the database location: JOB_DB_PATH, then the XDG
// data directory. The parent directory is created when missing.
func DefaultPath() (string, error) {
	if path := os.Getenv("JOB_DB_PATH"); path != "" {
		return path, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	dir := filepath.Join(dataHome, "job")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	return filepath.Join(dir, "jobs.db"), nil
}

// Open opens or creates the database at path and bootstraps the schema.
// Pragmas go through the DSN so every pooled connection gets them.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// AddJob inserts a job and returns its id. A job with the same URL already
// stored is an error; postings are keyed by URL.
func (s *Store) AddJob(ctx context.Context, job *Job) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (title, company, location, department, deadline, hiring_manager, url, full_ad)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.Title, job.Company, job.Location, job.Department,
		job.Deadline, job.HiringManager, job.URL, job.FullAd,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting job: %w", err)
	}
	return res.LastInsertId()
}

const jobColumns = `id, title, company, location, department, deadline, hiring_manager,
	url, full_ad, github_repo, github_issue_number, github_issue_url, created_at`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var job Job
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Location, &job.Department,
		&job.Deadline, &job.HiringManager, &job.URL, &job.FullAd,
		&job.GitHubRepo, &job.GitHubIssueNumber, &job.GitHubIssueURL, &job.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob returns a job by id.
func (s *Store) GetJob(ctx context.Context, id int64) (*Job, error) {
	return scanJob(s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
}

// GetJobByURL returns a job by its posting URL.
func (s *Store) GetJobByURL(ctx context.Context, url string) (*Job, error) {
	return scanJob(s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE url = ?`, url))
}

// ListJobs returns all jobs, newest first.
func (s *Store) ListJobs(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// DeleteJob removes a job and its dependent rows.
func (s *Store) DeleteJob(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetGitHubIssue records where the job was mirrored.
func (s *Store) SetGitHubIssue(ctx context.Context, jobID int64, repo string, number int, url string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET github_repo = ?, github_issue_number = ?, github_issue_url = ?
		WHERE id = ?`, repo, number, url, jobID)
	if err != nil {
		return fmt.Errorf("updating github issue for job %d: %w", jobID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const assessmentColumns = `id, job_id, fit, score, reason, model, created_at`

func scanAssessment(row interface{ Scan(...any) error }) (*Assessment, error) {
	var a Assessment
	err := row.Scan(&a.ID, &a.JobID, &a.Fit, &a.Score, &a.Reason, &a.Model, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// LatestAssessment returns the newest fit verdict stored for the job.
func (s *Store) LatestAssessment(ctx context.Context, jobID int64) (*Assessment, error) {
	return scanAssessment(s.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM fit_assessments WHERE job_id = ? ORDER BY id DESC LIMIT 1`, jobID))
}

// ListAssessments returns every fit verdict for the job, newest first.
func (s *Store) ListAssessments(ctx context.Context, jobID int64) ([]*Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assessmentColumns+` FROM fit_assessments WHERE job_id = ? ORDER BY id DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

// ListDrafts returns every application letter stored for the job, newest
// first.
func (s *Store) ListDrafts(ctx context.Context, jobID int64) ([]*Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, letter, model, created_at FROM app_drafts WHERE job_id = ? ORDER BY id DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.JobID, &d.Letter, &d.Model, &d.CreatedAt); err != nil {
			return nil, err
		}
		drafts = append(drafts, &d)
	}
	return drafts, rows.Err()
}

// SaveAssessment stores a fit verdict for a job.
func (s *Store) SaveAssessment(ctx context.Context, a *Assessment) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO fit_assessments (job_id, fit, score, reason, model)
		VALUES (?, ?, ?, ?, ?)`,
		a.JobID, a.Fit, a.Score, a.Reason, a.Model,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting assessment: %w", err)
	}
	return res.LastInsertId()
}

// SaveDraft stores an application letter for a job.
func (s *Store) SaveDraft(ctx context.Context, d *Draft) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO app_drafts (job_id, letter, model)
		VALUES (?, ?, ?)`,
		d.JobID, d.Letter, d.Model,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting draft: %w", err)
	}
	return res.LastInsertId()
}

// Stats returns row counts per table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	for _, q := range []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM jobs`, &stats.Jobs},
		{`SELECT COUNT(*) FROM fit_assessments`, &stats.Assessments},
		{`SELECT COUNT(*) FROM app_drafts`, &stats.Drafts},
	} {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("counting rows: %w", err)
		}
	}
	return stats, nil
}
