// Package ai defines the model-facing interfaces of the job CLI. Providers
// live in subpackages; callers depend only on these types.
package ai

import "context"

// Posting is the structured form of a job ad extracted from raw page text.
type Posting struct {
	Title         string `json:"title"`
	Company       string `json:"company"`
	Location      string `json:"location"`
	Department    string `json:"department"`
	Deadline      string `json:"deadline"`
	HiringManager string `json:"hiring_manager"`
	FullAd        string `json:"full_ad"`
}

// FitAssessment is the model's judgement of how well a CV matches a posting.
type FitAssessment struct {
	Fit    bool
	Score  float64
	Reason string
	Model  string
	Raw    string
}

// Draft is a generated application document.
type Draft struct {
	Letter string
	Model  string
	Raw    string
}

// Extractor turns raw career page text into a structured posting.
type Extractor interface {
	Extract(ctx context.Context, pageText string) (*Posting, error)
}

// Assessor evaluates a posting against a CV and optional extra criteria.
type Assessor interface {
	Assess(ctx context.Context, posting *Posting, cv string, extra []string) (*FitAssessment, error)
}

// Drafter writes an application letter for a posting.
type Drafter interface {
	Draft(ctx context.Context, posting *Posting, cv string, extra []string) (*Draft, error)
}
