package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xrsl/job/internal/ai"
)

// stubGenerator returns canned responses and records prompts.
type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string { return "stub-model" }

func samplePosting() *ai.Posting {
	return &ai.Posting{
		Title:   "Senior Go Engineer",
		Company: "Acme",
		FullAd:  "We build distributed systems in Go.",
	}
}

func TestExtractorExtract(t *testing.T) {
	stub := &stubGenerator{response: `{
		"title": "Senior Go Engineer",
		"company": "Acme",
		"location": "Berlin",
		"deadline": "2026-09-30"
	}`}

	posting, err := NewExtractor(stub, 0, nil).Extract(context.Background(), "some page text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if posting.Title != "Senior Go Engineer" {
		t.Errorf("Title = %q", posting.Title)
	}
	if posting.Company != "Acme" {
		t.Errorf("Company = %q", posting.Company)
	}

	if len(stub.prompts) != 1 || !strings.Contains(stub.prompts[0], "some page text") {
		t.Error("prompt does not embed the page text")
	}
}

func TestExtractorFencedResponse(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"title\": \"DevOps Engineer\"}\n```"}

	posting, err := NewExtractor(stub, 0, nil).Extract(context.Background(), "page")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if posting.Title != "DevOps Engineer" {
		t.Errorf("Title = %q", posting.Title)
	}
}

func TestExtractorErrors(t *testing.T) {
	cases := []struct {
		name string
		stub *stubGenerator
		text string
	}{
		{"empty page text", &stubGenerator{response: "{}"}, "   "},
		{"generator failure", &stubGenerator{err: errors.New("quota exceeded")}, "page"},
		{"non-json response", &stubGenerator{response: "sorry, I cannot do that"}, "page"},
		{"missing title", &stubGenerator{response: `{"company": "Acme"}`}, "page"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewExtractor(tc.stub, 0, nil).Extract(context.Background(), tc.text); err == nil {
				t.Error("Extract succeeded, want error")
			}
		})
	}
}

func TestAssessorAssess(t *testing.T) {
	stub := &stubGenerator{response: `{"fit": true, "score": 0.85, "reason": "strong overlap"}`}

	assessment, err := NewAssessor(stub, 0, nil).Assess(context.Background(),
		samplePosting(), "ten years of Go", []string{"prefer remote roles"})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if !assessment.Fit {
		t.Error("Fit = false")
	}
	if assessment.Score != 0.85 {
		t.Errorf("Score = %v", assessment.Score)
	}
	if assessment.Reason != "strong overlap" {
		t.Errorf("Reason = %q", assessment.Reason)
	}
	if assessment.Model != "stub-model" {
		t.Errorf("Model = %q", assessment.Model)
	}

	prompt := stub.prompts[0]
	for _, want := range []string{"Senior Go Engineer", "ten years of Go", "prefer remote roles"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAssessorCoercesSloppyVerdicts(t *testing.T) {
	cases := []struct {
		name     string
		response string
		wantFit  bool
		wantScr  float64
	}{
		{"stringly typed", `{"fit": "yes", "score": "0.5", "reason": "ok"}`, true, 0.5},
		{"numeric fit", `{"fit": 1, "score": 0.9}`, true, 0.9},
		{"missing score", `{"fit": false, "reason": "junior role"}`, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubGenerator{response: tc.response}
			assessment, err := NewAssessor(stub, 0, nil).Assess(context.Background(), samplePosting(), "cv", nil)
			if err != nil {
				t.Fatalf("Assess: %v", err)
			}
			if assessment.Fit != tc.wantFit {
				t.Errorf("Fit = %v, want %v", assessment.Fit, tc.wantFit)
			}
			if assessment.Score != tc.wantScr {
				t.Errorf("Score = %v, want %v", assessment.Score, tc.wantScr)
			}
		})
	}
}

func TestAssessorRequiresInput(t *testing.T) {
	stub := &stubGenerator{response: `{"fit": true, "score": 1}`}
	a := NewAssessor(stub, 0, nil)

	if _, err := a.Assess(context.Background(), nil, "cv", nil); err == nil {
		t.Error("Assess accepted a nil posting")
	}
	if _, err := a.Assess(context.Background(), samplePosting(), "  ", nil); err == nil {
		t.Error("Assess accepted an empty cv")
	}
}

func TestDrafterDraft(t *testing.T) {
	stub := &stubGenerator{response: "Dear hiring team,\n\nI would love to join Acme.\n"}

	draft, err := NewDrafter(stub, 0, nil).Draft(context.Background(),
		samplePosting(), "my cv", []string{"keep it short"})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}

	if !strings.HasPrefix(draft.Letter, "Dear hiring team") {
		t.Errorf("Letter = %q", draft.Letter)
	}
	if draft.Model != "stub-model" {
		t.Errorf("Model = %q", draft.Model)
	}
	if !strings.Contains(stub.prompts[0], "keep it short") {
		t.Error("prompt missing the extra instruction")
	}
}

func TestDrafterEmptyLetter(t *testing.T) {
	stub := &stubGenerator{response: "   \n  "}
	if _, err := NewDrafter(stub, 0, nil).Draft(context.Background(), samplePosting(), "cv", nil); err == nil {
		t.Error("Draft succeeded on an empty response")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.in); got != tc.want {
				t.Errorf("extractJSON = %q, want %q", got, tc.want)
			}
		})
	}
}
