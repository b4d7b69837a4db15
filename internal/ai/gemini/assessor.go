package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/xrsl/job/internal/ai"
	"github.com/xrsl/job/internal/logger"
	"go.uber.org/zap"
)

//go:embed prompts/fit.md
var fitPrompt string

var _ ai.Assessor = (*Assessor)(nil)

// Assessor judges CV/posting fit via Gemini.
type Assessor struct {
	generator contentGenerator
	maxLogLen int
	logger    *zap.Logger
}

// NewAssessor builds a Gemini-backed assessor.
func NewAssessor(generator contentGenerator, maxLogLength int, log *zap.Logger) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Assessor{
		generator: generator,
		maxLogLen: maxLogLength,
		logger:    log,
	}
}

// Assess returns the model's fit verdict for the posting against the CV.
func (a *Assessor) Assess(ctx context.Context, posting *ai.Posting, cv string, extra []string) (*ai.FitAssessment, error) {
	if posting == nil {
		return nil, errors.New("posting is required")
	}
	cv = strings.TrimSpace(cv)
	if cv == "" {
		return nil, errors.New("cv content is required")
	}

	prompt, err := buildAssessPrompt(posting, cv, extra)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini fit request",
		zap.String("title", posting.Title),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini fit response",
		zap.String("title", posting.Title),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	assessment, err := parseAssessment(raw)
	if err != nil {
		return nil, err
	}

	assessment.Model = a.generator.Model()
	return assessment, nil
}

func buildAssessPrompt(posting *ai.Posting, cv string, extra []string) (string, error) {
	postingJSON, err := json.MarshalIndent(posting, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal posting payload: %w", err)
	}

	criteria := "none"
	if len(extra) > 0 {
		criteria = strings.Join(extra, "; ")
	}

	prompt := strings.ReplaceAll(fitPrompt, "{{POSTING_JSON}}", string(postingJSON))
	prompt = strings.ReplaceAll(prompt, "{{CV}}", cv)
	prompt = strings.ReplaceAll(prompt, "{{EXTRA}}", criteria)
	return prompt, nil
}

func parseAssessment(raw string) (*ai.FitAssessment, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini assessment: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.FitAssessment{
		Fit:    coerceBool(data["fit"]),
		Score:  score,
		Reason: coerceString(data["reason"]),
		Raw:    raw,
	}, nil
}
