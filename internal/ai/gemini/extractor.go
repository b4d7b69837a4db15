package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/xrsl/job/internal/ai"
	"github.com/xrsl/job/internal/logger"
	"go.uber.org/zap"
)

// contentGenerator is the slice of Generator the provider types need;
// tests substitute a stub.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompts/extract.md
var extractPrompt string

const defaultMaxLogLength = 512

var _ ai.Extractor = (*Extractor)(nil)

// Extractor turns raw career page text into a structured posting via Gemini.
type Extractor struct {
	generator contentGenerator
	maxLogLen int
	logger    *zap.Logger
}

// NewExtractor builds a Gemini-backed extractor.
func NewExtractor(generator contentGenerator, maxLogLength int, log *zap.Logger) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		generator: generator,
		maxLogLen: maxLogLength,
		logger:    log,
	}
}

// Extract asks the model for the structured posting hidden in the page text.
func (e *Extractor) Extract(ctx context.Context, pageText string) (*ai.Posting, error) {
	pageText = strings.TrimSpace(pageText)
	if pageText == "" {
		return nil, errors.New("page text is empty")
	}

	prompt := strings.ReplaceAll(extractPrompt, "{{PAGE_TEXT}}", pageText)

	e.logger.Debug("gemini extract request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini extract response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	var posting ai.Posting
	if err := json.Unmarshal([]byte(extractJSON(raw)), &posting); err != nil {
		return nil, fmt.Errorf("parse gemini extraction: %w", err)
	}

	if strings.TrimSpace(posting.Title) == "" {
		return nil, errors.New("gemini extraction returned no title")
	}

	return &posting, nil
}
