package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/xrsl/job/internal/ai"
	"github.com/xrsl/job/internal/logger"
	"go.uber.org/zap"
)

//go:embed prompts/letter.md
var letterPrompt string

var _ ai.Drafter = (*Drafter)(nil)

// Drafter writes application letters via Gemini. The response is plain
// text, not JSON.
type Drafter struct {
	generator contentGenerator
	maxLogLen int
	logger    *zap.Logger
}

// NewDrafter builds a Gemini-backed drafter.
func NewDrafter(generator contentGenerator, maxLogLength int, log *zap.Logger) *Drafter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Drafter{
		generator: generator,
		maxLogLen: maxLogLength,
		logger:    log,
	}
}

// Draft generates an application letter for the posting.
func (d *Drafter) Draft(ctx context.Context, posting *ai.Posting, cv string, extra []string) (*ai.Draft, error) {
	if posting == nil {
		return nil, errors.New("posting is required")
	}
	cv = strings.TrimSpace(cv)
	if cv == "" {
		return nil, errors.New("cv content is required")
	}

	postingJSON, err := json.MarshalIndent(posting, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal posting payload: %w", err)
	}

	instructions := "none"
	if len(extra) > 0 {
		instructions = strings.Join(extra, "; ")
	}

	prompt := strings.ReplaceAll(letterPrompt, "{{POSTING_JSON}}", string(postingJSON))
	prompt = strings.ReplaceAll(prompt, "{{CV}}", cv)
	prompt = strings.ReplaceAll(prompt, "{{EXTRA}}", instructions)

	d.logger.Debug("gemini draft request",
		zap.String("title", posting.Title),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, d.maxLogLen)),
	)

	raw, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	letter := strings.TrimSpace(raw)
	if letter == "" {
		return nil, errors.New("gemini returned an empty letter")
	}

	return &ai.Draft{
		Letter: letter,
		Model:  d.generator.Model(),
		Raw:    raw,
	}, nil
}
