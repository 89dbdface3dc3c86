// Package expertise asks a language model for a tutor's structured expertise and validates
// the answer. Any failure degrades to the empty expertise; callers never see an error.
package expertise

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// DefaultTextBudget is the number of runes of input text sent to the model.
const DefaultTextBudget = 8000

//go:embed prompt.tmpl
var promptText string

var promptTemplate = template.Must(template.New("expertise").Parse(promptText))

// Generator returns the raw JSON text a model produced for prompt; *llm.Client implements it.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Extractor turns free text into models.Expertise.
type Extractor struct {
	gen         Generator
	budget      int
	maxKeywords int
	logger      *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for degraded extractions.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithTextBudget overrides DefaultTextBudget.
func WithTextBudget(runes int) Option {
	return func(e *Extractor) {
		if runes > 0 {
			e.budget = runes
		}
	}
}

// WithMaxKeywords sets the keyword limit stated in the prompt.
func WithMaxKeywords(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxKeywords = n
		}
	}
}

// New returns an Extractor. A nil gen makes every extraction degrade.
func New(gen Generator, opts ...Option) *Extractor {
	e := &Extractor{gen: gen, budget: DefaultTextBudget, maxKeywords: 20}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrNop(e.logger)
	return e
}

// Extract returns the expertise found in text, or the empty expertise when the text is blank,
// the model call fails, or the answer does not validate.
func (e *Extractor) Extract(ctx context.Context, text string) models.Expertise {
	exp, err := e.extract(ctx, text)
	if err != nil {
		e.logger.Debug("expertise degraded", zap.Error(err))
		return models.EmptyExpertise()
	}
	return exp
}

func (e *Extractor) extract(ctx context.Context, text string) (models.Expertise, error) {
	text = strings.TrimSpace(utils.Clip(text, e.budget))
	if text == "" {
		return models.EmptyExpertise(), fmt.Errorf("empty input text")
	}
	if e.gen == nil {
		return models.EmptyExpertise(), fmt.Errorf("no generator configured")
	}

	prompt, err := buildPrompt(text, e.maxKeywords)
	if err != nil {
		return models.EmptyExpertise(), err
	}
	raw, err := e.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		return models.EmptyExpertise(), fmt.Errorf("generate: %w", err)
	}
	exp, err := Parse(raw)
	if err != nil {
		return models.EmptyExpertise(), fmt.Errorf("%w (response %q)", err, utils.TruncateForLog(raw, 200))
	}
	return exp, nil
}

func buildPrompt(text string, maxKeywords int) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, struct {
		Text        string
		MaxKeywords int
	}{text, maxKeywords})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
