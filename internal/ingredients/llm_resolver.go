package ingredients

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"planifia/internal/llm"
	"planifia/internal/shared"
)

//go:embed prompt.md
var promptText string

var promptTemplate = template.Must(template.New("ingredients").Parse(promptText))

const (
	agentName      = "IngredientResolver"
	maxIngredients = 15
)

type promptData struct {
	DishName       string
	MaxIngredients int
}

type rawLLMResult struct {
	Ingredients []string `json:"ingredients"`
}

// MetricsRecorder stores token usage of each model call.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// LLMResolver asks a language model for the ingredients of a dish.
type LLMResolver struct {
	textGen llm.TextGenerator
	metrics MetricsRecorder
	logger  *zap.Logger
}

// NewLLMResolver creates a resolver backed by textGen. metrics may be nil.
func NewLLMResolver(textGen llm.TextGenerator, metrics MetricsRecorder, logger *zap.Logger) *LLMResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMResolver{textGen: textGen, metrics: metrics, logger: logger}
}

// Resolve builds the prompt, calls the model and parses its JSON answer.
func (r *LLMResolver) Resolve(ctx context.Context, dishName string) ([]string, error) {
	start := time.Now()
	prompt, err := buildPrompt(promptData{
		DishName:       strings.TrimSpace(dishName),
		MaxIngredients: maxIngredients,
	})
	if err != nil {
		return nil, err
	}

	resp, err := r.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ingredients for %q: %w", dishName, err)
	}
	r.record(ctx, shared.AgentMeta{
		AgentName: agentName,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	})

	names, err := parseResponse(resp.Content)
	if err != nil {
		return nil, err
	}
	if len(names) > maxIngredients {
		names = names[:maxIngredients]
	}
	return names, nil
}

func (r *LLMResolver) record(ctx context.Context, meta shared.AgentMeta) {
	if r.metrics == nil {
		return
	}
	if err := r.metrics.RecordMeta(ctx, meta); err != nil {
		r.logger.Warn("failed to record resolver metrics", zap.Error(err))
	}
}

func buildPrompt(data promptData) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render ingredient prompt: %w", err)
	}
	return buf.String(), nil
}

// parseResponse accepts the JSON object, optionally wrapped in a markdown
// code fence.
func parseResponse(content string) ([]string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	raw := rawLLMResult{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ingredient response %w. Response: %s", err, content)
	}
	return clean(raw.Ingredients), nil
}
