package agent

import (
	"context"
	"log/slog"
)

// MaxTokens is the completion budget a scene part prompt is measured
// against.
const MaxTokens = 4000

// TextParams are the sampling parameters for a single completion.
type TextParams struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// DefaultTextParams returns temperature 0.7, top_p 1 and MaxTokens.
func DefaultTextParams() TextParams {
	return TextParams{
		Temperature: 0.7,
		MaxTokens:   MaxTokens,
		TopP:        1,
	}
}

// WithMaxTokens returns p with a different completion budget.
func (p TextParams) WithMaxTokens(n int) TextParams {
	p.MaxTokens = n
	return p
}

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, params TextParams) (string, error)
}

type ImageGenerator interface {
	// GenerateImage returns a URL the illustration can be downloaded from.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Model is implemented by generators that can name the model behind them,
// which stories record as their author and illustrator.
type Model interface {
	Model() string
}

// ModelName returns g's model name, or "unknown".
func ModelName(g any) string {
	if m, ok := g.(Model); ok && m.Model() != "" {
		return m.Model()
	}
	return "unknown"
}

// Generate calls gen and degrades any failure to an empty string. Story
// generation keeps going with blank text rather than aborting.
func Generate(ctx context.Context, gen TextGenerator, logger *slog.Logger, prompt string, params TextParams) string {
	if logger == nil {
		logger = slog.Default().With("component", "agent")
	}
	if gen == nil {
		logger.Error("no text generator configured")
		return ""
	}
	text, err := gen.GenerateText(ctx, prompt, params)
	if err != nil {
		logger.Error("text generation failed",
			"prompt_length", len(prompt),
			"max_tokens", params.MaxTokens,
			"error", err)
		return ""
	}
	return text
}

// Illustrate calls gen and degrades any failure to an empty URL.
func Illustrate(ctx context.Context, gen ImageGenerator, logger *slog.Logger, prompt string) string {
	if logger == nil {
		logger = slog.Default().With("component", "agent")
	}
	if gen == nil {
		logger.Error("no image generator configured")
		return ""
	}
	url, err := gen.GenerateImage(ctx, prompt)
	if err != nil {
		logger.Error("image generation failed",
			"prompt_length", len(prompt),
			"error", err)
		return ""
	}
	return url
}
