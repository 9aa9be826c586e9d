package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/myrontuttle/storytime/internal/core"
)

const providerGemini = "gemini"

// GeminiClient generates text with the Google GenAI SDK.
type GeminiClient struct {
	settings
	client *genai.Client
}

// NewGeminiClient creates a Gemini text generator. Without an API key the
// client is still returned, and every call fails with core.ErrNoAPIKey.
func NewGeminiClient(ctx context.Context, apiKey string, opts ...Option) (*GeminiClient, error) {
	g := &GeminiClient{
		settings: newSettings("gemini_client", "", "gemini-2.0-flash", opts),
	}
	if apiKey == "" {
		return g, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	g.client = client

	g.logger.Debug("Gemini client initialized",
		"model", g.model,
		"max_retries", g.retry.MaxRetries)

	return g, nil
}

func (g *GeminiClient) Model() string {
	return g.model
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string, params TextParams) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("%s: %w", providerGemini, core.ErrNoAPIKey)
	}

	requestID := fmt.Sprintf("%s_%d", providerGemini, time.Now().UnixNano())
	if params.MaxTokens < minCompletionTokens {
		params.MaxTokens = minCompletionTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(params.Temperature)),
		TopP:            genai.Ptr(float32(params.TopP)),
		MaxOutputTokens: int32(params.MaxTokens),
	}

	var text string
	err := core.Retry(ctx, g.retry, g.logger, "gemini completion", func(ctx context.Context) error {
		if err := g.wait(ctx, requestID); err != nil {
			return err
		}

		resp, err := g.client.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
			config)
		if err != nil {
			g.logger.Error("Gemini request failed",
				"request_id", requestID,
				"error", err)
			return classifyGeminiError(err)
		}

		text = resp.Text()
		if resp.UsageMetadata != nil {
			g.logger.Info("Gemini request completed",
				"request_id", requestID,
				"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
				"completion_tokens", resp.UsageMetadata.CandidatesTokenCount,
				"total_tokens", resp.UsageMetadata.TotalTokenCount)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// classifyGeminiError converts SDK errors into *core.APIError so the retry
// loop treats them like any other provider's.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &core.APIError{Provider: providerGemini, Status: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &core.APIError{Provider: providerGemini, Status: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return err
}
