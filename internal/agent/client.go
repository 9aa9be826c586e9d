package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/myrontuttle/storytime/internal/core"
)

const (
	APITypeOpenAI    = "openai"
	APITypeAnthropic = "anthropic"

	minCompletionTokens = 64
)

// settings are shared by every remote generator.
type settings struct {
	baseURL    string
	model      string
	httpClient *http.Client
	retry      core.RetryPolicy
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type Option func(*settings)

// WithRetry sets the backoff policy applied to retryable failures.
func WithRetry(policy core.RetryPolicy) Option {
	return func(s *settings) {
		s.retry = policy
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		// Preserve existing transport if any
		transport := s.httpClient.Transport
		s.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}
	}
}

func WithRateLimit(requestsPerMinute int, burst int) Option {
	return func(s *settings) {
		s.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

// WithAPIConfig overrides the endpoint and model. Empty values keep the
// provider defaults.
func WithAPIConfig(baseURL, model string) Option {
	return func(s *settings) {
		if baseURL != "" {
			s.baseURL = baseURL
		}
		if model != "" {
			s.model = model
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

func newSettings(component, baseURL, model string, opts []Option) settings {
	// Configure transport with connection pooling
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	s := settings{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: transport,
		},
		retry:   core.DefaultRetryPolicy(),
		limiter: rate.NewLimiter(rate.Limit(1), 1), // Default: 60 req/min
		logger:  slog.Default().With("component", component),
	}

	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// wait blocks until the rate limiter admits another request.
func (s *settings) wait(ctx context.Context, requestID string) error {
	start := time.Now()
	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Error("rate limit wait failed",
			"request_id", requestID,
			"error", err)
		return fmt.Errorf("rate limit wait failed: %w", err)
	}
	s.logger.Debug("rate limit passed",
		"request_id", requestID,
		"wait_duration_ms", time.Since(start).Milliseconds(),
		"limit_per_second", s.limiter.Limit(),
		"burst_capacity", s.limiter.Burst())
	return nil
}

// postJSON sends body to url and returns the response body of a 200 reply.
// Any other status becomes a *core.APIError.
func (s *settings) postJSON(ctx context.Context, provider, url string, body any, headers map[string]string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpStart := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	s.logger.Debug("HTTP response received",
		"provider", provider,
		"status_code", resp.StatusCode,
		"body_size", len(respBody),
		"duration_ms", time.Since(httpStart).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return nil, &core.APIError{Provider: provider, Status: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// Client generates text through the OpenAI chat completions API (or any
// compatible endpoint) or the Anthropic messages API.
type Client struct {
	settings
	apiKey  string
	apiType string
}

func NewClient(apiType, apiKey string, opts ...Option) *Client {
	baseURL, model := "https://api.openai.com/v1", "gpt-4o-mini"
	if apiType == APITypeAnthropic {
		baseURL, model = "https://api.anthropic.com/v1", "claude-3-5-haiku-latest"
	} else {
		apiType = APITypeOpenAI
	}

	c := &Client{
		settings: newSettings("ai_client", baseURL, model, opts),
		apiKey:   apiKey,
		apiType:  apiType,
	}

	c.logger.Debug("AI client initialized",
		"api_type", c.apiType,
		"base_url", c.baseURL,
		"model", c.model,
		"max_retries", c.retry.MaxRetries,
		"rate_limit", fmt.Sprintf("%v req/s", c.limiter.Limit()))

	return c
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) GenerateText(ctx context.Context, prompt string, params TextParams) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%s: %w", c.apiType, core.ErrNoAPIKey)
	}

	requestID := fmt.Sprintf("%s_%d", c.apiType, time.Now().UnixNano())
	startTime := time.Now()

	if params.MaxTokens < minCompletionTokens {
		c.logger.Warn("prompt leaves little room for a completion",
			"request_id", requestID,
			"max_tokens", params.MaxTokens,
			"raised_to", minCompletionTokens)
		params.MaxTokens = minCompletionTokens
	}

	var text string
	err := core.Retry(ctx, c.retry, c.logger, c.apiType+" completion", func(ctx context.Context) error {
		if err := c.wait(ctx, requestID); err != nil {
			return err
		}

		c.logger.Debug("attempting AI generation request",
			"request_id", requestID,
			"prompt_length", len(prompt),
			"max_tokens", params.MaxTokens,
			"model", c.model)

		var err error
		if c.apiType == APITypeAnthropic {
			text, err = c.doAnthropicRequest(ctx, requestID, prompt, params)
		} else {
			text, err = c.doOpenAIRequest(ctx, requestID, prompt, params)
		}
		return err
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("API request successful",
		"request_id", requestID,
		"response_length", len(text),
		"total_duration_ms", time.Since(startTime).Milliseconds())

	return text, nil
}

func (c *Client) doOpenAIRequest(ctx context.Context, requestID, prompt string, params TextParams) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens":  params.MaxTokens,
		"temperature": params.Temperature,
		"top_p":       params.TopP,
	}

	respBody, err := c.postJSON(ctx, APITypeOpenAI, c.baseURL+"/chat/completions", requestBody, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		c.logger.Error("OpenAI request failed",
			"request_id", requestID,
			"error", err)
		return "", err
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		c.logger.Error("failed to parse OpenAI response",
			"request_id", requestID,
			"error", err,
			"response_body", string(respBody))
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if len(response.Choices) == 0 {
		c.logger.Error("no choices in OpenAI response",
			"request_id", requestID)
		return "", fmt.Errorf("no choices in response")
	}

	c.logger.Info("OpenAI request completed",
		"request_id", requestID,
		"prompt_tokens", response.Usage.PromptTokens,
		"completion_tokens", response.Usage.CompletionTokens,
		"total_tokens", response.Usage.TotalTokens)

	return response.Choices[0].Message.Content, nil
}

func (c *Client) doAnthropicRequest(ctx context.Context, requestID, prompt string, params TextParams) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens":  params.MaxTokens,
		"temperature": params.Temperature,
	}
	// Newer models reject temperature and top_p together.
	if params.TopP > 0 && params.TopP < 1 {
		delete(requestBody, "temperature")
		requestBody["top_p"] = params.TopP
	}

	respBody, err := c.postJSON(ctx, APITypeAnthropic, c.baseURL+"/messages", requestBody, map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		c.logger.Error("Anthropic request failed",
			"request_id", requestID,
			"error", err)
		return "", err
	}

	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		c.logger.Error("failed to parse Anthropic response",
			"request_id", requestID,
			"error", err,
			"response_body", string(respBody))
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if len(response.Content) == 0 {
		c.logger.Error("no content in Anthropic response",
			"request_id", requestID)
		return "", fmt.Errorf("no content in response")
	}

	c.logger.Info("Anthropic request completed",
		"request_id", requestID,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"total_tokens", response.Usage.InputTokens+response.Usage.OutputTokens)

	return response.Content[0].Text, nil
}
