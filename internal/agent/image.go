package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/myrontuttle/storytime/internal/core"
)

// MaxImagePromptLength is the longest prompt sent to an image provider.
const MaxImagePromptLength = 1000

const providerPollinations = "pollinations"

func truncatePrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= MaxImagePromptLength {
		return prompt
	}
	return string(runes[:MaxImagePromptLength])
}

// ImageClient generates illustrations with the OpenAI images API.
type ImageClient struct {
	settings
	apiKey string
	size   int
}

func NewImageClient(apiKey string, size int, opts ...Option) *ImageClient {
	return &ImageClient{
		settings: newSettings("image_client", "https://api.openai.com/v1", "dall-e-2", opts),
		apiKey:   apiKey,
		size:     size,
	}
}

func (c *ImageClient) Model() string {
	return c.model
}

// openAISize rounds size up to the nearest square the API accepts.
func openAISize(size int) string {
	switch {
	case size <= 256:
		return "256x256"
	case size <= 512:
		return "512x512"
	default:
		return "1024x1024"
	}
}

func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%s images: %w", APITypeOpenAI, core.ErrNoAPIKey)
	}
	prompt = truncatePrompt(prompt)
	requestID := fmt.Sprintf("image_%d", time.Now().UnixNano())

	var imageURL string
	err := core.Retry(ctx, c.retry, c.logger, "image generation", func(ctx context.Context) error {
		if err := c.wait(ctx, requestID); err != nil {
			return err
		}

		respBody, err := c.postJSON(ctx, APITypeOpenAI, c.baseURL+"/images/generations", map[string]any{
			"model":  c.model,
			"prompt": prompt,
			"n":      1,
			"size":   openAISize(c.size),
		}, map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		})
		if err != nil {
			return err
		}

		var response struct {
			Data []struct {
				URL string `json:"url"`
			} `json:"data"`
		}
		if err := json.Unmarshal(respBody, &response); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if len(response.Data) == 0 || response.Data[0].URL == "" {
			return fmt.Errorf("no image in response")
		}
		imageURL = response.Data[0].URL
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("image generated",
		"request_id", requestID,
		"prompt_length", len(prompt))

	return imageURL, nil
}

// Pollinations builds image URLs for the keyless Pollinations service. The
// image is rendered when the URL is first fetched, and the seed derived
// from the prompt makes the URL reproducible.
type Pollinations struct {
	baseURL string
	model   string
	size    int
}

func NewPollinations(baseURL, model string, size int) *Pollinations {
	if baseURL == "" {
		baseURL = "https://image.pollinations.ai"
	}
	if model == "" {
		model = "flux"
	}
	return &Pollinations{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		size:    size,
	}
}

func (p *Pollinations) Model() string {
	return providerPollinations + "/" + p.model
}

func (p *Pollinations) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt = truncatePrompt(prompt)
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%s: empty prompt", providerPollinations)
	}

	h := fnv.New32a()
	h.Write([]byte(prompt))

	q := url.Values{}
	q.Set("width", strconv.Itoa(p.size))
	q.Set("height", strconv.Itoa(p.size))
	q.Set("seed", strconv.FormatUint(uint64(h.Sum32()), 10))
	q.Set("model", p.model)
	q.Set("nologo", "true")

	return p.baseURL + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode(), nil
}
