package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrontuttle/storytime/internal/storage"
)

type ResponseCache struct {
	storage storage.Storage
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type CachedResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

func NewResponseCache(storage storage.Storage, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		storage: storage,
		ttl:     ttl,
		now:     time.Now,
		logger:  slog.Default().With("component", "response_cache"),
	}
}

func (c *ResponseCache) path(key string) string {
	return fmt.Sprintf("responses/%s.json", c.hashKey(key))
}

func (c *ResponseCache) Get(ctx context.Context, key string) (string, bool) {
	path := c.path(key)

	data, err := c.storage.Load(ctx, path)
	if err != nil {
		c.logger.Debug("cache miss - not found",
			"path", path)
		return "", false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Error("cache miss - invalid data",
			"path", path,
			"error", err)
		return "", false
	}

	age := c.now().Sub(cached.Timestamp)
	if age > c.ttl {
		c.logger.Debug("cache miss - expired",
			"path", path,
			"age", age,
			"ttl", c.ttl)
		return "", false
	}

	c.logger.Debug("cache hit",
		"path", path,
		"age", age,
		"response_length", len(cached.Response))

	return cached.Response, true
}

func (c *ResponseCache) Set(ctx context.Context, key, response string) error {
	path := c.path(key)

	data, err := json.Marshal(CachedResponse{
		Response:  response,
		Timestamp: c.now(),
	})
	if err != nil {
		return fmt.Errorf("marshaling cached response: %w", err)
	}

	if err := c.storage.Save(ctx, path, data); err != nil {
		c.logger.Error("failed to save cache entry",
			"path", path,
			"error", err)
		return err
	}

	return nil
}

func (c *ResponseCache) hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// CachedClient answers repeated prompts from a ResponseCache. Empty
// responses are never cached.
type CachedClient struct {
	TextGenerator
	cache  *ResponseCache
	logger *slog.Logger
}

func WithCache(client TextGenerator, cache *ResponseCache) *CachedClient {
	return &CachedClient{
		TextGenerator: client,
		cache:         cache,
		logger:        slog.Default().With("component", "cached_client"),
	}
}

func (c *CachedClient) Model() string {
	return ModelName(c.TextGenerator)
}

func (c *CachedClient) GenerateText(ctx context.Context, prompt string, params TextParams) (string, error) {
	startTime := time.Now()
	key := fmt.Sprintf("%s|%g|%d|%g|%s", c.Model(), params.Temperature, params.MaxTokens, params.TopP, prompt)

	if response, found := c.cache.Get(ctx, key); found {
		c.logger.Info("serving from cache",
			"prompt_length", len(prompt),
			"response_length", len(response),
			"duration_ms", time.Since(startTime).Milliseconds())
		return response, nil
	}

	response, err := c.TextGenerator.GenerateText(ctx, prompt, params)
	if err != nil {
		return "", err
	}

	if response != "" {
		if cacheErr := c.cache.Set(ctx, key, response); cacheErr != nil {
			c.logger.Warn("failed to cache response",
				"error", cacheErr)
		}
	}

	return response, nil
}
