// Package lookup scrapes character names and occupations from public
// generator pages.
package lookup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/myrontuttle/storytime/internal/core"
	"github.com/myrontuttle/storytime/internal/storage"
)

// ErrNotFound is returned when a page does not contain the expected
// elements.
var ErrNotFound = errors.New("lookup: expected content not found in page")

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/68.0.3440.84 Safari/537.36"
	accept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"

	maxPageSize = 4 << 20
)

type settings struct {
	httpClient *http.Client
	cache      storage.Storage
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*settings)

func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.httpClient = c
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.httpClient.Timeout = timeout
		}
	}
}

// WithCache keeps scraped results in store for ttl.
func WithCache(store storage.Storage, ttl time.Duration) Option {
	return func(s *settings) {
		s.cache = store
		s.ttl = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(component string, opts []Option) *settings {
	s := &settings{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		logger:     slog.Default().With("component", component),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type cachedResult struct {
	Results   []string  `json:"results"`
	Timestamp time.Time `json:"timestamp"`
}

func cachePath(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "lookup/" + hex.EncodeToString(hash[:]) + ".json"
}

// scrape returns the results parse extracts from url, consulting the
// cache first. Empty results are reported as ErrNotFound and not cached.
func (s *settings) scrape(ctx context.Context, provider, url string, parse func(*html.Node) []string) ([]string, error) {
	if s.cache != nil && s.ttl > 0 {
		if data, err := s.cache.Load(ctx, cachePath(url)); err == nil {
			var cached cachedResult
			if json.Unmarshal(data, &cached) == nil && s.now().Sub(cached.Timestamp) <= s.ttl && len(cached.Results) > 0 {
				s.logger.Debug("lookup cache hit", "url", url)
				return cached.Results, nil
			}
		}
	}

	doc, err := s.fetch(ctx, provider, url)
	if err != nil {
		return nil, err
	}
	results := parse(doc)
	if len(results) == 0 {
		s.logger.Warn("no results in page", "provider", provider, "url", url)
		return nil, fmt.Errorf("%s %s: %w", provider, url, ErrNotFound)
	}

	if s.cache != nil && s.ttl > 0 {
		data, _ := json.Marshal(cachedResult{Results: results, Timestamp: s.now()})
		if err := s.cache.Save(ctx, cachePath(url), data); err != nil {
			s.logger.Warn("failed to cache lookup", "url", url, "error", err)
		}
	}
	return results, nil
}

func (s *settings) fetch(ctx context.Context, provider, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	s.logger.Debug("page fetched",
		"provider", provider,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &core.APIError{Provider: provider, Status: resp.StatusCode, Body: string(body)}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// find returns the first element below n, in document order, that match
// accepts.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			out = append(out, c)
		}
		out = append(out, findAll(c, match)...)
	}
	return out
}

func isAtom(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.DataAtom == a }
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
