package duckduckgo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leofalp/websearch/internal/ttlcache"
	"github.com/leofalp/websearch/internal/utils"
	"github.com/leofalp/websearch/provider"
)

const defaultBaseURL = "https://api.duckduckgo.com/"

// Config holds the construction parameters for [Client]. Every field is
// optional; DuckDuckGo's instant answer API needs no credentials.
type Config struct {
	HTTPClient      *http.Client
	Timeout         time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	BaseURL         string
	Logger          *zap.Logger
}

// Client queries the DuckDuckGo instant answer API. It is a keyless fallback
// provider: coverage is thinner than a paid search API, but it works out of
// the box. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	baseURL    string
	cache      *ttlcache.Cache[[]provider.Hit]
	log        *zap.Logger
}

// New creates a Client from cfg, applying defaults for unset fields.
func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = 100
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		httpClient: cfg.HTTPClient,
		timeout:    cfg.Timeout,
		baseURL:    cfg.BaseURL,
		cache:      ttlcache.New[[]provider.Hit](cfg.CacheTTL, cfg.CacheMaxEntries),
		log:        cfg.Logger,
	}
}

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

// Search queries the instant answer API and converts the abstract plus the
// related topic tree into hits, capped at count. Failures are logged and
// yield an empty slice with a nil error, matching the provider contract.
func (c *Client) Search(ctx context.Context, query string, count int) ([]provider.Hit, error) {
	if count < 1 {
		count = 1
	}

	cacheKey := fmt.Sprintf("%s\x00%d", query, count)
	if hits, ok := c.cache.Get(cacheKey); ok {
		return hits, nil
	}

	parsed, err := c.request(ctx, query)
	if err != nil {
		c.log.Error("duckduckgo request failed", zap.String("query", query), zap.Error(err))
		return nil, nil
	}

	var hits []provider.Hit
	if parsed.AbstractText != "" && parsed.AbstractURL != "" {
		hits = append(hits, provider.Hit{
			Title:   parsed.Heading,
			URL:     parsed.AbstractURL,
			Snippet: parsed.AbstractText,
		})
	}

	var walk func(topics []ddgTopic)
	walk = func(topics []ddgTopic) {
		for _, topic := range topics {
			if len(hits) >= count {
				return
			}
			if topic.Text != "" && topic.FirstURL != "" {
				title, snippet := splitTopicText(topic.Text)
				hits = append(hits, provider.Hit{Title: title, URL: topic.FirstURL, Snippet: snippet})
			}
			walk(topic.Topics)
		}
	}
	walk(parsed.RelatedTopics)

	if len(hits) > count {
		hits = hits[:count]
	}

	c.log.Info("duckduckgo results", zap.String("query", query), zap.Int("count", len(hits)))
	c.cache.Set(cacheKey, hits)
	return hits, nil
}

func (c *Client) request(ctx context.Context, query string) (*ddgResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer utils.CloseWithLog(resp.Body, c.log)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	var parsed ddgResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	return &parsed, nil
}

// splitTopicText separates a DDG topic text of the form "Title - Snippet".
func splitTopicText(text string) (title, snippet string) {
	parts := strings.SplitN(text, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(text), ""
}
