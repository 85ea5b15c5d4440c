package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/leofalp/websearch/internal/retry"
	"github.com/leofalp/websearch/internal/ttlcache"
	"github.com/leofalp/websearch/internal/utils"
	"github.com/leofalp/websearch/provider"
)

const (
	defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

	// maxResults is the Custom Search API ceiling per request (free tier).
	maxResults = 10
)

// Config holds the construction parameters for [Client]. APIKey and EngineID
// are required; everything else has a usable default.
type Config struct {
	APIKey   string
	EngineID string

	// HTTPClient is the shared pooled client. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Timeout bounds a single API request. Default: 10s.
	Timeout time.Duration

	// CacheTTL and CacheMaxEntries size the response cache. Defaults: 1h, 100.
	CacheTTL        time.Duration
	CacheMaxEntries int

	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	Logger *zap.Logger
}

// Client queries the Google Custom Search JSON API. Responses are cached per
// (query, count) for the configured TTL, so repeated identical searches
// within the window skip the network entirely. Safe for concurrent use.
type Client struct {
	apiKey     string
	engineID   string
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
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
		httpClient: cfg.HTTPClient,
		timeout:    cfg.Timeout,
		baseURL:    cfg.BaseURL,
		cache:      ttlcache.New[[]provider.Hit](cfg.CacheTTL, cfg.CacheMaxEntries),
		log:        cfg.Logger,
	}
}

// apiResponse is the slice of the Custom Search payload this client consumes.
type apiResponse struct {
	Items []apiItem `json:"items"`
}

type apiItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search queries the API and returns relevance-ranked hits. count is clamped
// to [1, 10]. Upstream trouble (non-200 status, malformed JSON, absent
// items, exhausted retries) yields an empty slice and a nil error; the
// condition is logged but never escalated.
func (c *Client) Search(ctx context.Context, query string, count int) ([]provider.Hit, error) {
	if count < 1 {
		count = 1
	}
	if count > maxResults {
		count = maxResults
	}

	cacheKey := fmt.Sprintf("%s\x00%d", query, count)
	if hits, ok := c.cache.Get(cacheKey); ok {
		c.log.Debug("provider cache hit", zap.String("query", query))
		return hits, nil
	}

	body, err := retry.Do(ctx, retry.Config{MaxAttempts: 2}, func(ctx context.Context) ([]byte, error) {
		return c.request(ctx, query, count)
	})
	if err != nil {
		c.log.Error("search request failed", zap.String("query", query), zap.Error(err))
		return nil, nil
	}
	if body == nil {
		// Non-200 response, already logged. Not cached: the next call may hit
		// a healthy upstream.
		return nil, nil
	}

	hits := c.decode(body, query)
	c.cache.Set(cacheKey, hits)
	return hits, nil
}

// request performs one API call. A non-200 status returns (nil, nil) so the
// retry layer does not reissue requests the upstream answered decisively.
func (c *Client) request(ctx context.Context, query string, count int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("num", fmt.Sprintf("%d", count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer utils.CloseWithLog(resp.Body, c.log)

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("search API returned non-200 status",
			zap.Int("status", resp.StatusCode),
			zap.String("query", query))
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	return body, nil
}

// decode maps the raw payload to hits. Malformed JSON gets one repair attempt
// before being treated as no usable data; items without a link are dropped.
func (c *Client) decode(body []byte, query string) []provider.Hit {
	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(body))
		if repairErr != nil || json.Unmarshal([]byte(repaired), &parsed) != nil {
			c.log.Error("malformed search API response",
				zap.String("query", query),
				zap.String("body", utils.TruncateString(string(body), 200)),
				zap.Error(err))
			return nil
		}
	}

	if len(parsed.Items) == 0 {
		c.log.Info("no search results", zap.String("query", query))
		return nil
	}

	hits := make([]provider.Hit, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		hit := provider.Hit{Title: item.Title, URL: item.Link, Snippet: item.Snippet}
		if hit.Title == "" {
			hit.Title = "No title"
		}
		if hit.Snippet == "" {
			hit.Snippet = "No snippet"
		}
		hits = append(hits, hit)
	}

	c.log.Info("search results found", zap.String("query", query), zap.Int("count", len(hits)))
	return hits
}
