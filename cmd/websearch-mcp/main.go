// Command websearch-mcp exposes the search pipeline as an MCP server over
// stdio, with search, advanced_search, and fetch_page tools.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/leofalp/websearch/config"
	"github.com/leofalp/websearch/content"
	"github.com/leofalp/websearch/engine"
	"github.com/leofalp/websearch/internal/httppool"
	"github.com/leofalp/websearch/internal/logger"
	"github.com/leofalp/websearch/provider"
	"github.com/leofalp/websearch/provider/duckduckgo"
	"github.com/leofalp/websearch/provider/google"
)

const (
	serverName    = "websearch"
	serverVersion = "1.0.0"

	defaultNumResults = 5
)

type searchArgs struct {
	Query      string `json:"query" jsonschema:"the search query string"`
	NumResults int    `json:"num_results,omitempty" jsonschema:"number of search results to use (default 5, max 10)"`
}

type advancedSearchArgs struct {
	Query          string   `json:"query" jsonschema:"the search query string"`
	NumResults     int      `json:"num_results,omitempty" jsonschema:"number of search results to use (default 5, max 10)"`
	IncludeDomains []string `json:"include_domains,omitempty" jsonschema:"restrict results to these domains"`
	ExcludeDomains []string `json:"exclude_domains,omitempty" jsonschema:"exclude results from these domains"`
	TimeRange      string   `json:"time_range,omitempty" jsonschema:"desired recency, e.g. past_week (currently unused)"`
}

type fetchPageArgs struct {
	URL string `json:"url" jsonschema:"the page URL to fetch and convert to markdown"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "websearch-mcp:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	settings := config.Load()

	pool := httppool.New(settings.MaxConcurrentRequests)
	defer pool.Close()

	fetcher := content.NewFetcher(content.FetcherConfig{
		Pool:             pool,
		Timeout:          settings.ContentTimeout,
		MaxContentLength: settings.MaxContentLength,
		BlockedDomains:   settings.BlockedDomains,
		Logger:           log,
	})

	eng := engine.New(engine.Config{
		Provider:              newProvider(settings, pool, log),
		Fetcher:               fetcher,
		SearchTimeout:         settings.SearchTimeout,
		MaxConcurrentSearches: settings.MaxConcurrentSearches,
		MaxConcurrentFetches:  settings.MaxConcurrentRequests,
		CacheTTL:              settings.CacheTTL,
		CacheMaxEntries:       settings.CacheMaxEntries,
		Logger:                log,
	})

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(server, eng, fetcher, log)

	log.Info("starting MCP server on stdio", zap.String("name", serverName))
	return server.Run(ctx, &mcp.StdioTransport{})
}

// newProvider picks the Google Custom Search API when credentials are
// configured and falls back to the keyless DuckDuckGo endpoint otherwise.
func newProvider(settings config.Settings, pool *httppool.Pool, log *zap.Logger) provider.Provider {
	if settings.SearchAPIKey != "" && settings.SearchEngineID != "" {
		return google.New(google.Config{
			APIKey:          settings.SearchAPIKey,
			EngineID:        settings.SearchEngineID,
			HTTPClient:      pool.Client(),
			Timeout:         settings.ConnectionTimeout,
			CacheTTL:        settings.CacheTTL,
			CacheMaxEntries: settings.CacheMaxEntries,
			Logger:          log,
		})
	}
	log.Warn("search API credentials not configured, using DuckDuckGo fallback")
	return duckduckgo.New(duckduckgo.Config{
		HTTPClient:      pool.Client(),
		Timeout:         settings.ConnectionTimeout,
		CacheTTL:        settings.CacheTTL,
		CacheMaxEntries: settings.CacheMaxEntries,
		Logger:          log,
	})
}

func registerTools(server *mcp.Server, eng *engine.Engine, fetcher *content.Fetcher, log *zap.Logger) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Search for information online based on a query. Returns formatted content from the top search results.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args searchArgs) (*mcp.CallToolResult, any, error) {
		log.Info("processing search request", zap.String("query", args.Query))
		if args.Query == "" {
			return textResult("Invalid query. Please provide a valid search query."), nil, nil
		}
		num := args.NumResults
		if num == 0 {
			num = defaultNumResults
		}
		return textResult(eng.Search(ctx, args.Query, num)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "advanced_search",
		Description: "Search with domain filtering: restrict results to include_domains or drop exclude_domains.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args advancedSearchArgs) (*mcp.CallToolResult, any, error) {
		log.Info("processing advanced search request", zap.String("query", args.Query))
		if args.Query == "" {
			return textResult("Invalid query. Please provide a valid search query."), nil, nil
		}
		num := args.NumResults
		if num == 0 {
			num = defaultNumResults
		}
		out := eng.AdvancedSearch(ctx, args.Query, num, engine.AdvancedOptions{
			IncludeDomains: args.IncludeDomains,
			ExcludeDomains: args.ExcludeDomains,
			TimeRange:      args.TimeRange,
		})
		return textResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_page",
		Description: "Fetch a single web page and return its content as markdown.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args fetchPageArgs) (*mcp.CallToolResult, any, error) {
		log.Info("processing fetch request", zap.String("url", args.URL))
		page, err := fetcher.FetchMarkdown(ctx, args.URL)
		if err != nil {
			return textResult(fmt.Sprintf("Error fetching page: %v", err)), nil, nil
		}
		return textResult(page.Markdown), nil, nil
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
