package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/leofalp/websearch/content"
	"github.com/leofalp/websearch/internal/ttlcache"
	"github.com/leofalp/websearch/internal/utils"
	"github.com/leofalp/websearch/provider"
)

// User-facing outcome messages. These are returned as the whole result
// string, so downstream consumers can show them verbatim.
const (
	MsgNoResults = "No results found for the given query. Try rephrasing your question or using different keywords."
	MsgTimedOut  = "Search timed out. Please try a more specific query."
)

const (
	defaultSearchTimeout = 60 * time.Second
	defaultMaxSearches   = 5
	defaultMaxFetches    = 5
	defaultCacheTTL      = time.Hour
	defaultCacheEntries  = 100
	maxNumResults        = 10

	separatorLine = "--------------------------------------------------------------------------------"
	timingFormat  = "\nSearch completed in %.2f seconds."
)

var (
	punctuationRun = regexp.MustCompile(`[^\w\s]`)
	stopWords      = regexp.MustCompile(`(?i)\b(what|how|when|where|who|is|are|the|a|an)\b`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

// Config carries the collaborators and limits for an [Engine]. Provider and
// Fetcher are required; everything else has a usable default.
type Config struct {
	Provider provider.Provider
	Fetcher  *content.Fetcher

	// SearchTimeout bounds one whole Search call, queueing included.
	SearchTimeout time.Duration

	// MaxConcurrentSearches caps Search calls running at once across all
	// goroutines; excess callers queue on the gate.
	MaxConcurrentSearches int

	// MaxConcurrentFetches caps in-flight page downloads within a search.
	MaxConcurrentFetches int

	CacheTTL        time.Duration
	CacheMaxEntries int

	Logger *zap.Logger
}

// Engine runs the search pipeline: provider query, concurrent page fetches,
// extraction, and formatting, with a TTL cache over the formatted output.
// Engines are safe for concurrent use.
type Engine struct {
	provider provider.Provider
	fetcher  *content.Fetcher
	log      *zap.Logger

	cache      *ttlcache.Cache[string]
	searchGate *semaphore.Weighted
	fetchGate  *semaphore.Weighted

	searchTimeout time.Duration
}

// New builds an Engine from cfg, falling back to defaults for anything
// unset. It panics if Provider or Fetcher is missing, since an engine
// without either cannot do anything useful.
func New(cfg Config) *Engine {
	if cfg.Provider == nil {
		panic("engine: Config.Provider is required")
	}
	if cfg.Fetcher == nil {
		panic("engine: Config.Fetcher is required")
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = defaultSearchTimeout
	}
	if cfg.MaxConcurrentSearches <= 0 {
		cfg.MaxConcurrentSearches = defaultMaxSearches
	}
	if cfg.MaxConcurrentFetches <= 0 {
		cfg.MaxConcurrentFetches = defaultMaxFetches
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = defaultCacheEntries
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Engine{
		provider:      cfg.Provider,
		fetcher:       cfg.Fetcher,
		log:           cfg.Logger,
		cache:         ttlcache.New[string](cfg.CacheTTL, cfg.CacheMaxEntries),
		searchGate:    semaphore.NewWeighted(int64(cfg.MaxConcurrentSearches)),
		fetchGate:     semaphore.NewWeighted(int64(cfg.MaxConcurrentFetches)),
		searchTimeout: cfg.SearchTimeout,
	}
}

// AdvancedOptions refine a search with domain filters.
type AdvancedOptions struct {
	// IncludeDomains restricts results to these domains via site: operators.
	IncludeDomains []string
	// ExcludeDomains removes results from these domains via -site: operators.
	ExcludeDomains []string
	// TimeRange is accepted for interface stability but does not currently
	// affect the query; upstream offers no portable recency operator.
	TimeRange string
}

// Search looks up query, fetches and extracts the top numResults pages, and
// returns one formatted document. It never returns an error: timeouts and
// upstream failures come back as fixed explanatory strings, so the result is
// always safe to hand to an end user.
func (e *Engine) Search(ctx context.Context, query string, numResults int) (result string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("panic during search", zap.String("query", query), zap.Any("panic", r))
			result = fmt.Sprintf("Error during search: %v", r)
		}
	}()

	query = strings.TrimSpace(query)
	if numResults < 1 {
		numResults = 1
	}
	if numResults > maxNumResults {
		numResults = maxNumResults
	}

	key := cacheKey(query, numResults)
	if cached, ok := e.cache.Get(key); ok {
		e.log.Info("returning cached result", zap.String("query", query))
		return cached
	}

	ctx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()

	if err := e.searchGate.Acquire(ctx, 1); err != nil {
		e.log.Error("timed out waiting for a search slot", zap.String("query", query))
		return MsgTimedOut
	}
	defer e.searchGate.Release(1)

	timer := utils.NewTimer()

	results := e.searchAndExtract(ctx, query, numResults)

	// A query full of punctuation or filler words often returns nothing;
	// a stripped-down variant sometimes rescues it.
	if len(results) == 0 && ctx.Err() == nil {
		if simplified := simplifyQuery(query); simplified != "" && simplified != query {
			e.log.Info("retrying with simplified query",
				zap.String("query", query), zap.String("simplified", simplified))
			results = e.searchAndExtract(ctx, simplified, numResults)
		}
	}

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			e.log.Error("search timed out", zap.String("query", query))
			return MsgTimedOut
		}
		return fmt.Sprintf("Error during search: %v", err)
	}

	if len(results) == 0 {
		e.log.Warn("no results", zap.String("query", query))
		return MsgNoResults
	}

	timer.Stop()
	elapsed := timer.Elapsed()
	formatted := formatResults(results, elapsed)

	e.cache.Set(key, formatted)
	e.log.Info("search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", elapsed))
	return formatted
}

// AdvancedSearch is Search with domain filtering: include domains become an
// ORed site: clause, exclude domains become -site: clauses. The rewritten
// query then goes through the normal pipeline.
func (e *Engine) AdvancedSearch(ctx context.Context, query string, numResults int, opts AdvancedOptions) string {
	rewritten := RewriteQuery(query, opts)
	if rewritten != query {
		e.log.Info("rewrote query with domain filters",
			zap.String("query", query), zap.String("rewritten", rewritten))
	}
	return e.Search(ctx, rewritten, numResults)
}

// RewriteQuery applies opts to query as search operators, returning the
// query unchanged when opts carry no domains.
func RewriteQuery(query string, opts AdvancedOptions) string {
	if len(opts.IncludeDomains) > 0 {
		clauses := make([]string, 0, len(opts.IncludeDomains))
		for _, domain := range opts.IncludeDomains {
			clauses = append(clauses, "site:"+domain)
		}
		query = fmt.Sprintf("(%s) %s", query, strings.Join(clauses, " OR "))
	}
	for _, domain := range opts.ExcludeDomains {
		query += " -site:" + domain
	}
	return query
}

type fetchedHit struct {
	hit  provider.Hit
	text string
}

// searchAndExtract queries the provider and fetches every hit concurrently
// under the fetch gate. Hits whose page yields no text are dropped; the
// survivors keep provider order.
func (e *Engine) searchAndExtract(ctx context.Context, query string, numResults int) []fetchedHit {
	hits, err := e.provider.Search(ctx, query, numResults)
	if err != nil {
		e.log.Error("provider search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	if len(hits) == 0 {
		return nil
	}
	if len(hits) > numResults {
		hits = hits[:numResults]
	}

	fetched := make([]fetchedHit, len(hits))
	var wg sync.WaitGroup
	for i, hit := range hits {
		fetched[i].hit = hit
		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.log.Error("panic while fetching hit", zap.String("url", pageURL), zap.Any("panic", r))
				}
			}()

			if err := e.fetchGate.Acquire(ctx, 1); err != nil {
				return
			}
			defer e.fetchGate.Release(1)

			text, err := e.fetcher.FetchResult(ctx, pageURL)
			if err != nil {
				e.log.Warn("dropping hit after failed fetch", zap.String("url", pageURL), zap.Error(err))
				return
			}
			fetched[i].text = text
		}(i, hit.URL)
	}
	wg.Wait()

	valid := fetched[:0]
	for _, f := range fetched {
		if f.text != "" {
			valid = append(valid, f)
		}
	}
	e.log.Info("extracted content",
		zap.String("query", query),
		zap.Int("fetched", len(valid)),
		zap.Int("hits", len(hits)))
	return valid
}

// formatResults renders the surviving hits as numbered SOURCE blocks with a
// trailing elapsed-time line.
func formatResults(results []fetchedHit, elapsed time.Duration) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "SOURCE %d: %s\n", i+1, r.hit.Title)
		fmt.Fprintf(&b, "URL: %s\n", r.hit.URL)
		fmt.Fprintf(&b, "SUMMARY: %s\n", r.hit.Snippet)
		fmt.Fprintf(&b, "\nCONTENT:\n%s\n", r.text)
		b.WriteString(separatorLine + "\n")
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n") + fmt.Sprintf(timingFormat, elapsed.Seconds())
}

// simplifyQuery strips punctuation and common question words, leaving the
// content-bearing terms.
func simplifyQuery(query string) string {
	s := punctuationRun.ReplaceAllString(query, "")
	s = stopWords.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func cacheKey(query string, numResults int) string {
	return fmt.Sprintf("%s_%d", query, numResults)
}
