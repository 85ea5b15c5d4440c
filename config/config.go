package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds every tunable of the search pipeline. All fields are read
// from environment variables by [Load]; zero configuration is required for
// local use apart from the search engine credentials.
type Settings struct {
	// SearchAPIKey is the Google Custom Search API key (SEARCH_ENGINE_API_KEY,
	// falling back to GOOGLE_API_KEY).
	SearchAPIKey string

	// SearchEngineID is the Google Custom Search engine identifier
	// (SEARCH_ENGINE_CSE_ID, falling back to GOOGLE_CSE_ID).
	SearchEngineID string

	// ConnectionTimeout bounds a single search API request (CONNECTION_TIMEOUT, seconds).
	ConnectionTimeout time.Duration

	// ContentTimeout bounds a single page fetch (CONTENT_TIMEOUT, seconds).
	ContentTimeout time.Duration

	// SearchTimeout bounds one whole Search call end to end (SEARCH_TIMEOUT, seconds).
	SearchTimeout time.Duration

	// MaxConcurrentRequests caps simultaneous page fetches within one search
	// fan-out, and sizes the HTTP pool's per-host connection limit
	// (MAX_CONCURRENT_REQUESTS).
	MaxConcurrentRequests int

	// MaxConcurrentSearches caps simultaneous top-level Search calls
	// (MAX_CONCURRENT_SEARCHES). Independent of MaxConcurrentRequests.
	MaxConcurrentSearches int

	// MaxContentLength caps extracted text per page, in characters
	// (MAX_CONTENT_LENGTH).
	MaxContentLength int

	// CacheTTL is the lifetime of both the provider-response cache and the
	// final-document cache (CACHE_TTL, seconds).
	CacheTTL time.Duration

	// CacheMaxEntries triggers lazy pruning of expired cache entries once a
	// cache grows past it (CACHE_MAX_ENTRIES).
	CacheMaxEntries int

	// BlockedDomains are skipped without a network call; these sites serve
	// responses in compression codecs the deployment may not be able to
	// decode (BLOCKED_DOMAINS, comma separated).
	BlockedDomains []string
}

// DefaultBlockedDomains matches sites known to require Brotli decoding.
var DefaultBlockedDomains = []string{
	"facebook.com", "instagram.com", "twitter.com",
	"nbcnews.com", "cnn.com", "edition.cnn.com", "foxnews.com",
}

// Load reads the settings from the environment, applying defaults for every
// unset variable. It never fails: unparsable numeric values fall back to
// their defaults so a bad environment degrades instead of aborting.
func Load() Settings {
	return Settings{
		SearchAPIKey:          envOr("SEARCH_ENGINE_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		SearchEngineID:        envOr("SEARCH_ENGINE_CSE_ID", os.Getenv("GOOGLE_CSE_ID")),
		ConnectionTimeout:     envSeconds("CONNECTION_TIMEOUT", 10),
		ContentTimeout:        envSeconds("CONTENT_TIMEOUT", 15),
		SearchTimeout:         envSeconds("SEARCH_TIMEOUT", 60),
		MaxConcurrentRequests: envInt("MAX_CONCURRENT_REQUESTS", 5),
		MaxConcurrentSearches: envInt("MAX_CONCURRENT_SEARCHES", 5),
		MaxContentLength:      envInt("MAX_CONTENT_LENGTH", 5000),
		CacheTTL:              envSeconds("CACHE_TTL", 3600),
		CacheMaxEntries:       envInt("CACHE_MAX_ENTRIES", 100),
		BlockedDomains:        envList("BLOCKED_DOMAINS", DefaultBlockedDomains),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envSeconds(key string, fallbackSecs int) time.Duration {
	return time.Duration(envInt(key, fallbackSecs)) * time.Second
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
