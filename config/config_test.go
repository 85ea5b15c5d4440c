package config

import (
	"testing"
	"time"
)

// TestLoadDefaults verifies that an empty environment yields the documented defaults.
func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SEARCH_ENGINE_API_KEY", "GOOGLE_API_KEY", "SEARCH_ENGINE_CSE_ID", "GOOGLE_CSE_ID",
		"CONNECTION_TIMEOUT", "CONTENT_TIMEOUT", "SEARCH_TIMEOUT",
		"MAX_CONCURRENT_REQUESTS", "MAX_CONCURRENT_SEARCHES",
		"MAX_CONTENT_LENGTH", "CACHE_TTL", "CACHE_MAX_ENTRIES", "BLOCKED_DOMAINS",
	} {
		t.Setenv(key, "")
	}

	s := Load()

	if s.ConnectionTimeout != 10*time.Second {
		t.Errorf("ConnectionTimeout = %v, want 10s", s.ConnectionTimeout)
	}
	if s.ContentTimeout != 15*time.Second {
		t.Errorf("ContentTimeout = %v, want 15s", s.ContentTimeout)
	}
	if s.MaxConcurrentRequests != 5 {
		t.Errorf("MaxConcurrentRequests = %d, want 5", s.MaxConcurrentRequests)
	}
	if s.MaxContentLength != 5000 {
		t.Errorf("MaxContentLength = %d, want 5000", s.MaxContentLength)
	}
	if s.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v, want 1h", s.CacheTTL)
	}
	if len(s.BlockedDomains) == 0 {
		t.Error("BlockedDomains should default to the known Brotli-only sites")
	}
}

// TestLoadOverrides verifies environment variables take precedence over defaults.
func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEARCH_ENGINE_API_KEY", "key-123")
	t.Setenv("SEARCH_ENGINE_CSE_ID", "cse-456")
	t.Setenv("MAX_CONTENT_LENGTH", "1234")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("BLOCKED_DOMAINS", "example.com, blocked.org")

	s := Load()

	if s.SearchAPIKey != "key-123" {
		t.Errorf("SearchAPIKey = %q, want key-123", s.SearchAPIKey)
	}
	if s.SearchEngineID != "cse-456" {
		t.Errorf("SearchEngineID = %q, want cse-456", s.SearchEngineID)
	}
	if s.MaxContentLength != 1234 {
		t.Errorf("MaxContentLength = %d, want 1234", s.MaxContentLength)
	}
	if s.CacheTTL != time.Minute {
		t.Errorf("CacheTTL = %v, want 1m", s.CacheTTL)
	}
	if len(s.BlockedDomains) != 2 || s.BlockedDomains[1] != "blocked.org" {
		t.Errorf("BlockedDomains = %v, want [example.com blocked.org]", s.BlockedDomains)
	}
}

// TestLoadBadNumbersFallBack verifies unparsable numeric values degrade to defaults.
func TestLoadBadNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_REQUESTS", "not-a-number")
	t.Setenv("CACHE_TTL", "-5")

	s := Load()

	if s.MaxConcurrentRequests != 5 {
		t.Errorf("MaxConcurrentRequests = %d, want default 5", s.MaxConcurrentRequests)
	}
	if s.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v, want default 1h", s.CacheTTL)
	}
}

// TestLoadGoogleFallbackVariables verifies the GOOGLE_* aliases are honoured.
func TestLoadGoogleFallbackVariables(t *testing.T) {
	t.Setenv("SEARCH_ENGINE_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("SEARCH_ENGINE_CSE_ID", "")
	t.Setenv("GOOGLE_CSE_ID", "g-cse")

	s := Load()

	if s.SearchAPIKey != "g-key" {
		t.Errorf("SearchAPIKey = %q, want g-key", s.SearchAPIKey)
	}
	if s.SearchEngineID != "g-cse" {
		t.Errorf("SearchEngineID = %q, want g-cse", s.SearchEngineID)
	}
}
