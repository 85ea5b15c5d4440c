// Package provider defines the search provider abstraction: turning a free
// text query into an ordered list of candidate results.
//
// Implementations live in subpackages ([google] is the default, [duckduckgo]
// a keyless fallback). Providers are expected to be forgiving: upstream
// failures surface as an empty hit list, never as a panic, and ordering
// follows the provider's own relevance ranking.
package provider

import "context"

// Hit is a single candidate search result before content extraction.
// Immutable once created.
type Hit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider translates a query into relevance-ranked hits. count is a hint;
// implementations clamp it to whatever their upstream API allows.
type Provider interface {
	Search(ctx context.Context, query string, count int) ([]Hit, error)
}
