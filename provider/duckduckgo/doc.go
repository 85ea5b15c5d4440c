// Package duckduckgo implements a keyless fallback search provider on top of
// the DuckDuckGo instant answer API. Coverage is limited to abstracts and
// related topics, so it suits deployments without Google credentials rather
// than production search quality.
package duckduckgo
