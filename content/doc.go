// Package content turns URLs into readable text.
//
// [Extract] is the HTML-to-text heuristic pipeline: it strips chrome
// elements, prefers common main-content containers, and degrades through
// paragraph joining down to whole-page text. It aims for "usually good
// enough", accepting occasional nav remnants over the complexity of a full
// readability algorithm.
//
// [Fetcher] wraps the whole per-URL path (validation, retry-wrapped
// download through the shared pool, extraction) behind a contract of
// "always returns a string, never fails": every failure mode becomes an
// empty or diagnostic string so one bad URL cannot abort a batch.
// [Fetcher.FetchMarkdown] is the stricter single-page variant used by the
// page-fetch tool; it reports errors normally and renders Markdown.
package content
