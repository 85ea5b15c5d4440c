// Package engine turns a search provider and a page fetcher into a single
// text-in, text-out search operation.
//
// [Engine.Search] runs the whole pipeline: check the result cache, query the
// provider, fetch every hit concurrently under a bounded gate, extract
// readable text, and format the survivors into one document. The returned
// string is always presentable to an end user; failures of any single page
// cost that page, never the search. [Engine.AdvancedSearch] layers domain
// include and exclude operators on top of the same pipeline.
//
// Two independent semaphores bound the work: one caps how many searches may
// run at once across all callers, the other caps in-flight page fetches.
package engine
