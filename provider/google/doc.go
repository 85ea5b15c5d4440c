// Package google implements the search provider on top of the Google Custom
// Search JSON API.
//
// The main entry point is [New], which returns a [Client] with a built-in
// TTL response cache. The client follows the forgiving provider contract:
// upstream failures are logged and produce zero hits rather than errors, so
// a flaky search API degrades the pipeline instead of breaking it.
package google
