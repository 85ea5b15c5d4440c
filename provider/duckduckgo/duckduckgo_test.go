package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, CacheTTL: time.Minute})
}

// TestSearchMapsAbstractAndTopics verifies the abstract leads and topics follow.
func TestSearchMapsAbstractAndTopics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"Heading": "Go",
			"AbstractText": "Go is a programming language.",
			"AbstractURL": "https://en.wikipedia.org/wiki/Go",
			"RelatedTopics": [
				{"Text": "Gopher - The Go mascot", "FirstURL": "https://go.dev/gopher"},
				{"Topics": [{"Text": "Modules - Dependency management", "FirstURL": "https://go.dev/ref/mod"}]}
			]
		}`)
	})

	hits, err := client.Search(context.Background(), "go", 5)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	if hits[0].URL != "https://en.wikipedia.org/wiki/Go" || hits[0].Title != "Go" {
		t.Errorf("abstract should be first hit, got %+v", hits[0])
	}
	if hits[1].Title != "Gopher" || hits[1].Snippet != "The Go mascot" {
		t.Errorf("topic text should split into title and snippet, got %+v", hits[1])
	}
	if hits[2].URL != "https://go.dev/ref/mod" {
		t.Errorf("nested topics should be walked, got %+v", hits[2])
	}
}

// TestSearchRespectsCount verifies the hit list is capped at count.
func TestSearchRespectsCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"RelatedTopics": [
				{"Text": "A - a", "FirstURL": "https://a.example"},
				{"Text": "B - b", "FirstURL": "https://b.example"},
				{"Text": "C - c", "FirstURL": "https://c.example"}
			]
		}`)
	})

	hits, err := client.Search(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
}

// TestSearchUpstreamFailureYieldsEmpty verifies the forgiving provider contract.
func TestSearchUpstreamFailureYieldsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	hits, err := client.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Search should not error on upstream failure, got: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("got %d hits, want 0", len(hits))
	}
}

// TestSearchCachesResponses verifies the TTL cache short-circuits the network.
func TestSearchCachesResponses(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"RelatedTopics": [{"Text": "A - a", "FirstURL": "https://a.example"}]}`)
	})

	for i := 0; i < 3; i++ {
		if _, err := client.Search(context.Background(), "same", 5); err != nil {
			t.Fatalf("Search returned error: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream called %d times, want 1", got)
	}
}
