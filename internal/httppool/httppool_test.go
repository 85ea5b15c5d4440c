package httppool

import (
	"net/http"
	"sync"
	"testing"
)

// TestClientIsShared verifies repeated calls return the same client instance.
func TestClientIsShared(t *testing.T) {
	p := New(5)
	if p.Client() != p.Client() {
		t.Error("Client should return the same instance across calls")
	}
}

// TestClientRecreatedAfterClose verifies Close discards the client and the
// next call builds a fresh one.
func TestClientRecreatedAfterClose(t *testing.T) {
	p := New(5)
	first := p.Client()
	p.Close()
	second := p.Client()
	if first == second {
		t.Error("Client after Close should be a new instance")
	}
}

// TestTransportConfiguration verifies the connection cap and the documented
// TLS trade-off are applied to the transport.
func TestTransportConfiguration(t *testing.T) {
	p := New(7)
	transport, ok := p.Client().Transport.(*http.Transport)
	if !ok {
		t.Fatal("expected *http.Transport")
	}
	if transport.MaxConnsPerHost != 7 {
		t.Errorf("MaxConnsPerHost = %d, want 7", transport.MaxConnsPerHost)
	}
	if transport.MaxIdleConnsPerHost != 7 {
		t.Errorf("MaxIdleConnsPerHost = %d, want 7", transport.MaxIdleConnsPerHost)
	}
	if transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify {
		t.Error("TLS verification should be disabled for scraping compatibility")
	}
}

// TestConcurrentClientAccess exercises lazy construction under contention; run with -race.
func TestConcurrentClientAccess(t *testing.T) {
	p := New(3)
	var wg sync.WaitGroup
	clients := make([]*http.Client, 10)
	for i := range clients {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			clients[n] = p.Client()
		}(i)
	}
	wg.Wait()
	for _, c := range clients[1:] {
		if c != clients[0] {
			t.Fatal("all goroutines should observe the same client")
		}
	}
}

// TestNewNonPositiveCap verifies a sane default kicks in for bad caps.
func TestNewNonPositiveCap(t *testing.T) {
	p := New(0)
	transport := p.Client().Transport.(*http.Transport)
	if transport.MaxConnsPerHost != 5 {
		t.Errorf("MaxConnsPerHost = %d, want default 5", transport.MaxConnsPerHost)
	}
}
